package token

import (
	"context"
	"errors"
	"fmt"

	"scene-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Verifier проверяет JWT токены сессии.
type Verifier struct {
	jwtSecret string
	logger    *zap.Logger
}

// NewVerifier создает новый экземпляр Verifier.
// Принимает секрет и опционально логгер. Если логгер nil, используется Noop.
func NewVerifier(jwtSecret string, logger *zap.Logger) (*Verifier, error) {
	if jwtSecret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		jwtSecret: jwtSecret,
		logger:    logger.Named("TokenVerifier"),
	}, nil
}

// VerifyToken проверяет подпись JWT, его валидность и извлекает claims.
// Любая ошибка верификации сводится к типизированным ошибкам из models -
// за эту границу исключения не пролетают.
func (v *Verifier) VerifyToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	log := v.logger.With(zap.String("tokenSnippet", tokenSnippet(tokenString)))
	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Проверяем метод подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.jwtSecret), nil
	})

	if err != nil {
		log.Warn("Failed to parse or verify token", zap.Error(err))
		// Используем errors.Is для точной проверки и возвращаем ошибки из models
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		} else if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, models.ErrTokenMalformed
		} else if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, models.ErrTokenInvalid // Невалидная подпись = невалидный токен
		}
		// Для других ошибок парсинга считаем токен невалидным, оборачивая исходную ошибку
		return nil, fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}

	// Дополнительная проверка валидности токена (хотя ParseWithClaims уже должен это делать)
	if !token.Valid {
		log.Warn("Token is invalid despite no parsing error")
		return nil, models.ErrTokenInvalid
	}

	// Проверка наличия обязательных полей в claims
	if claims.UserID == uuid.Nil {
		log.Warn("Token missing UserID")
		return nil, fmt.Errorf("%w: userId missing", models.ErrTokenInvalid)
	}

	log.Debug("Token verified successfully", zap.String("userID", claims.UserID.String()))
	return claims, nil
}

// tokenSnippet возвращает безопасную для логгирования часть токена.
func tokenSnippet(tokenString string) string {
	limit := 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}
