package handler

import (
	"context"
	"net/http"
	"strings"

	"scene-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// accessTokenCookie - имя cookie с токеном сессии.
const accessTokenCookie = "accessToken"

// TokenVerifier проверяет строку токена и возвращает claims.
// Ошибки - models.ErrTokenInvalid, models.ErrTokenExpired, models.ErrTokenMalformed.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (*models.Claims, error)
}

// AuthMiddleware проверяет токен сессии и кладет UserID в контекст запроса.
// Токен берется из cookie accessToken, при его отсутствии -
// из заголовка Authorization: Bearer.
func (h *GameHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := zap.L().With(zap.String("path", c.Request.URL.Path))

		tokenString := extractToken(c)
		if tokenString == "" {
			log.Warn("Request without access token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Code:    models.ErrCodeUnauthorized,
				Message: "Unauthorized: Missing token",
			})
			return
		}

		claims, err := h.verifier.VerifyToken(c.Request.Context(), tokenString)
		if err != nil {
			handleServiceError(c, err)
			return
		}

		ctx := context.WithValue(c.Request.Context(), models.UserContextKey, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		log.Debug("User authorized", zap.String("userID", claims.UserID.String()))
		c.Next()
	}
}

// extractToken достает токен из cookie или заголовка Authorization.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
