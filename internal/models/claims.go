package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims представляет стандартные поля JWT и пользовательские данные,
// которые фронтенд кладет в accessToken cookie.
type Claims struct {
	UserID               uuid.UUID `json:"userId"`
	jwt.RegisteredClaims           // Встраиваем стандартные поля: Issuer, Subject, ExpiresAt, IssuedAt и т.д.
}
