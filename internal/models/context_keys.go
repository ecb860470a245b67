package models

import (
	"context"

	"github.com/google/uuid"
)

// contextKey - приватный тип для ключей контекста, чтобы избежать коллизий.
type contextKey string

const (
	// UserContextKey используется как ключ для хранения UserID в контексте запроса.
	UserContextKey contextKey = "userID"
)

// GetUserIDFromContext извлекает UserID из контекста.
// Возвращает ID и true, если ключ найден и значение корректного типа.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserContextKey).(uuid.UUID)
	return userID, ok
}
