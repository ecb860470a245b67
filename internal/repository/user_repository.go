package repository

import (
	"context"

	"scene-server/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data persistence.
//
//go:generate mockery --name UserRepository --output ./mocks --outpkg mocks --case=underscore
type UserRepository interface {
	// CreateUser inserts a new user into the database.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by their ID.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// SpendStamina атомарно списывает amount стамины и добавляет запись
	// в журнал использования. Обе записи фиксируются одной транзакцией:
	// либо обе, либо ни одной.
	// Возвращает models.ErrUserNotFound, если пользователя нет,
	// и models.ErrInsufficientStamina, если баланса не хватает.
	SpendStamina(ctx context.Context, userID uuid.UUID, amount int, usageType string) error
}
