package mocks

import (
	"context"

	"scene-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}
func (m *UserRepository) SpendStamina(ctx context.Context, userID uuid.UUID, amount int, usageType string) error {
	args := m.Called(ctx, userID, amount, usageType)
	return args.Error(0)
}
