package mocks

import (
	"context"

	"scene-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock StaminaService
type StaminaService struct {
	mock.Mock
}

func (m *StaminaService) ChargeForGeneration(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *StaminaService) GetBalance(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

// Mock SceneService
type SceneService struct {
	mock.Mock
}

func (m *SceneService) ContinueScene(ctx context.Context, userID uuid.UUID, previousScene *models.Scene, playerChoice string) (*models.Scene, error) {
	args := m.Called(ctx, userID, previousScene, playerChoice)
	scene, _ := args.Get(0).(*models.Scene)
	return scene, args.Error(1)
}
func (m *SceneService) MarkSceneViewed(ctx context.Context, userID uuid.UUID, sceneID string) error {
	args := m.Called(ctx, userID, sceneID)
	return args.Error(0)
}
