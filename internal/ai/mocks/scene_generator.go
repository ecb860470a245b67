package mocks

import (
	"context"

	"scene-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock SceneGenerator
type SceneGenerator struct {
	mock.Mock
}

func (m *SceneGenerator) GenerateScene(ctx context.Context, previousScene *models.Scene, playerChoice string) (*models.Scene, error) {
	args := m.Called(ctx, previousScene, playerChoice)
	scene, _ := args.Get(0).(*models.Scene)
	return scene, args.Error(1)
}
