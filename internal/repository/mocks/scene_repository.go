package mocks

import (
	"context"

	"scene-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock SceneRepository
type SceneRepository struct {
	mock.Mock
}

func (m *SceneRepository) GetBySceneID(ctx context.Context, sceneID string) (*models.Scene, error) {
	args := m.Called(ctx, sceneID)
	scene, _ := args.Get(0).(*models.Scene)
	return scene, args.Error(1)
}
func (m *SceneRepository) UpsertScene(ctx context.Context, scene *models.Scene) (*models.Scene, error) {
	args := m.Called(ctx, scene)
	stored, _ := args.Get(0).(*models.Scene)
	return stored, args.Error(1)
}
func (m *SceneRepository) FindUnviewedScene(ctx context.Context, userID uuid.UUID) (*models.Scene, error) {
	args := m.Called(ctx, userID)
	scene, _ := args.Get(0).(*models.Scene)
	return scene, args.Error(1)
}
func (m *SceneRepository) AttachUserToScene(ctx context.Context, userID uuid.UUID, sceneID string) error {
	args := m.Called(ctx, userID, sceneID)
	return args.Error(0)
}
func (m *SceneRepository) MarkSceneViewed(ctx context.Context, userID uuid.UUID, sceneID string) error {
	args := m.Called(ctx, userID, sceneID)
	return args.Error(0)
}
func (m *SceneRepository) FillMissingImages(ctx context.Context, sceneID string, images models.SceneImages) (*models.Scene, error) {
	args := m.Called(ctx, sceneID, images)
	scene, _ := args.Get(0).(*models.Scene)
	return scene, args.Error(1)
}
func (m *SceneRepository) CreateSceneWithUser(ctx context.Context, scene *models.Scene, userID uuid.UUID) (*models.Scene, error) {
	args := m.Called(ctx, scene, userID)
	stored, _ := args.Get(0).(*models.Scene)
	return stored, args.Error(1)
}
