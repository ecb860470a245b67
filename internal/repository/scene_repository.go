package repository

import (
	"context"

	"scene-server/internal/models"

	"github.com/google/uuid"
)

// SceneRepository defines the interface for scene and user-progress persistence.
//
//go:generate mockery --name SceneRepository --output ./mocks --outpkg mocks --case=underscore
type SceneRepository interface {
	// GetBySceneID retrieves a scene by its content-addressed identifier.
	// Returns models.ErrSceneNotFound if the scene does not exist.
	GetBySceneID(ctx context.Context, sceneID string) (*models.Scene, error)

	// UpsertScene вставляет сцену, если сцены с таким scene_id еще нет.
	// При конфликте по scene_id возвращает существующую строку без изменений
	// (идемпотентное создание). Гонка "проверил - вставил" решается
	// уникальным ограничением и повторным чтением при конфликте.
	UpsertScene(ctx context.Context, scene *models.Scene) (*models.Scene, error)

	// FindUnviewedScene возвращает сцену, связанную с единственной
	// непросмотренной записью UserScene пользователя.
	// Returns models.ErrSceneNotFound if the user has no unviewed scene.
	FindUnviewedScene(ctx context.Context, userID uuid.UUID) (*models.Scene, error)

	// AttachUserToScene создает запись UserScene с viewed=false.
	// Повторное связывание той же пары (user, scene) - no-op.
	AttachUserToScene(ctx context.Context, userID uuid.UUID, sceneID string) error

	// MarkSceneViewed помечает запись UserScene просмотренной.
	// Returns models.ErrNotFound if the pair does not exist.
	MarkSceneViewed(ctx context.Context, userID uuid.UUID, sceneID string) error

	// FillMissingImages обновляет ТОЛЬКО пустые image-поля сцены; текст и
	// выборы никогда не перезаписываются, как и уже заполненные картинки.
	// Возвращает обновленную строку.
	FillMissingImages(ctx context.Context, sceneID string, images models.SceneImages) (*models.Scene, error)

	// CreateSceneWithUser вставляет сцену и запись UserScene одной
	// транзакцией. Если сцена уже существует (конкурентная вставка),
	// использует существующую строку и все равно привязывает пользователя.
	CreateSceneWithUser(ctx context.Context, scene *models.Scene, userID uuid.UUID) (*models.Scene, error)
}
