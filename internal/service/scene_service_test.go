package service

import (
	"context"
	"errors"
	"testing"

	aimocks "scene-server/internal/ai/mocks"
	imgmocks "scene-server/internal/imagegen/mocks"
	"scene-server/internal/models"
	repomocks "scene-server/internal/repository/mocks"
	svcmocks "scene-server/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sceneServiceFixture struct {
	sceneRepo *repomocks.SceneRepository
	stamina   *svcmocks.StaminaService
	generator *aimocks.SceneGenerator
	images    *imgmocks.ImageGenerator
	svc       SceneService
}

func newSceneServiceFixture() *sceneServiceFixture {
	f := &sceneServiceFixture{
		sceneRepo: new(repomocks.SceneRepository),
		stamina:   new(svcmocks.StaminaService),
		generator: new(aimocks.SceneGenerator),
		images:    new(imgmocks.ImageGenerator),
	}
	f.svc = NewSceneService(f.sceneRepo, f.stamina, f.generator, f.images, zap.NewNop())
	return f
}

func strPtr(s string) *string { return &s }

func fullScene(sceneID string) *models.Scene {
	return &models.Scene{
		SceneID:         sceneID,
		Character:       "Alice",
		Emotion:         "calm",
		Text:            "Текст сцены",
		Background:      "библиотека",
		BackgroundImage: strPtr("https://img.example/bg.png"),
		CharacterImage:  strPtr("https://img.example/char.png"),
	}
}

func TestSceneService_ContinueScene(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("непросмотренная сцена возвращается без списания стамины и генерации", func(t *testing.T) {
		f := newSceneServiceFixture()
		resumed := fullScene("scene-1")
		f.sceneRepo.On("FindUnviewedScene", mock.Anything, userID).Return(resumed, nil)

		scene, err := f.svc.ContinueScene(ctx, userID, nil, "")

		require.NoError(t, err)
		assert.Equal(t, "scene-1", scene.SceneID)
		f.stamina.AssertNotCalled(t, "ChargeForGeneration", mock.Anything, mock.Anything)
		f.generator.AssertNotCalled(t, "GenerateScene", mock.Anything, mock.Anything, mock.Anything)
		// Обе картинки на месте - генератор изображений не трогаем.
		f.images.AssertNotCalled(t, "GenerateBackgroundImage", mock.Anything, mock.Anything)
		f.images.AssertNotCalled(t, "GenerateCharacterImage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("свежий старт списывает стамину и создает сцену с привязкой", func(t *testing.T) {
		f := newSceneServiceFixture()
		candidate := fullScene("scene-new")
		f.sceneRepo.On("FindUnviewedScene", mock.Anything, userID).Return(nil, models.ErrSceneNotFound)
		f.stamina.On("ChargeForGeneration", mock.Anything, userID).Return(nil)
		f.generator.On("GenerateScene", mock.Anything, (*models.Scene)(nil), "").Return(candidate, nil)
		f.sceneRepo.On("GetBySceneID", mock.Anything, "scene-new").Return(nil, models.ErrSceneNotFound)
		f.sceneRepo.On("CreateSceneWithUser", mock.Anything, candidate, userID).Return(candidate, nil)

		scene, err := f.svc.ContinueScene(ctx, userID, nil, "")

		require.NoError(t, err)
		assert.Equal(t, "scene-new", scene.SceneID)
		f.stamina.AssertExpectations(t)
		f.sceneRepo.AssertExpectations(t)
	})

	t.Run("нехватка стамины останавливает workflow до генерации", func(t *testing.T) {
		f := newSceneServiceFixture()
		f.sceneRepo.On("FindUnviewedScene", mock.Anything, userID).Return(nil, models.ErrSceneNotFound)
		f.stamina.On("ChargeForGeneration", mock.Anything, userID).Return(models.ErrInsufficientStamina)

		_, err := f.svc.ContinueScene(ctx, userID, nil, "")

		assert.ErrorIs(t, err, models.ErrInsufficientStamina)
		f.generator.AssertNotCalled(t, "GenerateScene", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("продолжение ветки не списывает стамину и помечает предыдущую сцену", func(t *testing.T) {
		f := newSceneServiceFixture()
		prev := fullScene("scene-prev")
		next := fullScene("scene-next")
		f.sceneRepo.On("MarkSceneViewed", mock.Anything, userID, "scene-prev").Return(nil)
		f.generator.On("GenerateScene", mock.Anything, prev, "choice-1").Return(next, nil)
		f.sceneRepo.On("GetBySceneID", mock.Anything, "scene-next").Return(nil, models.ErrSceneNotFound)
		f.sceneRepo.On("CreateSceneWithUser", mock.Anything, next, userID).Return(next, nil)

		scene, err := f.svc.ContinueScene(ctx, userID, prev, "choice-1")

		require.NoError(t, err)
		assert.Equal(t, "scene-next", scene.SceneID)
		f.stamina.AssertNotCalled(t, "ChargeForGeneration", mock.Anything, mock.Anything)
		f.sceneRepo.AssertCalled(t, "MarkSceneViewed", mock.Anything, userID, "scene-prev")
	})

	t.Run("существующая сцена переиспользуется: привязка без пересоздания", func(t *testing.T) {
		f := newSceneServiceFixture()
		prev := fullScene("scene-prev")
		candidate := fullScene("scene-dup")
		stored := fullScene("scene-dup")
		f.sceneRepo.On("MarkSceneViewed", mock.Anything, userID, "scene-prev").Return(nil)
		f.generator.On("GenerateScene", mock.Anything, prev, "choice-1").Return(candidate, nil)
		f.sceneRepo.On("GetBySceneID", mock.Anything, "scene-dup").Return(stored, nil)
		f.sceneRepo.On("AttachUserToScene", mock.Anything, userID, "scene-dup").Return(nil)

		scene, err := f.svc.ContinueScene(ctx, userID, prev, "choice-1")

		require.NoError(t, err)
		assert.Equal(t, "scene-dup", scene.SceneID)
		f.sceneRepo.AssertNotCalled(t, "CreateSceneWithUser", mock.Anything, mock.Anything, mock.Anything)
		// Дедупликация не перегенерирует контент и картинки.
		f.images.AssertNotCalled(t, "GenerateBackgroundImage", mock.Anything, mock.Anything)
	})

	t.Run("новая сцена без картинок генерирует их перед вставкой", func(t *testing.T) {
		f := newSceneServiceFixture()
		candidate := &models.Scene{
			SceneID:    "scene-img",
			Character:  "Alice",
			Emotion:    "happy",
			Text:       "Текст",
			Background: "парк осенью",
		}
		f.sceneRepo.On("FindUnviewedScene", mock.Anything, userID).Return(nil, models.ErrSceneNotFound)
		f.stamina.On("ChargeForGeneration", mock.Anything, userID).Return(nil)
		f.generator.On("GenerateScene", mock.Anything, (*models.Scene)(nil), "").Return(candidate, nil)
		f.sceneRepo.On("GetBySceneID", mock.Anything, "scene-img").Return(nil, models.ErrSceneNotFound)
		f.images.On("GenerateBackgroundImage", mock.Anything, "парк осенью").Return("https://img.example/bg.png", nil)
		f.images.On("GenerateCharacterImage", mock.Anything, "Alice", "happy").Return("https://img.example/char.png", nil)
		f.sceneRepo.On("CreateSceneWithUser", mock.Anything, mock.MatchedBy(func(s *models.Scene) bool {
			return s.BackgroundImage != nil && s.CharacterImage != nil
		}), userID).Return(candidate, nil)

		_, err := f.svc.ContinueScene(ctx, userID, nil, "")

		require.NoError(t, err)
		f.images.AssertExpectations(t)
		f.sceneRepo.AssertExpectations(t)
	})

	t.Run("отказ одной генерации картинки не фатален: сохраняется вторая", func(t *testing.T) {
		f := newSceneServiceFixture()
		candidate := &models.Scene{
			SceneID:    "scene-partial",
			Character:  "Alice",
			Emotion:    "sad",
			Text:       "Текст",
			Background: "вокзал",
		}
		f.sceneRepo.On("FindUnviewedScene", mock.Anything, userID).Return(nil, models.ErrSceneNotFound)
		f.stamina.On("ChargeForGeneration", mock.Anything, userID).Return(nil)
		f.generator.On("GenerateScene", mock.Anything, (*models.Scene)(nil), "").Return(candidate, nil)
		f.sceneRepo.On("GetBySceneID", mock.Anything, "scene-partial").Return(nil, models.ErrSceneNotFound)
		f.images.On("GenerateBackgroundImage", mock.Anything, "вокзал").Return("", models.ErrImageGenerationFailed)
		f.images.On("GenerateCharacterImage", mock.Anything, "Alice", "sad").Return("https://img.example/char.png", nil)
		f.sceneRepo.On("CreateSceneWithUser", mock.Anything, mock.MatchedBy(func(s *models.Scene) bool {
			return s.BackgroundImage == nil && s.CharacterImage != nil
		}), userID).Return(candidate, nil)

		_, err := f.svc.ContinueScene(ctx, userID, nil, "")

		require.NoError(t, err)
		f.sceneRepo.AssertExpectations(t)
	})

	t.Run("возобновленная сцена без фона дозаполняется и сохраняется", func(t *testing.T) {
		f := newSceneServiceFixture()
		resumed := &models.Scene{
			SceneID:        "scene-resume",
			Character:      "Alice",
			Emotion:        "calm",
			Text:           "Текст",
			Background:     "лес",
			CharacterImage: strPtr("https://img.example/char.png"),
		}
		filled := fullScene("scene-resume")
		f.sceneRepo.On("FindUnviewedScene", mock.Anything, userID).Return(resumed, nil)
		f.images.On("GenerateBackgroundImage", mock.Anything, "лес").Return("https://img.example/bg.png", nil)
		f.sceneRepo.On("FillMissingImages", mock.Anything, "scene-resume", mock.MatchedBy(func(img models.SceneImages) bool {
			return img.BackgroundImage != nil && img.CharacterImage == nil
		})).Return(filled, nil)

		scene, err := f.svc.ContinueScene(ctx, userID, nil, "")

		require.NoError(t, err)
		assert.True(t, scene.HasAllImages())
		// Портрет уже был - генерируем только фон.
		f.images.AssertNotCalled(t, "GenerateCharacterImage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("полный отказ генерации картинок возвращает сцену с null-полями", func(t *testing.T) {
		f := newSceneServiceFixture()
		resumed := &models.Scene{
			SceneID:    "scene-noimg",
			Character:  "Alice",
			Emotion:    "calm",
			Text:       "Текст",
			Background: "поле",
		}
		f.sceneRepo.On("FindUnviewedScene", mock.Anything, userID).Return(resumed, nil)
		f.images.On("GenerateBackgroundImage", mock.Anything, "поле").Return("", models.ErrImageGenerationFailed)
		f.images.On("GenerateCharacterImage", mock.Anything, "Alice", "calm").Return("", models.ErrImageGenerationFailed)

		scene, err := f.svc.ContinueScene(ctx, userID, nil, "")

		require.NoError(t, err)
		assert.Nil(t, scene.BackgroundImage)
		assert.Nil(t, scene.CharacterImage)
		f.sceneRepo.AssertNotCalled(t, "FillMissingImages", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ошибка генератора сцен пробрасывается наверх", func(t *testing.T) {
		f := newSceneServiceFixture()
		f.sceneRepo.On("FindUnviewedScene", mock.Anything, userID).Return(nil, models.ErrSceneNotFound)
		f.stamina.On("ChargeForGeneration", mock.Anything, userID).Return(nil)
		f.generator.On("GenerateScene", mock.Anything, (*models.Scene)(nil), "").
			Return(nil, models.ErrSceneGenerationFailed)

		_, err := f.svc.ContinueScene(ctx, userID, nil, "")

		assert.ErrorIs(t, err, models.ErrSceneGenerationFailed)
	})

	t.Run("ошибка хранилища при возобновлении пробрасывается", func(t *testing.T) {
		f := newSceneServiceFixture()
		dbErr := errors.New("connection refused")
		f.sceneRepo.On("FindUnviewedScene", mock.Anything, userID).Return(nil, dbErr)

		_, err := f.svc.ContinueScene(ctx, userID, nil, "")

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestSceneService_MarkSceneViewed(t *testing.T) {
	userID := uuid.New()

	t.Run("делегирует в репозиторий", func(t *testing.T) {
		f := newSceneServiceFixture()
		f.sceneRepo.On("MarkSceneViewed", mock.Anything, userID, "scene-1").Return(nil)

		err := f.svc.MarkSceneViewed(context.Background(), userID, "scene-1")

		require.NoError(t, err)
		f.sceneRepo.AssertExpectations(t)
	})

	t.Run("несуществующая пара возвращает ErrNotFound", func(t *testing.T) {
		f := newSceneServiceFixture()
		f.sceneRepo.On("MarkSceneViewed", mock.Anything, userID, "missing").Return(models.ErrNotFound)

		err := f.svc.MarkSceneViewed(context.Background(), userID, "missing")

		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
