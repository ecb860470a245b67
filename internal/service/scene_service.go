package service

import (
	"context"
	"errors"
	"sync"

	"scene-server/internal/ai"
	"scene-server/internal/imagegen"
	"scene-server/internal/models"
	"scene-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SceneService defines the interface for the scene generation workflow.
type SceneService interface {
	// ContinueScene возвращает следующую сцену для пользователя.
	// Если у пользователя есть непросмотренная сцена и previousScene не
	// передан, возвращается она без списания стамины. Свежий старт
	// (previousScene == nil, непросмотренной сцены нет) списывает стамину.
	// Продолжение ветки (previousScene != nil) стамину не списывает.
	ContinueScene(ctx context.Context, userID uuid.UUID, previousScene *models.Scene, playerChoice string) (*models.Scene, error)

	// MarkSceneViewed помечает сцену просмотренной для пользователя.
	MarkSceneViewed(ctx context.Context, userID uuid.UUID, sceneID string) error
}

type sceneServiceImpl struct {
	sceneRepo repository.SceneRepository
	stamina   StaminaService
	generator ai.SceneGenerator
	images    imagegen.ImageGenerator
	logger    *zap.Logger
}

var _ SceneService = (*sceneServiceImpl)(nil)

// NewSceneService создает новый экземпляр SceneService.
func NewSceneService(
	sceneRepo repository.SceneRepository,
	stamina StaminaService,
	generator ai.SceneGenerator,
	images imagegen.ImageGenerator,
	logger *zap.Logger,
) SceneService {
	return &sceneServiceImpl{
		sceneRepo: sceneRepo,
		stamina:   stamina,
		generator: generator,
		images:    images,
		logger:    logger.Named("SceneService"),
	}
}

// ContinueScene реализует основной workflow генерации сцены.
func (s *sceneServiceImpl) ContinueScene(ctx context.Context, userID uuid.UUID, previousScene *models.Scene, playerChoice string) (*models.Scene, error) {
	log := s.logger.With(zap.String("userID", userID.String()))

	if previousScene == nil {
		// Возобновление: непросмотренная сцена и есть ответ, стамина
		// не списывается - новая генерация не выполнялась.
		resumed, err := s.sceneRepo.FindUnviewedScene(ctx, userID)
		if err == nil {
			log.Info("Resuming unviewed scene", zap.String("sceneID", resumed.SceneID))
			return s.ensureImages(ctx, resumed), nil
		}
		if !errors.Is(err, models.ErrSceneNotFound) {
			return nil, err
		}

		// Свежий старт: списываем стамину до обращения к генератору.
		if err := s.stamina.ChargeForGeneration(ctx, userID); err != nil {
			return nil, err
		}
	} else if previousScene.SceneID != "" {
		// Переход по ветке: предыдущая сцена считается просмотренной,
		// иначе у пользователя оказалось бы две непросмотренных.
		if err := s.sceneRepo.MarkSceneViewed(ctx, userID, previousScene.SceneID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}

	candidate, err := s.generator.GenerateScene(ctx, previousScene, playerChoice)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("sceneID", candidate.SceneID))

	existing, err := s.sceneRepo.GetBySceneID(ctx, candidate.SceneID)
	if err == nil {
		// Дедупликация: сцена уже сгенерирована другим пользователем.
		// Контент не перегенерируем, только привязываем пользователя
		// и дозаполняем отсутствующие картинки.
		log.Info("Scene already exists, attaching user to stored scene")
		if err := s.sceneRepo.AttachUserToScene(ctx, userID, existing.SceneID); err != nil {
			return nil, err
		}
		return s.ensureImages(ctx, existing), nil
	}
	if !errors.Is(err, models.ErrSceneNotFound) {
		return nil, err
	}

	// Новая сцена: генерируем картинки до вставки, чтобы строка сразу
	// была полной. Отказ генерации картинок не фатален.
	images := s.generateMissingImages(ctx, candidate)
	if images.BackgroundImage != nil {
		candidate.BackgroundImage = images.BackgroundImage
	}
	if images.CharacterImage != nil {
		candidate.CharacterImage = images.CharacterImage
	}

	stored, err := s.sceneRepo.CreateSceneWithUser(ctx, candidate, userID)
	if err != nil {
		return nil, err
	}
	log.Info("New scene created",
		zap.Bool("hasBackground", stored.BackgroundImage != nil),
		zap.Bool("hasCharacter", stored.CharacterImage != nil))
	return stored, nil
}

// MarkSceneViewed помечает сцену просмотренной.
func (s *sceneServiceImpl) MarkSceneViewed(ctx context.Context, userID uuid.UUID, sceneID string) error {
	return s.sceneRepo.MarkSceneViewed(ctx, userID, sceneID)
}

// ensureImages дозаполняет отсутствующие картинки сцены перед возвратом.
// Любая ошибка здесь не фатальна: сцена возвращается как есть.
func (s *sceneServiceImpl) ensureImages(ctx context.Context, scene *models.Scene) *models.Scene {
	if scene.HasAllImages() {
		return scene
	}

	images := s.generateMissingImages(ctx, scene)
	if images.IsEmpty() {
		return scene
	}

	filled, err := s.sceneRepo.FillMissingImages(ctx, scene.SceneID, images)
	if err != nil {
		s.logger.Warn("Failed to persist generated images, returning scene without them",
			zap.Error(err), zap.String("sceneID", scene.SceneID))
		return scene
	}
	return filled
}

// generateMissingImages генерирует недостающие картинки сцены.
// Фон и персонаж запрашиваются параллельно, результаты отслеживаются
// по отдельности: отказ одной генерации не теряет вторую.
func (s *sceneServiceImpl) generateMissingImages(ctx context.Context, scene *models.Scene) models.SceneImages {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		images models.SceneImages
	)
	log := s.logger.With(zap.String("sceneID", scene.SceneID))

	if scene.BackgroundImage == nil && scene.Background != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := s.images.GenerateBackgroundImage(ctx, scene.Background)
			if err != nil {
				log.Warn("Background image generation failed", zap.Error(err))
				return
			}
			mu.Lock()
			images.BackgroundImage = &url
			mu.Unlock()
		}()
	}

	if scene.CharacterImage == nil && scene.Character != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := s.images.GenerateCharacterImage(ctx, scene.Character, scene.Emotion)
			if err != nil {
				log.Warn("Character image generation failed", zap.Error(err))
				return
			}
			mu.Lock()
			images.CharacterImage = &url
			mu.Unlock()
		}()
	}

	wg.Wait()
	return images
}
