package service

import (
	"context"

	"scene-server/internal/models"
	"scene-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StaminaService defines the interface for stamina accounting.
type StaminaService interface {
	// ChargeForGeneration списывает фиксированную стоимость генерации
	// сцены. Для UNLIMITED-пользователей списание не выполняется.
	// Возвращает models.ErrUserNotFound или models.ErrInsufficientStamina.
	ChargeForGeneration(ctx context.Context, userID uuid.UUID) error

	// GetBalance возвращает пользователя с текущим балансом стамины.
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type staminaServiceImpl struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

var _ StaminaService = (*staminaServiceImpl)(nil)

// NewStaminaService создает новый экземпляр StaminaService.
func NewStaminaService(userRepo repository.UserRepository, logger *zap.Logger) StaminaService {
	return &staminaServiceImpl{
		userRepo: userRepo,
		logger:   logger.Named("StaminaService"),
	}
}

// ChargeForGeneration списывает стоимость генерации сцены.
func (s *staminaServiceImpl) ChargeForGeneration(ctx context.Context, userID uuid.UUID) error {
	log := s.logger.With(zap.String("userID", userID.String()))

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.HasUnlimitedAccess() {
		log.Debug("User has unlimited access, skipping stamina charge")
		return nil
	}

	err = s.userRepo.SpendStamina(ctx, userID, models.StaminaCostSceneGeneration, models.UsageTypeSceneGeneration)
	if err != nil {
		return err
	}

	log.Info("Stamina charged for scene generation", zap.Int("cost", models.StaminaCostSceneGeneration))
	return nil
}

// GetBalance возвращает пользователя с текущим балансом.
func (s *staminaServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}
