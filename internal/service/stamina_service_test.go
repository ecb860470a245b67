package service

import (
	"context"
	"testing"

	"scene-server/internal/models"
	repomocks "scene-server/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStaminaService_ChargeForGeneration(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("FREE-пользователь списывает фиксированную стоимость", func(t *testing.T) {
		userRepo := new(repomocks.UserRepository)
		userRepo.On("GetUserByID", mock.Anything, userID).
			Return(&models.User{ID: userID, Stamina: 50, SubscriptionTier: models.TierFree}, nil)
		userRepo.On("SpendStamina", mock.Anything, userID, models.StaminaCostSceneGeneration, models.UsageTypeSceneGeneration).
			Return(nil)

		svc := NewStaminaService(userRepo, zap.NewNop())
		err := svc.ChargeForGeneration(ctx, userID)

		require.NoError(t, err)
		userRepo.AssertExpectations(t)
	})

	t.Run("UNLIMITED-пользователь не списывает стамину", func(t *testing.T) {
		userRepo := new(repomocks.UserRepository)
		userRepo.On("GetUserByID", mock.Anything, userID).
			Return(&models.User{ID: userID, Stamina: 0, SubscriptionTier: models.TierUnlimited}, nil)

		svc := NewStaminaService(userRepo, zap.NewNop())
		err := svc.ChargeForGeneration(ctx, userID)

		require.NoError(t, err)
		userRepo.AssertNotCalled(t, "SpendStamina", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("несуществующий пользователь возвращает ErrUserNotFound", func(t *testing.T) {
		userRepo := new(repomocks.UserRepository)
		userRepo.On("GetUserByID", mock.Anything, userID).Return(nil, models.ErrUserNotFound)

		svc := NewStaminaService(userRepo, zap.NewNop())
		err := svc.ChargeForGeneration(ctx, userID)

		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("нехватка баланса пробрасывается наверх", func(t *testing.T) {
		userRepo := new(repomocks.UserRepository)
		userRepo.On("GetUserByID", mock.Anything, userID).
			Return(&models.User{ID: userID, Stamina: 3, SubscriptionTier: models.TierFree}, nil)
		userRepo.On("SpendStamina", mock.Anything, userID, models.StaminaCostSceneGeneration, models.UsageTypeSceneGeneration).
			Return(models.ErrInsufficientStamina)

		svc := NewStaminaService(userRepo, zap.NewNop())
		err := svc.ChargeForGeneration(ctx, userID)

		assert.ErrorIs(t, err, models.ErrInsufficientStamina)
	})
}

func TestStaminaService_GetBalance(t *testing.T) {
	userID := uuid.New()
	userRepo := new(repomocks.UserRepository)
	userRepo.On("GetUserByID", mock.Anything, userID).
		Return(&models.User{ID: userID, Stamina: 42, SubscriptionTier: models.TierFree}, nil)

	svc := NewStaminaService(userRepo, zap.NewNop())
	user, err := svc.GetBalance(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, 42, user.Stamina)
}
