package handler

import (
	"errors"
	"net/http"

	"scene-server/internal/imagegen"
	"scene-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError переводит типизированные ошибки сервисного слоя
// в HTTP-статусы. Необработанные ошибки сводятся к 500 без деталей.
func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	switch {
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeUnauthorized, Message: "Unauthorized"}
	case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenInvalid, Message: "Token is invalid or malformed"}
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenExpired, Message: "Token has expired"}
	case errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: err.Error()}
	case errors.Is(err, models.ErrInsufficientStamina):
		statusCode = http.StatusPaymentRequired
		errResp = models.ErrorResponse{Code: models.ErrCodeInsufficientStamina, Message: "Not enough stamina for scene generation"}
	case errors.Is(err, models.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeUserNotFound, Message: "User not found"}
	case errors.Is(err, models.ErrSceneNotFound), errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeSceneNotFound, Message: "Scene not found"}
	case errors.Is(err, imagegen.ErrTransformFailed):
		statusCode = http.StatusBadGateway
		errResp = models.ErrorResponse{Code: models.ErrCodeUpstreamFailure, Message: "Image transformation failed", Details: err.Error()}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
