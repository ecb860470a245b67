package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound      = errors.New("resource not found")
	ErrSceneNotFound = errors.New("scene not found")

	// User & Authentication Errors
	ErrUserNotFound = errors.New("user not found")
	ErrUnauthorized = errors.New("unauthorized")

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Stamina Errors
	ErrInsufficientStamina = errors.New("insufficient stamina")

	// Generation Errors
	ErrSceneGenerationFailed = errors.New("scene generation failed")
	ErrImageGenerationFailed = errors.New("image generation failed")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrInvalidInput   = errors.New("invalid input data")
)
