package models

// ErrorResponse - стандартное тело ошибки API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Коды ошибок API
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeTokenInvalid        = "TOKEN_INVALID"
	ErrCodeTokenExpired        = "TOKEN_EXPIRED"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeSceneNotFound       = "SCENE_NOT_FOUND"
	ErrCodeInsufficientStamina = "INSUFFICIENT_STAMINA"
	ErrCodeUpstreamFailure     = "UPSTREAM_FAILURE"
	ErrCodeInternal            = "INTERNAL_ERROR"
)
