package handler

import "scene-server/internal/models"

// SceneRequest - тело POST /game/scene.
type SceneRequest struct {
	PreviousScene *models.Scene `json:"previousScene"`
	PlayerChoice  string        `json:"playerChoice"`
}

// SceneViewedRequest - тело POST /game/scene/viewed.
type SceneViewedRequest struct {
	SceneID string `json:"sceneId" binding:"required"`
}

// StaminaResponse - тело ответа GET /game/stamina.
type StaminaResponse struct {
	Stamina          int    `json:"stamina"`
	SubscriptionTier string `json:"subscriptionTier"`
}

// ImgImgRequest - тело POST /img-img.
type ImgImgRequest struct {
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
}

// ImgImgResponse - тело ответа POST /img-img.
type ImgImgResponse struct {
	Status string   `json:"status"`
	Output []string `json:"output"`
}
