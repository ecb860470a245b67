package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"scene-server/internal/imagegen"
	"scene-server/internal/models"
	"scene-server/internal/service"

	"github.com/gin-gonic/gin"
)

// GameHandler обслуживает игровые HTTP-эндпоинты.
type GameHandler struct {
	sceneService   service.SceneService
	staminaService service.StaminaService
	transformer    imagegen.ImageTransformer
	verifier       TokenVerifier
}

// NewGameHandler создает новый экземпляр GameHandler.
// transformer может быть nil - тогда /img-img отвечает 503.
func NewGameHandler(
	sceneService service.SceneService,
	staminaService service.StaminaService,
	transformer imagegen.ImageTransformer,
	verifier TokenVerifier,
) *GameHandler {
	return &GameHandler{
		sceneService:   sceneService,
		staminaService: staminaService,
		transformer:    transformer,
		verifier:       verifier,
	}
}

// RegisterRoutes регистрирует игровые маршруты.
// rateLimitMiddleware применяется к генерации сцен - самому дорогому эндпоинту.
func (h *GameHandler) RegisterRoutes(router *gin.Engine, rateLimitMiddleware gin.HandlerFunc) {
	gameGroup := router.Group("/game")
	gameGroup.Use(h.AuthMiddleware())
	{
		gameGroup.POST("/scene", rateLimitMiddleware, h.continueScene)
		gameGroup.POST("/scene/viewed", h.markSceneViewed)
		gameGroup.GET("/stamina", h.getStamina)
	}

	protected := router.Group("/")
	protected.Use(h.AuthMiddleware())
	{
		protected.POST("/img-img", h.transformImage)
	}

	// Диагностический эхо-эндпоинт, доступен без аутентификации.
	router.GET("/token", h.tokenEchoGet)
	router.POST("/token", h.tokenEchoPost)
}

// continueScene обрабатывает POST /game/scene.
func (h *GameHandler) continueScene(c *gin.Context) {
	userID, ok := models.GetUserIDFromContext(c.Request.Context())
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req SceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	scene, err := h.sceneService.ContinueScene(c.Request.Context(), userID, req.PreviousScene, req.PlayerChoice)
	if err != nil {
		sceneRequestsTotal.WithLabelValues("error").Inc()
		handleServiceError(c, err)
		return
	}

	sceneRequestsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, scene)
}

// markSceneViewed обрабатывает POST /game/scene/viewed.
func (h *GameHandler) markSceneViewed(c *gin.Context) {
	userID, ok := models.GetUserIDFromContext(c.Request.Context())
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	var req SceneViewedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}

	if err := h.sceneService.MarkSceneViewed(c.Request.Context(), userID, req.SceneID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getStamina обрабатывает GET /game/stamina.
func (h *GameHandler) getStamina(c *gin.Context) {
	userID, ok := models.GetUserIDFromContext(c.Request.Context())
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	user, err := h.staminaService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, StaminaResponse{
		Stamina:          user.Stamina,
		SubscriptionTier: user.SubscriptionTier,
	})
}

// transformImage обрабатывает POST /img-img: stateless-прокси без
// персистентности и учета стамины.
func (h *GameHandler) transformImage(c *gin.Context) {
	if h.transformer == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Code:    models.ErrCodeUpstreamFailure,
			Message: "Image transformation is not configured",
		})
		return
	}

	var req ImgImgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}
	if req.ImageURL == "" || req.Prompt == "" {
		handleServiceError(c, fmt.Errorf("%w: imageUrl and prompt are required", models.ErrInvalidInput))
		return
	}

	urls, err := h.transformer.TransformImage(c.Request.Context(), req.ImageURL, req.Prompt)
	if err != nil {
		imageTransformationsTotal.WithLabelValues("error").Inc()
		handleServiceError(c, err)
		return
	}

	imageTransformationsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, ImgImgResponse{Status: "success", Output: urls})
}

// tokenEchoGet обрабатывает GET /token - диагностика маршрутизации:
// возвращает URL запроса вместе с query-параметрами.
func (h *GameHandler) tokenEchoGet(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "url": c.Request.URL.String()})
}

// tokenEchoPost обрабатывает POST /token, возвращая тело запроса как есть.
func (h *GameHandler) tokenEchoPost(c *gin.Context) {
	var body json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		body = json.RawMessage("null")
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "body": body})
}
