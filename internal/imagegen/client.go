package imagegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scene-server/internal/models"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ImageGenerator defines the interface for scene image generation.
//
//go:generate mockery --name ImageGenerator --output ./mocks --outpkg mocks --case=underscore
type ImageGenerator interface {
	// GenerateBackgroundImage генерирует фоновое изображение сцены
	// по текстовому описанию и возвращает URL.
	GenerateBackgroundImage(ctx context.Context, description string) (string, error)

	// GenerateCharacterImage генерирует портрет персонажа с заданной
	// эмоцией и возвращает URL.
	GenerateCharacterImage(ctx context.Context, character, emotion string) (string, error)
}

// Config содержит конфигурацию для клиента генерации изображений
type Config struct {
	APIKey  string
	Timeout time.Duration
}

// Client генерирует изображения через DALL-E 3 image API.
type Client struct {
	client  *openai.Client
	timeout time.Duration
	logger  *zap.Logger
}

var _ ImageGenerator = (*Client)(nil)

// New создает новый экземпляр клиента генерации изображений
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("не указан API ключ для генерации изображений")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &Client{
		client:  openai.NewClient(cfg.APIKey),
		timeout: cfg.Timeout,
		logger:  logger.Named("ImageClient"),
	}, nil
}

// GenerateBackgroundImage генерирует широкоформатный фон сцены.
func (c *Client) GenerateBackgroundImage(ctx context.Context, description string) (string, error) {
	prompt := fmt.Sprintf("Visual novel background art, no characters, detailed anime style scenery: %s", description)
	return c.generateImage(ctx, openai.ImageRequest{
		Model:   openai.CreateImageModelDallE3,
		Prompt:  prompt,
		N:       1,
		Size:    openai.CreateImageSize1792x1024,
		Quality: openai.CreateImageQualityHD,
		Style:   openai.CreateImageStyleVivid,
	})
}

// GenerateCharacterImage генерирует портрет персонажа.
func (c *Client) GenerateCharacterImage(ctx context.Context, character, emotion string) (string, error) {
	prompt := fmt.Sprintf("Visual novel character portrait, anime style, plain background: %s with %s expression", character, emotion)
	return c.generateImage(ctx, openai.ImageRequest{
		Model:   openai.CreateImageModelDallE3,
		Prompt:  prompt,
		N:       1,
		Size:    openai.CreateImageSize1024x1024,
		Quality: openai.CreateImageQualityStandard,
		Style:   openai.CreateImageStyleNatural,
	})
}

// generateImage выполняет запрос к image API и возвращает URL результата.
func (c *Client) generateImage(ctx context.Context, req openai.ImageRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log := c.logger.With(zap.String("size", req.Size))
	log.Debug("Отправка запроса на генерацию изображения", zap.String("prompt", req.Prompt))

	resp, err := c.client.CreateImage(ctx, req)
	if err != nil {
		log.Error("Ошибка при вызове image API", zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrImageGenerationFailed, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		log.Error("Image API вернул пустой результат")
		return "", fmt.Errorf("%w: API вернул пустой результат", models.ErrImageGenerationFailed)
	}

	log.Info("Изображение сгенерировано", zap.String("url", resp.Data[0].URL))
	return resp.Data[0].URL, nil
}
