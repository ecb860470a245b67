package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrTransformFailed - ошибка апстрима при трансформации изображения.
var ErrTransformFailed = errors.New("image transformation failed")

// ImageTransformer defines the interface for image-to-image transformation.
//
//go:generate mockery --name ImageTransformer --output ./mocks --outpkg mocks --case=underscore
type ImageTransformer interface {
	// TransformImage трансформирует изображение по текстовому промпту
	// и возвращает URL результатов.
	TransformImage(ctx context.Context, imageURL, prompt string) ([]string, error)
}

// FalConfig содержит конфигурацию для fal.ai клиента
type FalConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// FalClient вызывает fal.ai flux image-to-image API.
type FalClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ ImageTransformer = (*FalClient)(nil)

// NewFalClient создает новый экземпляр fal.ai клиента
func NewFalClient(cfg FalConfig, logger *zap.Logger) (*FalClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("не указан API ключ для fal.ai")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://fal.run"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &FalClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("FalClient"),
	}, nil
}

// falRequest - структура запроса к flux image-to-image API.
type falRequest struct {
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt"`
}

// falResponse - структура ответа flux API.
type falResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// TransformImage отправляет изображение и промпт в flux и возвращает URL результатов.
func (c *FalClient) TransformImage(ctx context.Context, imageURL, prompt string) ([]string, error) {
	log := c.logger.With(zap.String("imageURL", imageURL))

	reqBodyBytes, err := json.Marshal(falRequest{ImageURL: imageURL, Prompt: prompt})
	if err != nil {
		log.Error("Failed to marshal fal request payload", zap.Error(err))
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	endpointURL := c.baseURL + "/fal-ai/flux/dev/image-to-image"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(reqBodyBytes))
	if err != nil {
		log.Error("Failed to create fal request", zap.String("url", endpointURL), zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+c.apiKey)

	log.Debug("Sending request to fal API", zap.String("url", endpointURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Failed to execute fal request", zap.Error(err))
		return nil, fmt.Errorf("%w: http request failed: %v", ErrTransformFailed, err)
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Error("Fal API returned non-OK status",
			zap.Int("statusCode", resp.StatusCode),
			zap.ByteString("responseBody", bodyBytes),
		)
		return nil, fmt.Errorf("%w: API returned status %d: %s", ErrTransformFailed, resp.StatusCode, string(bodyBytes))
	}
	if readErr != nil {
		log.Error("Failed to read fal response body", zap.Error(readErr))
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrTransformFailed, readErr)
	}

	var parsed falResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		log.Error("Failed to decode fal response", zap.Error(err), zap.ByteString("responseBody", bodyBytes))
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrTransformFailed, err)
	}
	if len(parsed.Images) == 0 {
		log.Error("Fal API returned no images")
		return nil, fmt.Errorf("%w: API returned no images", ErrTransformFailed)
	}

	urls := make([]string, 0, len(parsed.Images))
	for _, img := range parsed.Images {
		if img.URL != "" {
			urls = append(urls, img.URL)
		}
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: API returned images without urls", ErrTransformFailed)
	}

	log.Info("Image transformed successfully", zap.Int("resultCount", len(urls)))
	return urls, nil
}
