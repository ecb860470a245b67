package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"scene-server/internal/models"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// SceneGenerator defines the interface for narrative scene generation.
//
//go:generate mockery --name SceneGenerator --output ./mocks --outpkg mocks --case=underscore
type SceneGenerator interface {
	// GenerateScene генерирует следующую сцену по предыдущей сцене и
	// выбору игрока. SceneID результата - контентный хеш содержимого,
	// поэтому одинаковые ветки сходятся к одному идентификатору.
	GenerateScene(ctx context.Context, previousScene *models.Scene, playerChoice string) (*models.Scene, error)
}

// Config содержит конфигурацию для клиента нейросети
type Config struct {
	APIKey     string
	BaseURL    string
	ModelName  string
	Timeout    time.Duration
	MaxRetries int
}

// Client вызывает OpenRouter-совместимый chat completions API
// и разбирает ответ в структуру сцены.
type Client struct {
	client     *openai.Client
	modelName  string
	timeout    time.Duration
	maxRetries int
	logger     *zap.Logger
}

var _ SceneGenerator = (*Client)(nil)

const sceneSystemPrompt = `Ты движок интерактивной визуальной новеллы. По предыдущей сцене и выбору игрока сгенерируй следующую сцену.
Ответ строго в формате JSON без пояснений, со следующими полями:
{"character": "имя говорящего персонажа", "emotion": "эмоция персонажа", "text": "реплика или нарратив сцены", "background": "краткое описание фона", "next": "идентификатор следующего узла или пустая строка", "type": "dialogue|narration|choice", "requiresAI": true, "choices": [{"id": "...", "text": "..."}]}`

// New создает новый экземпляр клиента нейросети
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("не указан API ключ для OpenRouter")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "deepseek/deepseek-chat-v3-0324:free"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:     openai.NewClientWithConfig(config),
		modelName:  cfg.ModelName,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		logger:     logger.Named("AIClient"),
	}, nil
}

// GenerateScene генерирует следующую сцену новеллы.
func (c *Client) GenerateScene(ctx context.Context, previousScene *models.Scene, playerChoice string) (*models.Scene, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	userPrompt, err := buildUserPrompt(previousScene, playerChoice)
	if err != nil {
		return nil, err
	}

	attempts := 0
	for attempts < c.maxRetries {
		attempts++

		req := openai.ChatCompletionRequest{
			Model: c.modelName,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: sceneSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
			Temperature: 0.8,
			MaxTokens:   4000,
			TopP:        0.95,
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			c.logger.Error("Ошибка при вызове CreateChatCompletion", zap.Error(err), zap.Int("attempt", attempts))
			if attempts >= c.maxRetries {
				return nil, fmt.Errorf("%w: ошибка AI после %d попыток: %v", models.ErrSceneGenerationFailed, attempts, err)
			}
			time.Sleep(time.Duration(attempts) * time.Second)
			continue
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			c.logger.Warn("Пустой ответ от AI", zap.Int("attempt", attempts))
			if attempts >= c.maxRetries {
				return nil, fmt.Errorf("%w: пустой ответ от API после %d попыток", models.ErrSceneGenerationFailed, attempts)
			}
			time.Sleep(time.Duration(attempts) * time.Second)
			continue
		}

		scene, err := ParseSceneResponse(resp.Choices[0].Message.Content)
		if err != nil {
			c.logger.Warn("Ответ AI не разобрался в сцену, пробуем снова", zap.Error(err), zap.Int("attempt", attempts))
			if attempts >= c.maxRetries {
				return nil, fmt.Errorf("%w: %v", models.ErrSceneGenerationFailed, err)
			}
			time.Sleep(time.Duration(attempts) * time.Second)
			continue
		}

		c.logger.Info("Сцена сгенерирована",
			zap.String("model", c.modelName),
			zap.Int("attempt", attempts),
			zap.String("sceneID", scene.SceneID))
		return scene, nil
	}

	return nil, fmt.Errorf("%w: не удалось получить ответ от API после нескольких попыток", models.ErrSceneGenerationFailed)
}

// buildUserPrompt сериализует контекст генерации в JSON для передачи модели.
func buildUserPrompt(previousScene *models.Scene, playerChoice string) (string, error) {
	input := map[string]any{
		"previousScene": previousScene,
		"playerChoice":  playerChoice,
	}
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("ошибка при сериализации входных данных в JSON: %w", err)
	}
	return string(inputJSON), nil
}

// sceneResponse - форма JSON-ответа модели.
type sceneResponse struct {
	Character  string          `json:"character"`
	Emotion    string          `json:"emotion"`
	Text       string          `json:"text"`
	Background string          `json:"background"`
	Next       string          `json:"next"`
	Type       string          `json:"type"`
	RequiresAI bool            `json:"requiresAI"`
	Choices    json.RawMessage `json:"choices"`
	Context    json.RawMessage `json:"context"`
	Metadata   json.RawMessage `json:"metadata"`
}

// ParseSceneResponse разбирает текстовый ответ AI в структуру сцены
// и присваивает ей контентно-адресуемый SceneID.
func ParseSceneResponse(responseText string) (*models.Scene, error) {
	if responseText == "" {
		return nil, errors.New("пустой ответ для парсинга")
	}

	jsonPart, err := extractJSON(responseText)
	if err != nil {
		return nil, err
	}

	var parsed sceneResponse
	if err := json.Unmarshal([]byte(jsonPart), &parsed); err != nil {
		return nil, fmt.Errorf("некорректный JSON сцены: %w", err)
	}
	if parsed.Text == "" {
		return nil, errors.New("ошибка формата: сцена без текста")
	}

	scene := &models.Scene{
		Character:  parsed.Character,
		Emotion:    parsed.Emotion,
		Text:       parsed.Text,
		Background: parsed.Background,
		Next:       parsed.Next,
		Type:       parsed.Type,
		RequiresAI: parsed.RequiresAI,
		Choices:    parsed.Choices,
		Context:    parsed.Context,
		Metadata:   parsed.Metadata,
	}
	scene.SceneID = ComputeSceneID(scene)
	return scene, nil
}

// extractJSON вырезает JSON-объект из ответа: модели любят оборачивать
// его в markdown-ограждения или сопровождать пояснениями.
func extractJSON(responseText string) (string, error) {
	jsonStart := strings.Index(responseText, "{")
	if jsonStart == -1 {
		return "", fmt.Errorf("не найден символ '{' в ответе: %s", truncate(responseText, 200))
	}

	potential := responseText[jsonStart:]
	braceLevel := 0
	inString := false
	var prevChar rune
	for i, r := range potential {
		switch r {
		case '"':
			if prevChar != '\\' {
				inString = !inString
			}
		case '{':
			if !inString {
				braceLevel++
			}
		case '}':
			if !inString {
				braceLevel--
				if braceLevel == 0 {
					return potential[:i+1], nil
				}
			}
		}
		prevChar = r
	}
	return "", fmt.Errorf("не найдена соответствующая '}' или нарушен баланс скобок в ответе: %s", truncate(potential, 200))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// ComputeSceneID считает SHA-256 хеш содержимого сцены. Одинаковое
// содержимое у разных пользователей дает один и тот же идентификатор,
// что обеспечивает дедупликацию сцен в хранилище.
func ComputeSceneID(scene *models.Scene) string {
	h := sha256.New()
	h.Write([]byte(scene.Character))
	h.Write([]byte{0})
	h.Write([]byte(scene.Emotion))
	h.Write([]byte{0})
	h.Write([]byte(scene.Text))
	h.Write([]byte{0})
	h.Write([]byte(scene.Background))
	h.Write([]byte{0})
	h.Write([]byte(scene.Next))
	h.Write([]byte{0})
	h.Write([]byte(scene.Type))
	h.Write([]byte{0})
	h.Write(scene.Choices)
	return hex.EncodeToString(h.Sum(nil))
}
