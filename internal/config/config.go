package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"scene-server/internal/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию для Scene Service
type Config struct {
	// Настройки сервера
	Port     string `envconfig:"SCENE_SERVER_PORT" default:"8080"`
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Настройки CORS
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки генерации текста (OpenRouter-совместимый API)
	AIModel      string        `envconfig:"AI_MODEL" default:"deepseek/deepseek-chat-v3-0324:free"`
	AIBaseURL    string        `envconfig:"AI_BASE_URL" default:"https://openrouter.ai/api/v1"`
	AITimeout    time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	AIMaxRetries int           `envconfig:"AI_MAX_RETRIES" default:"3"`

	// Настройки генерации изображений (DALL-E)
	ImageTimeout time.Duration `envconfig:"IMAGE_TIMEOUT" default:"120s"`

	// Настройки image-to-image (fal.ai)
	FalBaseURL string        `envconfig:"FAL_BASE_URL" default:"https://fal.run"`
	FalTimeout time.Duration `envconfig:"FAL_TIMEOUT" default:"120s"`

	// Секретные поля БЕЗ envconfig тегов
	JWTSecret string
	AIAPIKey  string
	FalAPIKey string
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetAllowedOrigins возвращает список разрешенных CORS origins.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	origins := strings.Split(c.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов
func LoadConfig() (*Config, error) {
	var cfg Config
	// Загружаем НЕсекретные переменные
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации scene-server: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты
	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.JWTSecret, loadErr = utils.ReadSecret("jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.AIAPIKey, loadErr = utils.ReadSecret("ai_api_key")
	if loadErr != nil {
		return nil, loadErr
	}

	// Ключ fal.ai опционален: без него недоступен только /img-img,
	// генерация сцен продолжает работать.
	cfg.FalAPIKey, loadErr = utils.ReadSecret("fal_api_key")
	if loadErr != nil {
		log.Printf("Секрет fal_api_key не найден, /img-img будет отключен: %v", loadErr)
		cfg.FalAPIKey = ""
	}

	log.Printf("Конфигурация Scene Service загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB DSN: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  AI Model: %s", cfg.AIModel)
	log.Printf("  AI Base URL: %s", cfg.AIBaseURL)
	log.Println("  JWT Secret: [ЗАГРУЖЕН]")
	log.Println("  AI API Key: [ЗАГРУЖЕН]")
	if cfg.FalAPIKey != "" {
		log.Println("  Fal API Key: [ЗАГРУЖЕН]")
	}

	return &cfg, nil
}
