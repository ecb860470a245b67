package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scene-server/internal/ai"
	"scene-server/internal/config"
	"scene-server/internal/database"
	"scene-server/internal/handler"
	"scene-server/internal/imagegen"
	"scene-server/internal/logger"
	"scene-server/internal/middleware"
	"scene-server/internal/repository"
	"scene-server/internal/service"
	"scene-server/internal/token"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	// .env нужен только для локальной разработки, в контейнере его нет.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: "json",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized successfully", zap.String("logLevel", cfg.LogLevel))

	// --- External Connections ---
	pgPool, err := setupPostgres(cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()
	zap.L().Info("Connected to PostgreSQL")

	if err := database.ApplyMigrations(cfg.GetDSN()); err != nil {
		zap.L().Fatal("Failed to apply database migrations", zap.Error(err))
	}
	zap.L().Info("Database migrations applied")

	// --- Dependency Injection ---
	userRepo := repository.NewPgUserRepository(pgPool, log)
	sceneRepo := repository.NewPgSceneRepository(pgPool, log)

	verifier, err := token.NewVerifier(cfg.JWTSecret, log)
	if err != nil {
		zap.L().Fatal("Failed to create token verifier", zap.Error(err))
	}

	sceneGenerator, err := ai.New(ai.Config{
		APIKey:     cfg.AIAPIKey,
		BaseURL:    cfg.AIBaseURL,
		ModelName:  cfg.AIModel,
		Timeout:    cfg.AITimeout,
		MaxRetries: cfg.AIMaxRetries,
	}, log)
	if err != nil {
		zap.L().Fatal("Failed to create AI client", zap.Error(err))
	}

	imageGenerator, err := imagegen.New(imagegen.Config{
		APIKey:  cfg.AIAPIKey,
		Timeout: cfg.ImageTimeout,
	}, log)
	if err != nil {
		zap.L().Fatal("Failed to create image generation client", zap.Error(err))
	}

	// Трансформация изображений опциональна: без ключа fal.ai
	// эндпоинт /img-img отвечает 503, остальное работает.
	var transformer imagegen.ImageTransformer
	if cfg.FalAPIKey != "" {
		falClient, err := imagegen.NewFalClient(imagegen.FalConfig{
			APIKey:  cfg.FalAPIKey,
			BaseURL: cfg.FalBaseURL,
			Timeout: cfg.FalTimeout,
		}, log)
		if err != nil {
			zap.L().Fatal("Failed to create fal client", zap.Error(err))
		}
		transformer = falClient
	} else {
		zap.L().Warn("Fal API key is not configured, /img-img endpoint is disabled")
	}

	staminaService := service.NewStaminaService(userRepo, log)
	sceneService := service.NewSceneService(sceneRepo, staminaService, sceneGenerator, imageGenerator, log)

	// --- Rate Limiter Middleware Setup ---
	// Генерация сцены - самый дорогой эндпоинт: внешние AI-вызовы
	// и списание стамины. 10 запросов в минуту на IP.
	rateLimitStore := rateli.InMemoryStore(&rateli.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 10,
	})
	rateLimitMiddleware := rateli.RateLimiter(rateLimitStore, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.String(http.StatusTooManyRequests, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
	zap.L().Info("Rate limiter middleware initialized")

	gameHandler := handler.NewGameHandler(sceneService, staminaService, transformer, verifier)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	// Configure CORS Middleware
	corsConfig := cors.DefaultConfig()
	allowedOrigins := cfg.GetAllowedOrigins()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		zap.L().Info("CORSAllowedOrigins not set, allowing default", zap.String("origin", "http://localhost:3000"))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Health Check Endpoint
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// Register Application Routes
	gameHandler.RegisterRoutes(router, rateLimitMiddleware)

	// Prometheus middleware применяется после регистрации роутов.
	p.Use(router)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.Port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// setupPostgres initializes the PostgreSQL connection pool with retry logic.
func setupPostgres(cfg *config.Config) (*pgxpool.Pool, error) {
	zap.L().Debug("Setting up PostgreSQL connection...")

	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	var pool *pgxpool.Pool
	var lastErr error
	maxRetries := 50
	retryDelay := 3 * time.Second

	zap.L().Info("Attempting to connect to PostgreSQL", zap.Int("max_retries", maxRetries), zap.Duration("retry_delay", retryDelay))

	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		connectCtx, connectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		pool, err = pgxpool.NewWithConfig(connectCtx, poolConfig)
		connectCancel()

		if err != nil {
			lastErr = fmt.Errorf("unable to create postgres connection pool (attempt %d/%d): %w", attempt, maxRetries, err)
			zap.L().Warn("Postgres connection pool creation failed, retrying...",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Error(err),
			)
			if i < maxRetries-1 {
				time.Sleep(retryDelay)
			}
			continue
		}

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = pool.Ping(pingCtx)
		pingCancel()

		if err == nil {
			zap.L().Info("Successfully connected and pinged PostgreSQL", zap.Int("attempt", attempt))
			return pool, nil
		}

		pool.Close()
		lastErr = fmt.Errorf("unable to ping postgres database (attempt %d/%d): %w", attempt, maxRetries, err)
		zap.L().Warn("Postgres ping failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	zap.L().Error("Failed to connect to PostgreSQL after all retries", zap.Int("attempts", maxRetries), zap.Error(lastErr))
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxRetries, lastErr)
}
