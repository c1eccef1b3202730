package main

import (
	"context"
	"log"

	"facebrain/config"
	"facebrain/internal/clarifai"
	"facebrain/internal/handler"
	"facebrain/internal/redis"
	"facebrain/internal/repository"
	"facebrain/internal/server"
	"facebrain/internal/services"
	"facebrain/pkg/database"
	"facebrain/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppEnv)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	l.Infof("Database connection established")

	var (
		redisClient *goredis.Client
		limiter     *redis.RateLimiter
		cache       services.UserCache
	)
	if cfg.RedisEnabled {
		redisClient, err = redis.Connect(ctx, redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			l.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()

		limiter = redis.NewRateLimiter(redisClient, redis.RateLimitConfig{
			AuthLimit:  cfg.AuthRateLimit,
			AuthWindow: cfg.AuthRateWindow,
		})
		cache = redis.NewCacheStore(redisClient, redis.CacheConfig{UserTTL: cfg.ProfileCacheTTL})
		l.Infof("Redis connection established")
	}

	if cfg.ClarifaiAPIKey == "" {
		l.Logger.Warn("CLARIFAI_API_KEY is not set; image submissions will be rejected by the provider")
	}
	detector, err := clarifai.NewClient(clarifai.Config{
		BaseURL:      cfg.ClarifaiBaseURL,
		APIKey:       cfg.ClarifaiAPIKey,
		UserID:       cfg.ClarifaiUserID,
		AppID:        cfg.ClarifaiAppID,
		ModelID:      cfg.ClarifaiModelID,
		ModelVersion: cfg.ClarifaiModelVersion,
		Timeout:      cfg.ClarifaiTimeout,
	})
	if err != nil {
		l.Fatalf("Failed to configure face detection: %v", err)
	}

	userRepo := repository.NewUserRepository(db)

	authService := services.NewAuthService(userRepo, cache, cfg, l)
	userService := services.NewUserService(userRepo, cache, cfg, l)
	imageService := services.NewImageService(userRepo, detector, cache, cfg, l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:  handler.NewAuthHandler(authService, cfg.IsDevelopment()),
		User:  handler.NewUserHandler(userService),
		Image: handler.NewImageHandler(imageService),
	}, server.Dependencies{
		DB:          db,
		Redis:       redisClient,
		RateLimiter: limiter,
	})

	l.Logger.Info("facebrain api configured",
		zap.String("env", cfg.AppEnv),
		zap.Bool("redis", cfg.RedisEnabled),
		zap.String("model", cfg.ClarifaiModelID),
	)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}
