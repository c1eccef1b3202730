package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facebrain/config"
	"facebrain/internal/handler"
	"facebrain/internal/middleware"
	"facebrain/internal/redis"
	"facebrain/internal/transport/httpdto"
	"facebrain/pkg/database"
	"facebrain/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth  *handler.AuthHandler
	User  *handler.UserHandler
	Image *handler.ImageHandler
}

// Dependencies are the process-wide handles used by health checks and middleware.
// DB, Redis and RateLimiter may be nil.
type Dependencies struct {
	DB          *sql.DB
	Redis       *goredis.Client
	RateLimiter *redis.RateLimiter
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) SetupRoutes(handlers *Handlers, deps Dependencies) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware(s.config.CORSAllowedOrigins))
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("route not found", httpdto.CodeNotFound).WithRequestID(middleware.RequestID(c)))
	})

	s.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"service": "facebrain", "status": "running"}))
	})

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()
		if deps.DB != nil {
			if err := database.HealthCheck(ctx, deps.DB, s.config.DBTimeout); err != nil {
				s.unhealthy(c, "database unavailable", err)
				return
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				s.unhealthy(c, "redis unavailable", err)
				return
			}
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	auth := s.engine.Group("/")
	signin := []gin.HandlerFunc{handlers.Auth.SignIn}
	if deps.RateLimiter != nil {
		auth.Use(middleware.AuthRateLimitMiddleware(deps.RateLimiter, s.logger))
		signin = append([]gin.HandlerFunc{middleware.ClearAuthLimitOnSuccess(deps.RateLimiter, s.logger)}, signin...)
	}
	{
		auth.POST("/signin", signin...)
		auth.POST("/register", handlers.Auth.Register)
	}

	s.engine.GET("/profile/:id", handlers.User.Profile)
	s.engine.PUT("/image", handlers.Image.Submit)
}

func (s *Server) unhealthy(c *gin.Context, msg string, err error) {
	if s.logger != nil {
		s.logger.WithContext(c.Request.Context()).Error("health check failed", zap.String("check", msg), zap.Error(err))
	}
	c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(msg, httpdto.CodeUnhealthy).WithRequestID(middleware.RequestID(c)))
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
