// Package main runs the LMS conferencing bridge HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/campusbridge/connect/config"
	"github.com/campusbridge/connect/internal/auth"
	"github.com/campusbridge/connect/internal/conferences"
	"github.com/campusbridge/connect/internal/connect"
	"github.com/campusbridge/connect/internal/middleware"
	"github.com/campusbridge/connect/internal/users"
	"github.com/campusbridge/connect/internal/worker"
	"github.com/campusbridge/connect/pkg/database"
	"github.com/campusbridge/connect/pkg/queue"
	"github.com/campusbridge/connect/pkg/redis"
	"github.com/campusbridge/connect/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if !cfg.Connect.Enabled() {
		logger.Warn("Adobe Connect integration disabled, no settings configured")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	authHandler := auth.NewHandler(jwtService, cfg.JWT.APIKey, logger)

	clients := connect.NewCache(logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	userRepo := users.NewRepository(pool)
	userHandler := users.NewHandler(userRepo)

	conferenceRepo := conferences.NewRepository(pool)
	controller := conferences.NewController(clients, cfg.Connect.Settings, conferenceRepo, users.NewRolePermissions(), logger)
	conferenceHandler := conferences.NewHandler(conferenceRepo, userRepo, controller, jobQueue, logger)

	archiveProcessor := worker.NewArchiveSyncProcessor(conferenceRepo, controller, jobQueue, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/token", authHandler.Token)

	api := router.Group("/api/v1")
	api.Use(middleware.JWT(jwtService))
	{
		api.POST("/users", userHandler.Create)
		api.GET("/users", userHandler.List)
		api.GET("/users/:id", userHandler.GetByID)

		api.POST("/conferences", conferenceHandler.Create)
		api.GET("/conferences", conferenceHandler.List)
		api.GET("/conferences/:id", conferenceHandler.GetByID)
		api.POST("/conferences/:id/initiate", conferenceHandler.Initiate)
		api.GET("/conferences/:id/status", conferenceHandler.Status)
		api.GET("/conferences/:id/join-url", conferenceHandler.JoinURL)
		api.GET("/conferences/:id/admin-join-url", conferenceHandler.AdminJoinURL)
		api.GET("/conferences/:id/recordings", conferenceHandler.Recordings)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process archive sync worker. Run cmd/worker instead for a
	// dedicated process.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go archiveProcessor.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
