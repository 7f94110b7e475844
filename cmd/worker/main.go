// Package main runs the background archive sync worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/campusbridge/connect/config"
	"github.com/campusbridge/connect/internal/conferences"
	"github.com/campusbridge/connect/internal/connect"
	"github.com/campusbridge/connect/internal/users"
	"github.com/campusbridge/connect/internal/worker"
	"github.com/campusbridge/connect/pkg/database"
	"github.com/campusbridge/connect/pkg/queue"
	"github.com/campusbridge/connect/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	clients := connect.NewCache(logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	conferenceRepo := conferences.NewRepository(pool)
	controller := conferences.NewController(clients, cfg.Connect.Settings, conferenceRepo, users.NewRolePermissions(), logger)
	processor := worker.NewArchiveSyncProcessor(conferenceRepo, controller, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
