package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"taskmanager-api/configs"
	v1 "taskmanager-api/internal/api/v1"
	"taskmanager-api/internal/config"
	"taskmanager-api/internal/repository"
	"taskmanager-api/pkg/database"
	"taskmanager-api/pkg/logger"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return err
	}

	if err := logger.InitLoggers(cfg.LogDir); err != nil {
		return err
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application",
		zap.String("mode", cfg.Mode),
		zap.String("store", cfg.Driver),
		zap.String("env_file", cfg.EnvFile),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStart()

	var (
		users repository.UserRepository
		tasks repository.TaskRepository
		ping  func(ctx context.Context) error
	)
	switch cfg.Driver {
	case configs.DriverMongo:
		client, err := database.ConnectMongo(startCtx, cfg)
		if err != nil {
			logger.ErrorLogger.Error("Database connection error", zap.Error(err))
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.ErrorLogger.Error("Database disconnect error", zap.Error(err))
			}
		}()

		db := client.Database(cfg.MongoDB)
		if err := repository.EnsureIndexes(startCtx, db); err != nil {
			logger.ErrorLogger.Error("Index setup failed", zap.Error(err))
			return err
		}
		users = repository.NewMongoUserRepository(db)
		tasks = repository.NewMongoTaskRepository(db)
		ping = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
		logger.SystemLogger.Info("Database Connected")
	default:
		users = repository.NewMemoryUserRepository()
		tasks = repository.NewMemoryTaskRepository()
		logger.SystemLogger.Warn("Using in-memory store; data is lost on exit")
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = database.ConnectRedis(startCtx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		logger.SystemLogger.Info("Redis Connected", zap.String("addr", cfg.RedisAddr()))
	}

	deps := config.NewDependencies(cfg, users, tasks, ping, rdb)

	hubCtx, stopHub := context.WithCancel(context.Background())
	go deps.Hub.Run(hubCtx)
	defer func() {
		stopHub()
		<-deps.Hub.Done()
	}()

	app := v1.NewApp(deps)

	listenErr := make(chan error, 1)
	go func() {
		logger.SystemLogger.Info("Application ready", zap.String("addr", cfg.Addr()))
		listenErr <- app.Listen(cfg.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-listenErr:
		if err != nil {
			logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
		}
		return err
	case sig := <-quit:
		logger.SystemLogger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	// Open sockets would otherwise hold the shutdown until its timeout.
	stopHub()
	<-deps.Hub.Done()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.ErrorLogger.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
