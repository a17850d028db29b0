package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/xaenox/intro-matcher/internal/classifier"
	"github.com/xaenox/intro-matcher/internal/storage"
	"github.com/xaenox/intro-matcher/internal/worker"
	"github.com/xaenox/intro-matcher/pkg/config"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize classifier
	clf := classifier.NewLLMClassifier(
		cfg.Classifier.APIKey,
		cfg.Classifier.BaseURL,
		cfg.Classifier.Models,
		cfg.Classifier.MaxTokens,
		cfg.Classifier.AttemptTimeout,
		logger,
	)

	w := worker.New(store, clf, worker.Config{
		PollDelay:     cfg.Worker.PollDelay,
		ErrorDelay:    cfg.Worker.ErrorDelay,
		RecoveryDelay: cfg.Worker.RecoveryDelay,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Worker error", zap.Error(err))
	}
}
