package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/router"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/storage"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/config"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/firebase"
	"github.com/Anthony-Yangg/reel-royale2-sub001/pkg/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	if err := db.EnsureIndexes(ctx, cfg.MongoDatabase); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	deps := router.Dependencies{
		Postgres:  db.Postgres,
		Mongo:     db.Mongo.Database(cfg.MongoDatabase),
		JWTSecret: cfg.JWTSecret,
		Logger:    logger,
	}

	// Firebase login is optional
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase", zap.Error(err))
		}
		deps.Verifier = firebaseApp
	} else {
		logger.Warn("FIREBASE_CREDENTIALS_PATH not set, Firebase login disabled")
	}

	// Media uploads need a bucket
	if cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			logger.Fatal("Failed to initialize S3", zap.Error(err))
		}
		deps.Media = store
	} else {
		logger.Warn("AWS_BUCKET_NAME not set, media uploads disabled")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, logger)
	if err := router.SetupRoutes(e, deps); err != nil {
		logger.Fatal("Failed to set up routes", zap.Error(err))
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
