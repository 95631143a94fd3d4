package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/gin-gonic/gin"

	"github.com/platewise/backend/config"
	"github.com/platewise/backend/internal/catalog"
	"github.com/platewise/backend/internal/database"
	"github.com/platewise/backend/internal/detection"
	"github.com/platewise/backend/internal/identity"
	"github.com/platewise/backend/internal/llm"
	"github.com/platewise/backend/internal/logging"
	"github.com/platewise/backend/internal/server"
	"github.com/platewise/backend/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)
	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	cat, err := catalog.Load(cfg.DatasetPath, logger)
	if err != nil {
		return err
	}

	detector, err := newDetector(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	redisClient, err := database.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("failed to connect to redis", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	srv := server.NewServer(server.Options{
		Config:    cfg,
		DB:        db,
		Catalog:   cat,
		Detector:  detector,
		Store:     store,
		Verifier:  identity.NewGoogleVerifier(cfg.GoogleClientID),
		Generator: llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiAPIURL, cfg.GeminiModel),
		Redis:     redisClient,
		Logger:    logger,
	})
	return srv.Start(ctx)
}

func newDetector(ctx context.Context, cfg *config.Config) (detection.Detector, error) {
	switch cfg.DetectorBackend {
	case "http", "":
		return detection.NewHTTPDetector(cfg.DetectorURL, cfg.DetectorTimeout), nil
	case "rekognition":
		awsCfg, err := config.NewAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return detection.NewRekognitionDetector(rekognition.NewFromConfig(awsCfg)), nil
	case "static":
		return detection.NewStaticDetector(), nil
	default:
		return nil, fmt.Errorf("unknown detector backend %q", cfg.DetectorBackend)
	}
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	switch cfg.StorageBackend {
	case "local", "":
		return storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure S3: %w", err)
		}
		return storage.NewS3Store(s3cfg), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
