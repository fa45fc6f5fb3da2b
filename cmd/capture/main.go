package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/satriahrh/cat-translator/adapters"
	"github.com/satriahrh/cat-translator/adapters/mongo"
	"github.com/satriahrh/cat-translator/adapters/translator"
	"github.com/satriahrh/cat-translator/adapters/wavfile"
	"github.com/satriahrh/cat-translator/domain/entities"
	"github.com/satriahrh/cat-translator/domain/repositories"
	"github.com/satriahrh/cat-translator/internal/api"
	"github.com/satriahrh/cat-translator/internal/config"
	"github.com/satriahrh/cat-translator/internal/logging"
	"github.com/satriahrh/cat-translator/internal/websocket"
	"github.com/satriahrh/cat-translator/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize adapters
	writer, err := wavfile.NewWriter(cfg.Relay.TempDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize WAV writer", zap.Error(err))
	}

	httpTranslator, err := translator.NewHTTPTranslator(translator.HTTPConfig{
		URL:       cfg.Relay.TranslatorURL,
		Timeout:   cfg.Relay.RequestTimeout.Duration,
		JWTSecret: cfg.Auth.JWTSecret,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize translator client", zap.Error(err))
	}

	var recordings repositories.RecordingRepository
	if cfg.Mongo.URI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		client, err := mongo.NewClient(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
		if err != nil {
			cancel()
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer client.Close(context.Background())

		repo := mongo.NewRecordingRepository(client.Database, logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warn("Failed to create recording indexes", zap.Error(err))
		}
		cancel()
		recordings = repo
	} else {
		recordings = adapters.NewMemoryRecordingRepository(0)
	}

	// Initialize usecase services
	relay := usecase.NewRelayService(writer, httpTranslator, recordings, logger)

	// Initialize WebSocket hub
	hub := websocket.NewHub(relay, entities.SessionConfig{
		DefaultSampleRate: cfg.Relay.SampleRate,
		MaxRecording:      cfg.Relay.MaxRecording.Duration,
		LogHistory:        cfg.Relay.LogHistory,
	}, cfg.Relay.RequestTimeout.Duration, logger)
	go hub.Run()

	var cleanup *websocket.ArtifactCleanupService
	if cfg.Relay.ArtifactRetention.Duration > 0 {
		cleanup = websocket.NewArtifactCleanupService(writer, cfg.Relay.ArtifactRetention.Duration, logger)
		cleanup.Start()
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitCaptureRoutes(e, hub, relay, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(cfg.Relay.ListenAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Capture relay started",
		zap.String("addr", cfg.Relay.ListenAddr),
		zap.String("translatorURL", cfg.Relay.TranslatorURL),
		zap.String("artifactDir", writer.Dir()),
		zap.Bool("mongoHistory", cfg.Mongo.URI != ""))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	hub.Stop()
	if cleanup != nil {
		cleanup.Stop()
	}

	logger.Info("Server exited")
}
