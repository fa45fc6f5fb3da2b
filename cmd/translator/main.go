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

	"github.com/satriahrh/cat-translator/adapters/translator"
	"github.com/satriahrh/cat-translator/internal/api"
	"github.com/satriahrh/cat-translator/internal/config"
	"github.com/satriahrh/cat-translator/internal/logging"
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

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	fixed := translator.NewFixedTranslator(cfg.Translator.Translation, logger)
	api.InitTranslatorRoutes(e, fixed, cfg.Auth.JWTSecret, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(cfg.Translator.ListenAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Translation endpoint started",
		zap.String("addr", cfg.Translator.ListenAddr),
		zap.Bool("authEnabled", cfg.Auth.JWTSecret != ""))

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

	logger.Info("Server exited")
}
