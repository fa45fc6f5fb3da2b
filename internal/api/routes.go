package api

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/cat-translator/domain/entities"
	"github.com/satriahrh/cat-translator/domain/repositories"
	"github.com/satriahrh/cat-translator/internal/auth"
	"github.com/satriahrh/cat-translator/internal/ui"
	"github.com/satriahrh/cat-translator/internal/websocket"
	"github.com/satriahrh/cat-translator/usecase"
)

const (
	translatorService = "cat-translator"
	relayService      = "cat-translator-relay"
	defaultListLimit  = 20
	maxListLimit      = 200
)

// InitTranslatorRoutes registers the translation endpoint routes
func InitTranslatorRoutes(e *echo.Echo, translator repositories.Translator, jwtSecret string, logger *zap.Logger) {
	e.GET("/health", health(translatorService))

	e.POST("/translate", func(c echo.Context) error {
		return translate(c, translator, logger)
	}, auth.RequireRole([]byte(jwtSecret), auth.RoleRelay, logger))
}

// InitCaptureRoutes registers the capture UI, its WebSocket and the history API
func InitCaptureRoutes(e *echo.Echo, hub *websocket.Hub, relay *usecase.RelayService, logger *zap.Logger) {
	e.GET("/health", health(relayService))

	e.GET("/", ui.Index)
	e.GET("/static/*", ui.Static)

	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(hub, c, logger)
	})

	v1 := e.Group("/api/v1")
	v1.GET("/recordings", func(c echo.Context) error {
		return listRecordings(c, relay, logger)
	})
	v1.GET("/sessions/:id/recordings", func(c echo.Context) error {
		return listSessionRecordings(c, relay, logger)
	})
}

func health(service string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Service: service,
		})
	}
}

// translate accepts any payload, raw or multipart, and answers with the
// translator's sentence
func translate(c echo.Context, translator repositories.Translator, logger *zap.Logger) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		logger.Error("Failed to read translation request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to read request body",
		})
	}

	logger.Debug("Translation request received",
		zap.Int("bytes", len(body)),
		zap.String("contentType", c.Request().Header.Get(echo.HeaderContentType)))

	translation, err := translator.Translate(c.Request().Context(), bytes.NewReader(body))
	if err != nil {
		logger.Error("Translation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "translation_failed",
			Message: "Failed to translate audio",
		})
	}

	return c.JSON(http.StatusOK, TranslationResponse{
		Translation: translation,
	})
}

func listRecordings(c echo.Context, relay *usecase.RelayService, logger *zap.Logger) error {
	limit := defaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be a positive integer",
			})
		}
		limit = min(n, maxListLimit)
	}

	records, err := relay.History(c.Request().Context(), limit)
	if err != nil {
		logger.Error("Failed to list recordings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list recordings",
		})
	}

	return c.JSON(http.StatusOK, RecordingsResponse{Recordings: records})
}

func listSessionRecordings(c echo.Context, relay *usecase.RelayService, logger *zap.Logger) error {
	sessionID := c.Param("id")

	records, err := relay.SessionHistory(c.Request().Context(), sessionID)
	if err != nil {
		logger.Error("Failed to list session recordings",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list recordings",
		})
	}
	if records == nil {
		records = []*entities.RecordingRecord{}
	}

	return c.JSON(http.StatusOK, RecordingsResponse{Recordings: records})
}
