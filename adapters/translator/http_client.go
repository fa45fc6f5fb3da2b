package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/cat-translator/domain/entities"
	"github.com/satriahrh/cat-translator/domain/repositories"
	"github.com/satriahrh/cat-translator/internal/auth"
)

const (
	defaultTimeout     = 30 * time.Second
	formFieldName      = "file"
	noTranslationFound = "No translation found."
	maxErrorBodyBytes  = 4096
)

// ErrBackendStatus is returned when the backend answers with a non-200 status
var ErrBackendStatus = repositories.ErrBackendStatus

// StatusError carries the status and body of a failed backend response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrBackendStatus.Error(), e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrBackendStatus
func (e *StatusError) Unwrap() error {
	return ErrBackendStatus
}

// HTTPConfig holds configuration for HTTPTranslator
type HTTPConfig struct {
	URL       string
	Timeout   time.Duration
	JWTSecret string
	Client    *http.Client
}

// HTTPTranslator uploads WAV artifacts to the translation endpoint
type HTTPTranslator struct {
	url    string
	secret []byte
	client *http.Client
	logger *zap.Logger
}

var (
	_ repositories.Translator         = (*HTTPTranslator)(nil)
	_ repositories.ArtifactTranslator = (*HTTPTranslator)(nil)
)

// NewHTTPTranslator creates a client for the translation endpoint
func NewHTTPTranslator(config HTTPConfig, logger *zap.Logger) (*HTTPTranslator, error) {
	if config.URL == "" {
		return nil, errors.New("translator URL is required")
	}

	client := config.Client
	if client == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTPTranslator{
		url:    config.URL,
		secret: []byte(config.JWTSecret),
		client: client,
		logger: logger,
	}, nil
}

// TranslateArtifact implements repositories.ArtifactTranslator
func (t *HTTPTranslator) TranslateArtifact(ctx context.Context, artifact entities.Artifact) (string, error) {
	f, err := os.Open(artifact.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	return t.upload(ctx, filepath.Base(artifact.Path), f)
}

// Translate implements repositories.Translator
func (t *HTTPTranslator) Translate(ctx context.Context, audio io.Reader) (string, error) {
	return t.upload(ctx, "audio.wav", audio)
}

func (t *HTTPTranslator) upload(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile(formFieldName, filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	if len(t.secret) > 0 {
		token, err := auth.GenerateServiceToken(t.secret, "capture-relay", auth.RoleRelay, auth.DefaultTokenTTL)
		if err != nil {
			return "", fmt.Errorf("failed to sign service token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	t.logger.Info("Sending audio to translator",
		zap.String("url", t.url),
		zap.String("filename", filename),
		zap.Int("bytes", body.Len()))

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	translation, ok := result["translation"].(string)
	if !ok {
		return noTranslationFound, nil
	}
	return translation, nil
}
