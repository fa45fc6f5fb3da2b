package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/cat-translator/domain/entities"
	"github.com/satriahrh/cat-translator/domain/repositories"
)

// User-visible messages shown by the capture UI
const (
	MessageNoAudio        = "No audio captured."
	MessageBackendFailure = "Failed to get translation from backend."
	MessageRequestFailed  = "Request failed"
)

// RelayResult is the outcome of relaying one recording
type RelayResult struct {
	Translation string
	Artifact    entities.Artifact
	Record      *entities.RecordingRecord
}

// RelayService encodes a finished recording and forwards it to the translator
type RelayService struct {
	writer     repositories.ArtifactWriter
	translator repositories.ArtifactTranslator
	recordings repositories.RecordingRepository
	logger     *zap.Logger
}

// NewRelayService creates a new relay service
func NewRelayService(
	writer repositories.ArtifactWriter,
	translator repositories.ArtifactTranslator,
	recordings repositories.RecordingRepository,
	logger *zap.Logger,
) *RelayService {
	return &RelayService{
		writer:     writer,
		translator: translator,
		recordings: recordings,
		logger:     logger,
	}
}

// Relay writes the samples as a WAV artifact and uploads it. An empty
// recording returns entities.ErrNoAudio without touching the translator.
// Every attempt that produced an artifact is stored in the recording history.
func (s *RelayService) Relay(ctx context.Context, sessionID string, samples []int16, sampleRate int, dropped int64) (*RelayResult, error) {
	if len(samples) == 0 {
		return nil, entities.ErrNoAudio
	}

	artifact, err := s.writer.Write(samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to write WAV artifact: %w", err)
	}

	s.logger.Info("Processing recording",
		zap.String("sessionID", sessionID),
		zap.String("artifact", artifact.Path),
		zap.Int("samples", artifact.SampleCount),
		zap.Int64("droppedSamples", dropped),
		zap.Duration("duration", artifact.Duration()))

	record := entities.NewRecordingRecord(sessionID, artifact, dropped)
	result := &RelayResult{Artifact: artifact, Record: record}

	translation, err := s.translator.TranslateArtifact(ctx, artifact)
	if err != nil {
		record.Error = err.Error()
		s.logger.Error("Translation request failed",
			zap.String("sessionID", sessionID),
			zap.Error(err))
	} else {
		record.Translation = translation
		result.Translation = translation
		s.logger.Info("Translation received",
			zap.String("sessionID", sessionID),
			zap.String("translation", translation))
	}

	s.store(sessionID, record)

	if err != nil {
		return result, fmt.Errorf("failed to translate recording: %w", err)
	}
	return result, nil
}

// store persists the record on its own context so a cancelled request still
// leaves a history entry
func (s *RelayService) store(sessionID string, record *entities.RecordingRecord) {
	if s.recordings == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.recordings.Create(ctx, record); err != nil {
		s.logger.Error("Failed to store recording",
			zap.String("sessionID", sessionID),
			zap.Error(err))
	}
}

// History returns the most recent recordings
func (s *RelayService) History(ctx context.Context, limit int) ([]*entities.RecordingRecord, error) {
	if s.recordings == nil {
		return []*entities.RecordingRecord{}, nil
	}
	return s.recordings.ListRecent(ctx, limit)
}

// SessionHistory returns the recordings of one capture session
func (s *RelayService) SessionHistory(ctx context.Context, sessionID string) ([]*entities.RecordingRecord, error) {
	if s.recordings == nil {
		return []*entities.RecordingRecord{}, nil
	}
	return s.recordings.ListBySession(ctx, sessionID)
}

// UserMessage maps a relay error to the text shown in the capture UI
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, entities.ErrNoAudio):
		return MessageNoAudio
	case errors.Is(err, repositories.ErrBackendStatus):
		return MessageBackendFailure
	default:
		return fmt.Sprintf("%s: %v", MessageRequestFailed, err)
	}
}
