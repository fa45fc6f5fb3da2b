package repositories

import (
	"context"
	"time"

	"github.com/satriahrh/cat-translator/domain/entities"
)

// ArtifactWriter materializes recordings as audio files
type ArtifactWriter interface {
	// Write encodes mono samples at the given rate into a new artifact
	Write(samples []int16, sampleRate int) (entities.Artifact, error)
	// Sweep removes artifacts older than the given age and returns how many were removed
	Sweep(olderThan time.Duration) (int, error)
}

// RecordingRepository defines data access methods for recording history
type RecordingRepository interface {
	Create(ctx context.Context, record *entities.RecordingRecord) error
	ListRecent(ctx context.Context, limit int) ([]*entities.RecordingRecord, error)
	ListBySession(ctx context.Context, sessionID string) ([]*entities.RecordingRecord, error)
}
