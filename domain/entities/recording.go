package entities

import (
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordingBuffer is a bounded ring of mono samples for one start/stop cycle.
// Once full, the oldest samples are overwritten and counted as dropped.
type RecordingBuffer struct {
	mu      sync.Mutex
	samples []int16
	start   int
	size    int
	dropped int64
}

// NewRecordingBuffer creates a buffer holding at most capacity samples
func NewRecordingBuffer(capacity int) *RecordingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &RecordingBuffer{
		samples: make([]int16, capacity),
	}
}

// Append adds samples to the end of the buffer
func (b *RecordingBuffer) Append(samples []int16) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.samples)
	if len(samples) >= capacity {
		// Only the tail fits; everything currently buffered is lost too.
		b.dropped += int64(b.size + len(samples) - capacity)
		copy(b.samples, samples[len(samples)-capacity:])
		b.start = 0
		b.size = capacity
		return
	}

	for _, s := range samples {
		if b.size < capacity {
			b.samples[(b.start+b.size)%capacity] = s
			b.size++
			continue
		}
		b.samples[b.start] = s
		b.start = (b.start + 1) % capacity
		b.dropped++
	}
}

// Samples returns a copy of the buffered samples in arrival order
func (b *RecordingBuffer) Samples() []int16 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]int16, b.size)
	capacity := len(b.samples)
	n := copy(out, b.samples[b.start:min(b.start+b.size, capacity)])
	if n < b.size {
		copy(out[n:], b.samples[:b.size-n])
	}
	return out
}

// Len returns the number of buffered samples
func (b *RecordingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Cap returns the maximum number of samples the buffer can hold
func (b *RecordingBuffer) Cap() int {
	return len(b.samples)
}

// Dropped returns how many samples were overwritten since the last Reset
func (b *RecordingBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Reset discards all buffered samples
func (b *RecordingBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start = 0
	b.size = 0
	b.dropped = 0
}

// Artifact is a WAV file materialized from a recording
type Artifact struct {
	Path        string `json:"path"`
	SampleCount int    `json:"sample_count"`
	SampleRate  int    `json:"sample_rate"`
	SizeBytes   int64  `json:"size_bytes"`
}

// Duration returns the playback length of the artifact
func (a Artifact) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(a.SampleCount) * time.Second / time.Duration(a.SampleRate)
}

// RecordingRecord is the history entry stored for every processed recording
type RecordingRecord struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SessionID    string             `json:"session_id" bson:"session_id"`
	SampleRate   int                `json:"sample_rate" bson:"sample_rate"`
	SampleCount  int                `json:"sample_count" bson:"sample_count"`
	DroppedCount int64              `json:"dropped_count" bson:"dropped_count"`
	DurationMs   int64              `json:"duration_ms" bson:"duration_ms"`
	ArtifactPath string             `json:"artifact_path" bson:"artifact_path"`
	Translation  string             `json:"translation,omitempty" bson:"translation,omitempty"`
	Error        string             `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// NewRecordingRecord builds a record for the given session and artifact
func NewRecordingRecord(sessionID string, artifact Artifact, dropped int64) *RecordingRecord {
	return &RecordingRecord{
		ID:           primitive.NewObjectID(),
		SessionID:    sessionID,
		SampleRate:   artifact.SampleRate,
		SampleCount:  artifact.SampleCount,
		DroppedCount: dropped,
		DurationMs:   artifact.Duration().Milliseconds(),
		ArtifactPath: artifact.Path,
		CreatedAt:    time.Now(),
	}
}

// Succeeded reports whether the recording produced a translation
func (r *RecordingRecord) Succeeded() bool {
	return r.Error == ""
}
