package adapters

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/satriahrh/cat-translator/domain/entities"
	"github.com/satriahrh/cat-translator/domain/repositories"
)

// MemoryRecordingRepository keeps recording history in process memory.
// It retains at most maxRecords entries, dropping the oldest.
type MemoryRecordingRepository struct {
	mu         sync.RWMutex
	records    []*entities.RecordingRecord
	maxRecords int
}

var _ repositories.RecordingRepository = (*MemoryRecordingRepository)(nil)

// NewMemoryRecordingRepository creates a new in-memory recording repository
func NewMemoryRecordingRepository(maxRecords int) *MemoryRecordingRepository {
	if maxRecords <= 0 {
		maxRecords = 1000
	}
	return &MemoryRecordingRepository{
		records:    make([]*entities.RecordingRecord, 0),
		maxRecords: maxRecords,
	}
}

// Create implements repositories.RecordingRepository
func (m *MemoryRecordingRepository) Create(ctx context.Context, record *entities.RecordingRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	stored := *record
	m.records = append(m.records, &stored)
	if len(m.records) > m.maxRecords {
		m.records = m.records[len(m.records)-m.maxRecords:]
	}
	return nil
}

// ListRecent implements repositories.RecordingRepository, newest first
func (m *MemoryRecordingRepository) ListRecent(ctx context.Context, limit int) ([]*entities.RecordingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*entities.RecordingRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		record := *m.records[i]
		out = append(out, &record)
	}
	return out, nil
}

// ListBySession implements repositories.RecordingRepository, oldest first
func (m *MemoryRecordingRepository) ListBySession(ctx context.Context, sessionID string) ([]*entities.RecordingRecord, error) {
	if sessionID == "" {
		return nil, errors.New("session ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*entities.RecordingRecord
	for _, r := range m.records {
		if r.SessionID == sessionID {
			record := *r
			out = append(out, &record)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
