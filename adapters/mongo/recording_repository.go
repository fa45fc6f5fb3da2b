package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/satriahrh/cat-translator/domain/entities"
	"github.com/satriahrh/cat-translator/domain/repositories"
)

const recordingsCollection = "recordings"

// RecordingRepository implements repositories.RecordingRepository using MongoDB
type RecordingRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

var _ repositories.RecordingRepository = (*RecordingRepository)(nil)

// NewRecordingRepository creates a new MongoDB recording repository
func NewRecordingRepository(db *mongo.Database, logger *zap.Logger) *RecordingRepository {
	return &RecordingRepository{
		collection: db.Collection(recordingsCollection),
		logger:     logger,
	}
}

// EnsureIndexes creates the indexes used by the list queries
func (r *RecordingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create recording indexes: %w", err)
	}
	return nil
}

// Create implements repositories.RecordingRepository
func (r *RecordingRepository) Create(ctx context.Context, record *entities.RecordingRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}

	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}

	r.logger.Debug("Recording stored",
		zap.String("recordingID", record.ID.Hex()),
		zap.String("sessionID", record.SessionID))
	return nil
}

// ListRecent implements repositories.RecordingRepository
func (r *RecordingRepository) ListRecent(ctx context.Context, limit int) ([]*entities.RecordingRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	return r.find(ctx, bson.M{}, opts)
}

// ListBySession implements repositories.RecordingRepository
func (r *RecordingRepository) ListBySession(ctx context.Context, sessionID string) ([]*entities.RecordingRecord, error) {
	if sessionID == "" {
		return nil, errors.New("session ID cannot be empty")
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, bson.M{"session_id": sessionID}, opts)
}

func (r *RecordingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entities.RecordingRecord, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*entities.RecordingRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode recordings: %w", err)
	}
	return records, nil
}
