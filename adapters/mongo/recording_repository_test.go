package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/cat-translator/domain/entities"
)

// TestRecordingRepository_Integration requires a running MongoDB instance
// (skipped if MONGODB_URI is not set)
func TestRecordingRepository_Integration(t *testing.T) {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		t.Skip("Skipping MongoDB integration test - MONGODB_URI not set")
	}

	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	client, err := NewClient(ctx, mongoURI, "cat_translator_test", logger)
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Close(ctx)
	defer client.Database.Drop(ctx)

	repo := NewRecordingRepository(client.Database, logger)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	t.Run("CreateAndListRecent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			record := entities.NewRecordingRecord("session-a", entities.Artifact{
				Path:        "/tmp/a.wav",
				SampleCount: 48000 * (i + 1),
				SampleRate:  48000,
			}, 0)
			record.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
			if err := repo.Create(ctx, record); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		recent, err := repo.ListRecent(ctx, 2)
		if err != nil {
			t.Fatalf("ListRecent failed: %v", err)
		}
		if len(recent) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(recent))
		}
		if recent[0].SampleCount != 48000*3 {
			t.Errorf("Expected newest record first, got %d samples", recent[0].SampleCount)
		}
	})

	t.Run("ListBySession", func(t *testing.T) {
		record := entities.NewRecordingRecord("session-b", entities.Artifact{SampleRate: 16000}, 0)
		record.Error = "request failed"
		if err := repo.Create(ctx, record); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		records, err := repo.ListBySession(ctx, "session-b")
		if err != nil {
			t.Fatalf("ListBySession failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("Expected 1 record, got %d", len(records))
		}
		if records[0].Succeeded() {
			t.Error("Record with error should not be successful")
		}
	})
}

func TestNewClient_RequiresURI(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "", zaptest.NewLogger(t)); err == nil {
		t.Error("Expected error for empty URI")
	}
}
