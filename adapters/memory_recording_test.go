package adapters

import (
	"context"
	"fmt"
	"testing"

	"github.com/satriahrh/cat-translator/domain/entities"
)

func TestMemoryRecordingRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRecordingRepository(3)

	for i := 0; i < 5; i++ {
		record := entities.NewRecordingRecord(fmt.Sprintf("session-%d", i%2), entities.Artifact{
			Path:        fmt.Sprintf("/tmp/%d.wav", i),
			SampleCount: i,
			SampleRate:  48000,
		}, 0)
		if err := repo.Create(ctx, record); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	recent, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 retained records, got %d", len(recent))
	}
	if recent[0].SampleCount != 4 {
		t.Errorf("Expected newest record first, got sample count %d", recent[0].SampleCount)
	}

	limited, _ := repo.ListRecent(ctx, 1)
	if len(limited) != 1 {
		t.Errorf("Expected 1 record with limit, got %d", len(limited))
	}

	bySession, err := repo.ListBySession(ctx, "session-0")
	if err != nil {
		t.Fatalf("ListBySession failed: %v", err)
	}
	if len(bySession) != 2 {
		t.Errorf("Expected 2 records for session-0, got %d", len(bySession))
	}
}

func TestMemoryRecordingRepository_Validation(t *testing.T) {
	repo := NewMemoryRecordingRepository(0)

	if err := repo.Create(context.Background(), nil); err == nil {
		t.Error("Expected error for nil record")
	}

	if _, err := repo.ListBySession(context.Background(), ""); err == nil {
		t.Error("Expected error for empty session ID")
	}
}

func TestMemoryRecordingRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRecordingRepository(10)

	record := &entities.RecordingRecord{SessionID: "s", Translation: "meow"}
	repo.Create(ctx, record)
	record.Translation = "changed"

	recent, _ := repo.ListRecent(ctx, 1)
	if recent[0].Translation != "meow" {
		t.Errorf("Stored record should not alias the caller's value, got %q", recent[0].Translation)
	}
	if recent[0].ID.IsZero() {
		t.Error("Expected ID to be assigned on create")
	}
}
