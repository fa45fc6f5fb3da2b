package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/cat-translator/adapters"
	"github.com/satriahrh/cat-translator/domain/entities"
	"github.com/satriahrh/cat-translator/domain/repositories"
)

type fakeWriter struct {
	written [][]int16
	err     error
}

func (w *fakeWriter) Write(samples []int16, sampleRate int) (entities.Artifact, error) {
	if w.err != nil {
		return entities.Artifact{}, w.err
	}
	w.written = append(w.written, samples)
	return entities.Artifact{
		Path:        fmt.Sprintf("/tmp/fake-%d.wav", len(w.written)),
		SampleCount: len(samples),
		SampleRate:  sampleRate,
	}, nil
}

func (w *fakeWriter) Sweep(olderThan time.Duration) (int, error) {
	return 0, nil
}

type fakeTranslator struct {
	calls       int
	translation string
	err         error
}

func (t *fakeTranslator) TranslateArtifact(ctx context.Context, artifact entities.Artifact) (string, error) {
	t.calls++
	return t.translation, t.err
}

func newTestRelay(writer *fakeWriter, translator *fakeTranslator) (*RelayService, *adapters.MemoryRecordingRepository) {
	repo := adapters.NewMemoryRecordingRepository(10)
	return NewRelayService(writer, translator, repo, zap.NewNop()), repo
}

func TestRelayService_Success(t *testing.T) {
	writer := &fakeWriter{}
	translator := &fakeTranslator{translation: "Your cat says: 'hi'"}
	relay, repo := newTestRelay(writer, translator)

	result, err := relay.Relay(context.Background(), "session-1", make([]int16, 4800), 48000, 0)
	if err != nil {
		t.Fatalf("Relay failed: %v", err)
	}

	if result.Translation != "Your cat says: 'hi'" {
		t.Errorf("Unexpected translation %q", result.Translation)
	}
	if result.Artifact.SampleCount != 4800 {
		t.Errorf("Expected 4800 samples in artifact, got %d", result.Artifact.SampleCount)
	}
	if translator.calls != 1 {
		t.Errorf("Expected 1 translator call, got %d", translator.calls)
	}

	records, _ := repo.ListBySession(context.Background(), "session-1")
	if len(records) != 1 {
		t.Fatalf("Expected 1 stored record, got %d", len(records))
	}
	if records[0].Translation != result.Translation || records[0].DurationMs != 100 {
		t.Errorf("Unexpected stored record %+v", records[0])
	}
}

func TestRelayService_NoAudio(t *testing.T) {
	writer := &fakeWriter{}
	translator := &fakeTranslator{}
	relay, repo := newTestRelay(writer, translator)

	_, err := relay.Relay(context.Background(), "session-1", nil, 48000, 0)
	if !errors.Is(err, entities.ErrNoAudio) {
		t.Fatalf("Expected ErrNoAudio, got %v", err)
	}

	if translator.calls != 0 {
		t.Errorf("No request should be issued for an empty recording, got %d calls", translator.calls)
	}
	if len(writer.written) != 0 {
		t.Error("No artifact should be written for an empty recording")
	}
	if records, _ := repo.ListRecent(context.Background(), 0); len(records) != 0 {
		t.Errorf("Expected no stored records, got %d", len(records))
	}
	if UserMessage(err) != MessageNoAudio {
		t.Errorf("Unexpected user message %q", UserMessage(err))
	}
}

func TestRelayService_TranslatorFailure(t *testing.T) {
	writer := &fakeWriter{}
	translator := &fakeTranslator{err: errors.New("dial tcp 127.0.0.1:8506: connect: connection refused")}
	relay, repo := newTestRelay(writer, translator)

	result, err := relay.Relay(context.Background(), "session-2", []int16{1, 2, 3}, 16000, 0)
	if err == nil {
		t.Fatal("Expected error")
	}
	if result == nil || result.Artifact.Path == "" {
		t.Error("Expected artifact details even on failure")
	}

	msg := UserMessage(err)
	if !strings.HasPrefix(msg, MessageRequestFailed) || !strings.Contains(msg, "connection refused") {
		t.Errorf("Unexpected user message %q", msg)
	}

	records, _ := repo.ListBySession(context.Background(), "session-2")
	if len(records) != 1 || records[0].Succeeded() {
		t.Errorf("Expected one failed record, got %+v", records)
	}
}

func TestRelayService_BackendStatusMessage(t *testing.T) {
	translator := &fakeTranslator{err: fmt.Errorf("%w 500: boom", repositories.ErrBackendStatus)}
	relay, _ := newTestRelay(&fakeWriter{}, translator)

	_, err := relay.Relay(context.Background(), "s", []int16{1}, 16000, 0)
	if UserMessage(err) != MessageBackendFailure {
		t.Errorf("Expected backend failure message, got %q", UserMessage(err))
	}
}

func TestRelayService_WriterFailure(t *testing.T) {
	translator := &fakeTranslator{}
	relay, _ := newTestRelay(&fakeWriter{err: errors.New("disk full")}, translator)

	if _, err := relay.Relay(context.Background(), "s", []int16{1}, 16000, 0); err == nil {
		t.Fatal("Expected error")
	}
	if translator.calls != 0 {
		t.Error("Translator should not be called when the artifact cannot be written")
	}
}

func TestRelayService_HistoryWithoutRepository(t *testing.T) {
	relay := NewRelayService(&fakeWriter{}, &fakeTranslator{translation: "x"}, nil, zap.NewNop())

	if _, err := relay.Relay(context.Background(), "s", []int16{1}, 16000, 0); err != nil {
		t.Fatalf("Relay failed: %v", err)
	}

	records, err := relay.History(context.Background(), 10)
	if err != nil || len(records) != 0 {
		t.Errorf("Expected empty history, got %v, %v", records, err)
	}
}

func TestUserMessage_Nil(t *testing.T) {
	if UserMessage(nil) != "" {
		t.Error("Expected empty message for nil error")
	}
}
