package entities

import (
	"errors"
	"testing"
	"time"
)

func newTestSession() *CaptureSession {
	return NewCaptureSession(SessionConfig{
		DefaultSampleRate: 16000,
		MaxRecording:      time.Second,
		LogHistory:        5,
	})
}

func monoFrame(n, sampleRate int) Frame {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(i)
	}
	return Frame{Samples: samples, SampleRate: sampleRate, Channels: 1}
}

func TestSessionCreation(t *testing.T) {
	session := newTestSession()

	if session.ID == "" {
		t.Error("Expected session ID to be set")
	}

	if session.State != SessionStateIdle {
		t.Errorf("Expected state %s, got %s", SessionStateIdle, session.State)
	}

	if session.SampleRate() != 16000 {
		t.Errorf("Expected default sample rate 16000, got %d", session.SampleRate())
	}

	if len(session.Log()) != 0 {
		t.Errorf("Expected empty log, got %d entries", len(session.Log()))
	}
}

func TestSessionRecordingCycle(t *testing.T) {
	session := newTestSession()

	if err := session.Start(16000); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if session.CurrentState() != SessionStateRecording {
		t.Errorf("Expected state %s, got %s", SessionStateRecording, session.CurrentState())
	}

	sizes := []int{160, 320, 480}
	total := 0
	for _, n := range sizes {
		if err := session.AddFrame(monoFrame(n, 16000)); err != nil {
			t.Fatalf("AddFrame failed: %v", err)
		}
		total += n
	}

	samples, dropped, err := session.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if len(samples) != total {
		t.Errorf("Expected %d samples, got %d", total, len(samples))
	}
	if dropped != 0 {
		t.Errorf("Expected no dropped samples, got %d", dropped)
	}
	if session.CurrentState() != SessionStateProcessing {
		t.Errorf("Expected state %s, got %s", SessionStateProcessing, session.CurrentState())
	}

	if err := session.Start(16000); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("Expected ErrSessionBusy while processing, got %v", err)
	}

	session.Finish("meow")
	if session.CurrentState() != SessionStateIdle {
		t.Errorf("Expected state %s, got %s", SessionStateIdle, session.CurrentState())
	}
	if session.LastTranslation() != "meow" {
		t.Errorf("Expected last translation 'meow', got '%s'", session.LastTranslation())
	}
}

func TestSessionStopWithoutAudio(t *testing.T) {
	session := newTestSession()

	if err := session.Start(0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	_, _, err := session.Stop()
	if !errors.Is(err, ErrNoAudio) {
		t.Errorf("Expected ErrNoAudio, got %v", err)
	}

	if session.CurrentState() != SessionStateIdle {
		t.Errorf("Expected state %s after empty stop, got %s", SessionStateIdle, session.CurrentState())
	}
}

func TestSessionRejectsFramesOutsideRecording(t *testing.T) {
	session := newTestSession()

	if err := session.AddFrame(monoFrame(10, 16000)); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Expected ErrNotRecording, got %v", err)
	}

	if _, _, err := session.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Expected ErrNotRecording on stop, got %v", err)
	}
}

func TestSessionRejectsSampleRateMismatch(t *testing.T) {
	session := newTestSession()
	if err := session.Start(16000); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	err := session.AddFrame(monoFrame(10, 48000))
	if !errors.Is(err, ErrFrameConversion) {
		t.Errorf("Expected ErrFrameConversion, got %v", err)
	}

	// The recording keeps going after a rejected frame
	if err := session.AddFrame(monoFrame(10, 16000)); err != nil {
		t.Errorf("Expected frame to be accepted after a rejected one, got %v", err)
	}
}

func TestSessionNewRecordingDiscardsPrevious(t *testing.T) {
	session := newTestSession()

	session.Start(16000)
	session.AddFrame(monoFrame(100, 16000))
	session.Stop()
	session.Finish("")

	session.Start(16000)
	session.AddFrame(monoFrame(7, 16000))
	samples, _, err := session.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if len(samples) != 7 {
		t.Errorf("Expected only the second recording's 7 samples, got %d", len(samples))
	}
}

func TestSessionLogIsBounded(t *testing.T) {
	session := newTestSession()

	for i := 0; i < 12; i++ {
		session.AddLog("entry")
	}
	session.AddLog("last")

	log := session.Log()
	if len(log) != 5 {
		t.Fatalf("Expected 5 log entries, got %d", len(log))
	}
	if log[4].Message != "last" {
		t.Errorf("Expected newest entry last, got '%s'", log[4].Message)
	}
}

func TestSessionValidation(t *testing.T) {
	session := newTestSession()
	if err := session.Validate(); err != nil {
		t.Errorf("Valid session should not have validation errors, got: %v", err)
	}

	session.ID = ""
	if err := session.Validate(); err == nil {
		t.Error("Session with empty ID should have validation error")
	}

	session.ID = "abc"
	session.State = SessionState("invalid")
	if err := session.Validate(); err == nil {
		t.Error("Session with invalid state should have validation error")
	}
}
