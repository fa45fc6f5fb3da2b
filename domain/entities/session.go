package entities

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionState represents where a capture session is in its start/stop cycle
type SessionState string

const (
	SessionStateIdle       SessionState = "idle"
	SessionStateRecording  SessionState = "recording"
	SessionStateProcessing SessionState = "processing"
)

var (
	// ErrNoAudio is returned when a recording is stopped before any frame arrived
	ErrNoAudio = errors.New("no audio captured")
	// ErrSessionBusy is returned when a recording is started while the previous one is processing
	ErrSessionBusy = errors.New("session is busy processing the previous recording")
	// ErrNotRecording is returned when frames or stop arrive outside of a recording
	ErrNotRecording = errors.New("session is not recording")
)

// LogEntry is one line of the session's debug log
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// SessionConfig holds the limits applied to a capture session
type SessionConfig struct {
	DefaultSampleRate int
	MaxRecording      time.Duration
	LogHistory        int
}

// CaptureSession is the per-connection context of the capture UI
type CaptureSession struct {
	ID        string       `json:"id"`
	State     SessionState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`

	sampleRate      int
	buffer          *RecordingBuffer
	frameCount      int
	startedAt       time.Time
	lastTranslation string
	log             []LogEntry
	config          SessionConfig

	mu sync.Mutex
}

// NewCaptureSession creates an idle session
func NewCaptureSession(config SessionConfig) *CaptureSession {
	if config.DefaultSampleRate <= 0 {
		config.DefaultSampleRate = 48000
	}
	if config.MaxRecording <= 0 {
		config.MaxRecording = 5 * time.Minute
	}
	if config.LogHistory <= 0 {
		config.LogHistory = 20
	}

	return &CaptureSession{
		ID:         uuid.New().String(),
		State:      SessionStateIdle,
		CreatedAt:  time.Now(),
		sampleRate: config.DefaultSampleRate,
		log:        make([]LogEntry, 0, config.LogHistory),
		config:     config,
	}
}

// Start begins a new recording, discarding whatever the previous one buffered
func (s *CaptureSession) Start(sampleRate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State == SessionStateProcessing {
		return ErrSessionBusy
	}
	if sampleRate <= 0 {
		sampleRate = s.config.DefaultSampleRate
	}

	capacity := int(s.config.MaxRecording.Seconds() * float64(sampleRate))
	if s.buffer == nil || s.sampleRate != sampleRate || s.buffer.Cap() != capacity {
		s.buffer = NewRecordingBuffer(capacity)
	} else {
		s.buffer.Reset()
	}

	s.sampleRate = sampleRate
	s.frameCount = 0
	s.startedAt = time.Now()
	s.State = SessionStateRecording
	s.appendLog(fmt.Sprintf("Recording started at %d Hz", sampleRate))
	return nil
}

// AddFrame appends a frame to the recording buffer. The frame must match the
// sample rate announced when the recording started.
func (s *CaptureSession) AddFrame(frame Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != SessionStateRecording {
		return ErrNotRecording
	}
	if frame.SampleRate != s.sampleRate {
		return fmt.Errorf("%w: frame sample rate %d does not match recording sample rate %d",
			ErrFrameConversion, frame.SampleRate, s.sampleRate)
	}

	mono := frame.Mono()
	s.buffer.Append(mono.Samples)
	s.frameCount++
	s.appendLog(fmt.Sprintf("Audio received: samples=%d channels=%d", mono.SampleCount(), frame.Channels))
	return nil
}

// Stop ends the recording and hands the buffered samples to the caller. The
// session moves to processing until Finish is called. ErrNoAudio leaves the
// session idle.
func (s *CaptureSession) Stop() ([]int16, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != SessionStateRecording {
		return nil, 0, ErrNotRecording
	}

	if s.buffer.Len() == 0 {
		s.State = SessionStateIdle
		s.appendLog("No audio captured")
		return nil, 0, ErrNoAudio
	}

	s.State = SessionStateProcessing
	s.appendLog(fmt.Sprintf("Recording stopped after %d frames", s.frameCount))
	return s.buffer.Samples(), s.buffer.Dropped(), nil
}

// Finish returns the session to idle after processing, remembering the translation
func (s *CaptureSession) Finish(translation string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.State = SessionStateIdle
	if translation != "" {
		s.lastTranslation = translation
	}
}

// SampleRate returns the sample rate of the current or last recording
func (s *CaptureSession) SampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleRate
}

// FrameCount returns the number of frames accepted in the current recording
func (s *CaptureSession) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameCount
}

// CurrentState returns the session state
func (s *CaptureSession) CurrentState() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State
}

// LastTranslation returns the most recent translation received by this session
func (s *CaptureSession) LastTranslation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTranslation
}

// RecordingDuration returns how long the current recording has been running
func (s *CaptureSession) RecordingDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() {
		return 0
	}
	return time.Since(s.startedAt)
}

// AddLog appends a message to the debug log
func (s *CaptureSession) AddLog(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLog(message)
}

// Log returns a copy of the debug log, oldest first
func (s *CaptureSession) Log() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LogEntry, len(s.log))
	copy(out, s.log)
	return out
}

func (s *CaptureSession) appendLog(message string) {
	if len(s.log) >= s.config.LogHistory {
		copy(s.log, s.log[1:])
		s.log = s.log[:len(s.log)-1]
	}
	s.log = append(s.log, LogEntry{
		Timestamp: time.Now(),
		Message:   message,
	})
}

// Validate validates the session data
func (s *CaptureSession) Validate() error {
	if s.ID == "" {
		return errors.New("session id is required")
	}

	if s.State != SessionStateIdle && s.State != SessionStateRecording && s.State != SessionStateProcessing {
		return errors.New("invalid session state")
	}

	return nil
}
