package websocket

import (
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/cat-translator/domain/repositories"
)

const minCleanupInterval = time.Minute

// ArtifactCleanupService removes WAV artifacts older than the retention period
type ArtifactCleanupService struct {
	writer    repositories.ArtifactWriter
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewArtifactCleanupService creates a new artifact cleanup service. The sweep
// runs every retention/2, but never more often than once a minute.
func NewArtifactCleanupService(writer repositories.ArtifactWriter, retention time.Duration, logger *zap.Logger) *ArtifactCleanupService {
	interval := retention / 2
	if interval < minCleanupInterval {
		interval = minCleanupInterval
	}
	return &ArtifactCleanupService{
		writer:    writer,
		retention: retention,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start begins the background cleanup process
func (s *ArtifactCleanupService) Start() {
	go s.cleanupLoop()
	s.logger.Info("Artifact cleanup service started",
		zap.Duration("retention", s.retention),
		zap.Duration("interval", s.interval))
}

// Stop gracefully stops the cleanup service
func (s *ArtifactCleanupService) Stop() {
	close(s.stopChan)
	<-s.doneChan
	s.logger.Info("Artifact cleanup service stopped")
}

func (s *ArtifactCleanupService) cleanupLoop() {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce sweeps expired artifacts and returns how many were removed
func (s *ArtifactCleanupService) RunOnce() int {
	removed, err := s.writer.Sweep(s.retention)
	if err != nil {
		s.logger.Error("Failed to sweep artifacts", zap.Int("removed", removed), zap.Error(err))
		return removed
	}

	if removed > 0 {
		s.logger.Info("Artifact cleanup completed", zap.Int("removed", removed))
	}
	return removed
}
