package wavfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/satriahrh/cat-translator/domain/entities"
	"github.com/satriahrh/cat-translator/domain/repositories"
)

const (
	bitDepth      = 16
	numChannels   = 1
	pcmFormat     = 1
	filePrefix    = "cat-translator-"
	fileExtension = ".wav"
)

// Writer writes mono 16-bit PCM WAV artifacts into a temp directory
type Writer struct {
	dir    string
	logger *zap.Logger
}

// Ensure Writer implements the ArtifactWriter interface
var _ repositories.ArtifactWriter = (*Writer)(nil)

// NewWriter creates a writer for dir. An empty dir means the OS temp directory.
func NewWriter(dir string, logger *zap.Logger) (*Writer, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	return &Writer{
		dir:    dir,
		logger: logger,
	}, nil
}

// Dir returns the directory artifacts are written to
func (w *Writer) Dir() string {
	return w.dir
}

// Write implements repositories.ArtifactWriter
func (w *Writer) Write(samples []int16, sampleRate int) (entities.Artifact, error) {
	if len(samples) == 0 {
		return entities.Artifact{}, entities.ErrNoAudio
	}
	if sampleRate <= 0 {
		return entities.Artifact{}, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	f, err := os.CreateTemp(w.dir, filePrefix+"*"+fileExtension)
	if err != nil {
		return entities.Artifact{}, fmt.Errorf("failed to create artifact file: %w", err)
	}
	path := f.Name()

	if err := Encode(f, samples, sampleRate); err != nil {
		f.Close()
		os.Remove(path)
		return entities.Artifact{}, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return entities.Artifact{}, fmt.Errorf("failed to stat artifact file: %w", err)
	}
	if err := f.Close(); err != nil {
		return entities.Artifact{}, fmt.Errorf("failed to close artifact file: %w", err)
	}

	artifact := entities.Artifact{
		Path:        path,
		SampleCount: len(samples),
		SampleRate:  sampleRate,
		SizeBytes:   info.Size(),
	}

	w.logger.Debug("WAV artifact written",
		zap.String("path", path),
		zap.Int("samples", artifact.SampleCount),
		zap.Int("sampleRate", sampleRate),
		zap.Int64("bytes", artifact.SizeBytes))

	return artifact, nil
}

// Encode writes samples as a mono 16-bit WAV stream to f
func Encode(f *os.File, samples []int16, sampleRate int) error {
	enc := wav.NewEncoder(f, sampleRate, bitDepth, numChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV header: %w", err)
	}
	return nil
}

// Sweep implements repositories.ArtifactWriter. Only files created by this
// writer are considered.
func (w *Writer) Sweep(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list artifact directory: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	var errs []error
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExtension) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(w.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}
