package repositories

import (
	"context"
	"errors"
	"io"

	"github.com/satriahrh/cat-translator/domain/entities"
)

// ErrBackendStatus is returned when a translation backend answers with a non-200 status
var ErrBackendStatus = errors.New("unexpected backend status")

// Translator turns a recorded cat sound into a human sentence
type Translator interface {
	// Translate reads the audio payload and returns the translation
	Translate(ctx context.Context, audio io.Reader) (string, error)
}

// ArtifactTranslator uploads a WAV artifact to a translation backend
type ArtifactTranslator interface {
	TranslateArtifact(ctx context.Context, artifact entities.Artifact) (string, error)
}
