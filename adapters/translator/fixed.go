package translator

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/satriahrh/cat-translator/domain/repositories"
)

// DefaultTranslation is the sentence every cat sound currently translates to
const DefaultTranslation = "Your cat says: 'I am the boss of this house!'"

// FixedTranslator answers every payload with the same sentence
type FixedTranslator struct {
	translation string
	logger      *zap.Logger
}

var _ repositories.Translator = (*FixedTranslator)(nil)

// NewFixedTranslator creates a translator returning translation, or
// DefaultTranslation when it is empty
func NewFixedTranslator(translation string, logger *zap.Logger) *FixedTranslator {
	if translation == "" {
		translation = DefaultTranslation
	}
	return &FixedTranslator{
		translation: translation,
		logger:      logger,
	}
}

// Translate implements repositories.Translator. The payload is drained so its
// length can be logged; its content is not inspected.
func (t *FixedTranslator) Translate(ctx context.Context, audio io.Reader) (string, error) {
	n, err := io.Copy(io.Discard, audio)
	if err != nil {
		return "", fmt.Errorf("failed to read audio payload: %w", err)
	}

	t.logger.Info("Received audio data", zap.Int64("bytes", n))
	return t.translation, nil
}
