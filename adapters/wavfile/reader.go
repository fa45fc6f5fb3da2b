package wavfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// ErrUnsupportedFormat is returned for WAV files that are not 16-bit PCM
var ErrUnsupportedFormat = errors.New("unsupported WAV format")

// Recording is the decoded content of a WAV file. Samples are interleaved.
type Recording struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Read decodes a 16-bit PCM WAV file
func Read(path string) (Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return Recording{}, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Recording{}, fmt.Errorf("%w: %s is not a valid WAV file", ErrUnsupportedFormat, path)
	}
	if dec.BitDepth != bitDepth || dec.WavAudioFormat != pcmFormat {
		return Recording{}, fmt.Errorf("%w: format %d with %d bits, want 16-bit PCM",
			ErrUnsupportedFormat, dec.WavAudioFormat, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Recording{}, fmt.Errorf("failed to decode WAV data: %w", err)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}

	return Recording{
		Samples:    samples,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
	}, nil
}
