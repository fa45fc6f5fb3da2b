package entities

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrFrameConversion is returned when a raw payload cannot be turned into a Frame
var ErrFrameConversion = errors.New("frame conversion failed")

// Frame is one chunk of PCM audio delivered by the browser's media pipeline
type Frame struct {
	Samples    []int16 `json:"-"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
}

// NewFrameFromPCM decodes little-endian int16 interleaved samples
func NewFrameFromPCM(data []byte, sampleRate, channels int) (Frame, error) {
	if channels <= 0 {
		return Frame{}, fmt.Errorf("%w: invalid channel count %d", ErrFrameConversion, channels)
	}
	if sampleRate <= 0 {
		return Frame{}, fmt.Errorf("%w: invalid sample rate %d", ErrFrameConversion, sampleRate)
	}
	if len(data) == 0 {
		return Frame{}, fmt.Errorf("%w: empty payload", ErrFrameConversion)
	}
	if len(data)%(2*channels) != 0 {
		return Frame{}, fmt.Errorf("%w: payload of %d bytes is not a whole number of %d-channel int16 samples",
			ErrFrameConversion, len(data), channels)
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	return Frame{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   channels,
	}, nil
}

// SampleCount returns the number of samples per channel
func (f Frame) SampleCount() int {
	if f.Channels <= 0 {
		return 0
	}
	return len(f.Samples) / f.Channels
}

// Mono returns the frame downmixed to a single channel by averaging
func (f Frame) Mono() Frame {
	if f.Channels <= 1 {
		return f
	}

	out := make([]int16, f.SampleCount())
	for i := range out {
		var sum int
		for ch := 0; ch < f.Channels; ch++ {
			sum += int(f.Samples[i*f.Channels+ch])
		}
		out[i] = int16(sum / f.Channels)
	}

	return Frame{
		Samples:    out,
		SampleRate: f.SampleRate,
		Channels:   1,
	}
}
