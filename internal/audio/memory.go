package audio

import (
	"fmt"
	"io"

	"github.com/himanishpuri/audiomatch/internal/model"
)

// memorySource serves samples already held in memory.
type memorySource struct {
	samples []float64
	rate    float64
	pos     int
	closed  bool
}

// NewMemorySource returns a Source over mono samples at the given rate.
// The slice is not copied.
func NewMemorySource(samples []float64, sampleRate float64) Source {
	return &memorySource{samples: samples, rate: sampleRate}
}

func (m *memorySource) SampleRate() float64 { return m.rate }
func (m *memorySource) TotalSamples() int   { return len(m.samples) }

func (m *memorySource) ReadSamples(dst []float64) (int, error) {
	if m.pos >= len(m.samples) {
		return 0, io.EOF
	}
	n := copy(dst, m.samples[m.pos:])
	m.pos += n
	return n, nil
}

func (m *memorySource) Close() error {
	m.closed = true
	return nil
}

// NewInterleavedSource downmixes interleaved float frames to mono by
// averaging channels. A trailing incomplete frame is dropped.
func NewInterleavedSource(samples []float64, channels int, sampleRate float64) (Source, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: channel count %d", model.ErrInvalidInput, channels)
	}
	if channels == 1 {
		return NewMemorySource(samples, sampleRate), nil
	}

	frames := len(samples) / channels
	mono := make([]float64, frames)
	for i := range mono {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return NewMemorySource(mono, sampleRate), nil
}
