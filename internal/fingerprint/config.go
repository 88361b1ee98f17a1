package fingerprint

import (
	"fmt"
	"math"

	"github.com/himanishpuri/audiomatch/internal/model"
)

// Window selects the taper applied to each chunk before the FFT.
type Window string

const (
	WindowRectangular Window = "rectangular"
	WindowHamming     Window = "hamming"
	WindowHann        Window = "hann"
)

// ParseWindow maps a name to a Window. The empty string is rectangular.
func ParseWindow(name string) (Window, error) {
	switch Window(name) {
	case "", WindowRectangular:
		return WindowRectangular, nil
	case WindowHamming, WindowHann:
		return Window(name), nil
	}
	return "", fmt.Errorf("%w: unknown window %q", model.ErrInvalidInput, name)
}

// Config holds the fingerprinting tunables. Both files of a comparison
// must be processed with the same Config.
type Config struct {
	BucketSize       int     // bins per sub-band
	Buckets          int     // number of sub-bands
	NormalChunkSize  int     // chunk length in samples at NormalSampleRate
	NormalSampleRate float64 // reference rate the chunk duration is defined at
	Window           Window
}

func DefaultConfig() Config {
	return Config{
		BucketSize:       20,
		Buckets:          4,
		NormalChunkSize:  1024,
		NormalSampleRate: 44100,
		Window:           WindowRectangular,
	}
}

// UpperLimit is the number of spectrum bins a chunk must provide.
func (c Config) UpperLimit() int {
	return c.BucketSize * c.Buckets
}

// ChunkDuration is the real-world length of one chunk in seconds.
func (c Config) ChunkDuration() float64 {
	return float64(c.NormalChunkSize) / c.NormalSampleRate
}

func (c Config) Validate() error {
	if err := c.validateBuckets(); err != nil {
		return err
	}
	if c.NormalChunkSize < 1 {
		return fmt.Errorf("%w: normal chunk size %d must be positive", model.ErrInvalidInput, c.NormalChunkSize)
	}
	if !(c.NormalSampleRate > 0) || math.IsInf(c.NormalSampleRate, 0) {
		return fmt.Errorf("%w: normal sample rate %v must be positive", model.ErrInvalidInput, c.NormalSampleRate)
	}
	if _, err := ParseWindow(string(c.Window)); err != nil {
		return err
	}
	return nil
}

func (c Config) validateBuckets() error {
	if c.BucketSize < 1 {
		return fmt.Errorf("%w: bucket size %d must be positive", model.ErrInvalidInput, c.BucketSize)
	}
	if c.Buckets < 1 || c.Buckets > model.MaxBuckets {
		return fmt.Errorf("%w: bucket count %d must be in [1, %d]", model.ErrInvalidInput, c.Buckets, model.MaxBuckets)
	}
	return nil
}
