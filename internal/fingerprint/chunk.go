package fingerprint

import (
	"fmt"
	"math"

	"github.com/himanishpuri/audiomatch/internal/model"
)

// ChunkSize returns the chunk length in samples that spans
// cfg.ChunkDuration() seconds at sampleRate, so chunk indexes from files
// with different rates stay time-comparable.
func ChunkSize(sampleRate float64, cfg Config) (int, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("%w: sample rate %v must be positive", model.ErrInvalidInput, sampleRate)
	}

	n := int(math.Round(float64(cfg.NormalChunkSize) * sampleRate / cfg.NormalSampleRate))
	if n < 1 {
		n = 1
	}
	return n, nil
}
