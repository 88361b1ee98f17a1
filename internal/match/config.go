package match

import (
	"runtime"
	"time"

	"github.com/himanishpuri/audiomatch/internal/fingerprint"
)

type Config struct {
	Fingerprint fingerprint.Config

	// ScoreThreshold is compared with a strict greater-than.
	ScoreThreshold float64

	// MaxHashDistance is carried for configuration compatibility only.
	// Fingerprints are matched by exact equality.
	MaxHashDistance int

	// Workers bounds concurrent fingerprinting tasks. Values below 1 mean 1.
	Workers int

	// TaskTimeout limits each fingerprinting task; 0 disables the limit.
	TaskTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Fingerprint:     fingerprint.DefaultConfig(),
		ScoreThreshold:  0,
		MaxHashDistance: 2,
		Workers:         runtime.NumCPU(),
		TaskTimeout:     2 * time.Minute,
	}
}
