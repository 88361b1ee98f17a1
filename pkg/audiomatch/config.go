package audiomatch

import (
	"fmt"
	"runtime"
	"time"

	"github.com/himanishpuri/audiomatch/internal/fingerprint"
	"github.com/himanishpuri/audiomatch/internal/match"
)

type Config struct {
	BucketSize       int
	Buckets          int
	NormalChunkSize  int
	NormalSampleRate float64
	Window           string
	ScoreThreshold   float64
	MaxHashDistance  int
	Workers          int
	TaskTimeout      time.Duration
	TempDir          string
	TranscodeRate    int
	DBPath           string
	Logger           Logger
	History          History
}

type Option func(*Config)

func WithBucketSize(n int) Option {
	return func(c *Config) {
		c.BucketSize = n
	}
}

func WithBuckets(n int) Option {
	return func(c *Config) {
		c.Buckets = n
	}
}

func WithNormalChunkSize(n int) Option {
	return func(c *Config) {
		c.NormalChunkSize = n
	}
}

func WithNormalSampleRate(rate float64) Option {
	return func(c *Config) {
		c.NormalSampleRate = rate
	}
}

// WithWindow selects "rectangular", "hamming" or "hann".
func WithWindow(name string) Option {
	return func(c *Config) {
		c.Window = name
	}
}

func WithScoreThreshold(t float64) Option {
	return func(c *Config) {
		c.ScoreThreshold = t
	}
}

// WithMaxHashDistance is accepted for configuration compatibility; matching
// is exact regardless of its value.
func WithMaxHashDistance(d int) Option {
	return func(c *Config) {
		c.MaxHashDistance = d
	}
}

func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

func WithTaskTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.TaskTimeout = d
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

// WithTranscodeRate sets the ffmpeg output rate for formats that are not
// decoded natively. 0 keeps the source rate.
func WithTranscodeRate(rate int) Option {
	return func(c *Config) {
		c.TranscodeRate = rate
	}
}

// WithDBPath enables match history in a SQLite file at path.
func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// WithHistory enables match history in h. It takes precedence over WithDBPath.
func WithHistory(h History) Option {
	return func(c *Config) {
		c.History = h
	}
}

func defaultConfig() *Config {
	fp := fingerprint.DefaultConfig()
	return &Config{
		BucketSize:       fp.BucketSize,
		Buckets:          fp.Buckets,
		NormalChunkSize:  fp.NormalChunkSize,
		NormalSampleRate: fp.NormalSampleRate,
		Window:           string(fp.Window),
		ScoreThreshold:   0,
		MaxHashDistance:  2,
		Workers:          runtime.NumCPU(),
		TaskTimeout:      2 * time.Minute,
	}
}

func (c *Config) matchConfig() (match.Config, error) {
	win, err := fingerprint.ParseWindow(c.Window)
	if err != nil {
		return match.Config{}, err
	}

	fp := fingerprint.Config{
		BucketSize:       c.BucketSize,
		Buckets:          c.Buckets,
		NormalChunkSize:  c.NormalChunkSize,
		NormalSampleRate: c.NormalSampleRate,
		Window:           win,
	}
	if err := fp.Validate(); err != nil {
		return match.Config{}, fmt.Errorf("fingerprint config: %w", err)
	}

	return match.Config{
		Fingerprint:     fp,
		ScoreThreshold:  c.ScoreThreshold,
		MaxHashDistance: c.MaxHashDistance,
		Workers:         c.Workers,
		TaskTimeout:     c.TaskTimeout,
	}, nil
}
