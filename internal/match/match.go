package match

import (
	"errors"
	"fmt"
	"math"

	"github.com/himanishpuri/audiomatch/internal/model"
)

// Result is the outcome of comparing two files. All fields are always
// populated; Matched and Debug are views over them.
type Result struct {
	PathA     string
	PathB     string
	DurationA float64
	DurationB float64
	ChunksA   int
	ChunksB   int

	SharedFingerprints int
	// HistogramPairs is the number of matching chunk pairs voted, spread
	// over HistogramOffsets distinct offsets.
	HistogramPairs   int
	HistogramOffsets int
	// MaxOffset is the peak offset-histogram count.
	MaxOffset int
	// PeakOffset is the chunk offset (A minus B) where the peak occurs.
	PeakOffset        int
	PeakOffsetSeconds float64
	MinDuration       float64
	Score             float64
	Threshold         float64
}

// Matched reports whether Score is strictly above the threshold.
func (r Result) Matched() bool {
	return r.Score > r.Threshold
}

// Debug returns the raw (max offset count, shorter duration) pair.
func (r Result) Debug() (int, float64) {
	return r.MaxOffset, r.MinDuration
}

// Compare scores two fingerprinted files against each other.
func Compare(a, b *model.FileFingerprint, cfg Config) (Result, error) {
	if a == nil || b == nil {
		return Result{}, errors.New("compare: nil file fingerprint")
	}

	hist, shared := BuildHistogram(a.Index, b.Index)
	peakOffset, maxOffset := hist.Peak()

	minDuration := math.Min(a.Duration, b.Duration)
	if !(minDuration > 0) {
		return Result{}, fmt.Errorf("%w: shorter file %s has duration %v",
			model.ErrDegenerateInput, shorter(a, b).Path, minDuration)
	}

	return Result{
		PathA:              a.Path,
		PathB:              b.Path,
		DurationA:          a.Duration,
		DurationB:          b.Duration,
		ChunksA:            a.Chunks,
		ChunksB:            b.Chunks,
		SharedFingerprints: shared,
		HistogramPairs:     hist.Total(),
		HistogramOffsets:   hist.Len(),
		MaxOffset:          maxOffset,
		PeakOffset:         peakOffset,
		PeakOffsetSeconds:  float64(peakOffset) * cfg.Fingerprint.ChunkDuration(),
		MinDuration:        minDuration,
		Score:              float64(maxOffset) / minDuration,
		Threshold:          cfg.ScoreThreshold,
	}, nil
}

func shorter(a, b *model.FileFingerprint) *model.FileFingerprint {
	if b.Duration < a.Duration {
		return b
	}
	return a
}
