package audiomatch

import (
	"errors"
	"time"

	"github.com/himanishpuri/audiomatch/internal/match"
	"github.com/himanishpuri/audiomatch/internal/model"
	"github.com/himanishpuri/audiomatch/internal/storage"
)

// Result is the outcome of one comparison. Matched reports the verdict and
// Debug returns the raw (max offset count, shorter duration) pair.
type Result = match.Result

// Record is a stored comparison.
type Record struct {
	ID          string    `json:"id"`
	PathA       string    `json:"path_a"`
	PathB       string    `json:"path_b"`
	LabelA      string    `json:"label_a"`
	LabelB      string    `json:"label_b"`
	DigestA     string    `json:"digest_a"`
	DigestB     string    `json:"digest_b"`
	MaxOffset   int       `json:"max_offset"`
	PeakOffset  int       `json:"peak_offset"`
	MinDuration float64   `json:"min_duration"`
	Score       float64   `json:"score"`
	Threshold   float64   `json:"threshold"`
	Matched     bool      `json:"matched"`
	CreatedAt   time.Time `json:"created_at"`

	// Earlier is filled by MatchAndRecord and never stored.
	Earlier []Record `json:"earlier,omitempty"`
}

var (
	ErrInvalidInput      = model.ErrInvalidInput
	ErrMalformedSpectrum = model.ErrMalformedSpectrum
	ErrResource          = model.ErrResource
	ErrDegenerateInput   = model.ErrDegenerateInput

	ErrRecordNotFound  = storage.ErrNotFound
	ErrHistoryDisabled = errors.New("match history is disabled")
)
