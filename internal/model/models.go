package model

import (
	"fmt"
	"strings"
)

// MaxBuckets bounds the number of sub-bands a Fingerprint can hold.
// Fingerprint is a fixed array so it stays comparable and usable as a map key.
const MaxBuckets = 16

// Fingerprint holds the dominant bin of each sub-band of one chunk.
// Bins[i] is a global bin index inside sub-band i; only the first N entries are used.
type Fingerprint struct {
	N    int
	Bins [MaxBuckets]int
}

// NewFingerprint builds a Fingerprint from the given bins.
func NewFingerprint(bins ...int) Fingerprint {
	if len(bins) > MaxBuckets {
		panic(fmt.Sprintf("fingerprint: %d bins exceeds MaxBuckets (%d)", len(bins), MaxBuckets))
	}
	var fp Fingerprint
	fp.N = len(bins)
	copy(fp.Bins[:], bins)
	return fp
}

// Values returns the used bins as a slice.
func (f Fingerprint) Values() []int {
	out := make([]int, f.N)
	copy(out, f.Bins[:f.N])
	return out
}

func (f Fingerprint) String() string {
	parts := make([]string, f.N)
	for i := 0; i < f.N; i++ {
		parts[i] = fmt.Sprint(f.Bins[i])
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ChunkIndex is the ordinal position of a chunk within its file.
type ChunkIndex = int

// FileFingerprint is the per-file result consumed by the matcher.
type FileFingerprint struct {
	Path     string
	Duration float64 // seconds
	Chunks   int
	Index    *FingerprintIndex
}
