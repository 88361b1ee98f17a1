package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/himanishpuri/audiomatch/internal/model"
)

var (
	fpX = model.NewFingerprint(1, 21, 41, 61)
	fpY = model.NewFingerprint(2, 22, 42, 62)
	fpZ = model.NewFingerprint(3, 23, 43, 63)
)

func TestBuildHistogramCartesianProduct(t *testing.T) {
	a := model.NewFingerprintIndex([]model.Fingerprint{fpX, fpX, fpY})
	b := model.NewFingerprintIndex([]model.Fingerprint{fpX, fpY, fpY, fpY})

	h, shared := BuildHistogram(a, b)

	assert.Equal(t, 2, shared)
	// fpX: 2x1 pairs, fpY: 1x3 pairs
	assert.Equal(t, 5, h.Total())
	assert.Equal(t, 2, h.Count(0))
	assert.Equal(t, 2, h.Count(1))
	assert.Equal(t, 1, h.Count(-1))
	assert.Equal(t, 0, h.Count(7))
	assert.Equal(t, 3, h.Len())

	off, count := h.Peak()
	assert.Equal(t, 0, off, "ties resolve to the smallest offset")
	assert.Equal(t, 2, count)
}

func TestBuildHistogramNoSharedKeys(t *testing.T) {
	a := model.NewFingerprintIndex([]model.Fingerprint{fpX, fpX})
	b := model.NewFingerprintIndex([]model.Fingerprint{fpY, fpZ})

	h, shared := BuildHistogram(a, b)

	assert.Zero(t, shared)
	assert.Zero(t, h.Len())
	off, count := h.Peak()
	assert.Zero(t, off)
	assert.Zero(t, count)

	// lookups of absent keys must not grow either index
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, b.Len())
}

func TestBuildHistogramSelf(t *testing.T) {
	fps := []model.Fingerprint{fpX, fpY, fpX, fpZ, fpX, fpY}
	idx := model.NewFingerprintIndex(fps)

	h, _ := BuildHistogram(idx, idx)

	off, count := h.Peak()
	assert.Equal(t, 0, off)
	assert.Equal(t, len(fps), count)
	for o := -len(fps); o <= len(fps); o++ {
		assert.LessOrEqual(t, h.Count(o), max(len(fps)-abs(o), 0))
	}
}

func TestPeakTieBreakNegative(t *testing.T) {
	h := &OffsetHistogram{counts: map[int]int{-4: 3, 2: 3, 9: 1}}
	off, count := h.Peak()
	assert.Equal(t, -4, off)
	assert.Equal(t, 3, count)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
