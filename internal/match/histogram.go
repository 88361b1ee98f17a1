package match

import (
	"github.com/himanishpuri/audiomatch/internal/model"
)

// OffsetHistogram counts matching fingerprint pairs by chunk offset
// (chunk in A minus chunk in B). It is read-only once built.
type OffsetHistogram struct {
	counts map[int]int
}

// BuildHistogram cross-references two indexes. Every fingerprint present in
// both contributes one observation per pair in the cartesian product of its
// chunk lists. It also returns how many distinct fingerprints were shared.
func BuildHistogram(a, b *model.FingerprintIndex) (*OffsetHistogram, int) {
	h := &OffsetHistogram{counts: make(map[int]int)}
	shared := 0

	for _, key := range a.Keys() {
		if !b.Contains(key) {
			continue
		}
		chunksB := b.Chunks(key)
		shared++
		for _, c1 := range a.Chunks(key) {
			for _, c2 := range chunksB {
				h.counts[c1-c2]++
			}
		}
	}
	return h, shared
}

// Count returns the observations at offset, 0 when none.
func (h *OffsetHistogram) Count(offset int) int {
	return h.counts[offset]
}

// Len returns the number of distinct offsets observed.
func (h *OffsetHistogram) Len() int {
	return len(h.counts)
}

// Total returns the number of observations across all offsets.
func (h *OffsetHistogram) Total() int {
	total := 0
	for _, c := range h.counts {
		total += c
	}
	return total
}

// Peak returns the most frequent offset and its count. Ties go to the
// smallest offset. An empty histogram yields (0, 0).
func (h *OffsetHistogram) Peak() (offset, count int) {
	for off, c := range h.counts {
		if c > count || (c == count && off < offset) {
			offset, count = off, c
		}
	}
	return offset, count
}
