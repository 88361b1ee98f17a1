package model

// FingerprintIndex maps each distinct Fingerprint to the ascending chunk
// indexes where it occurred. It is built once and read-only afterwards.
type FingerprintIndex struct {
	chunks map[Fingerprint][]ChunkIndex
	order  []Fingerprint
}

// NewFingerprintIndex groups chunk positions by exact fingerprint equality.
// fps[i] is the fingerprint of chunk i.
func NewFingerprintIndex(fps []Fingerprint) *FingerprintIndex {
	idx := &FingerprintIndex{chunks: make(map[Fingerprint][]ChunkIndex)}
	for chunk, fp := range fps {
		if _, ok := idx.chunks[fp]; !ok {
			idx.order = append(idx.order, fp)
		}
		idx.chunks[fp] = append(idx.chunks[fp], chunk)
	}
	return idx
}

// Chunks returns the chunk indexes for fp, or nil when fp is absent.
// The returned slice must not be modified.
func (x *FingerprintIndex) Chunks(fp Fingerprint) []ChunkIndex {
	if x == nil {
		return nil
	}
	return x.chunks[fp]
}

// Contains reports whether fp occurs at least once.
func (x *FingerprintIndex) Contains(fp Fingerprint) bool {
	if x == nil {
		return false
	}
	_, ok := x.chunks[fp]
	return ok
}

// Keys returns the distinct fingerprints in first-seen order.
func (x *FingerprintIndex) Keys() []Fingerprint {
	if x == nil {
		return nil
	}
	out := make([]Fingerprint, len(x.order))
	copy(out, x.order)
	return out
}

// Len returns the number of distinct fingerprints.
func (x *FingerprintIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.order)
}
