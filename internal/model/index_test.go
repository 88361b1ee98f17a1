package model

import "testing"

func TestFingerprintIndexAbsentKeyDoesNotInsert(t *testing.T) {
	a := NewFingerprint(3, 22, 45, 61)
	idx := NewFingerprintIndex([]Fingerprint{a})

	missing := NewFingerprint(3, 22, 45, 62)
	if got := idx.Chunks(missing); got != nil {
		t.Errorf("Expected nil for absent key, got %v", got)
	}
	if idx.Contains(missing) {
		t.Error("Contains reported an absent key")
	}
	if idx.Len() != 1 {
		t.Errorf("Lookup changed the index size to %d", idx.Len())
	}
}

func TestFingerprintIndexKeysFirstSeenOrder(t *testing.T) {
	a := NewFingerprint(1, 2)
	b := NewFingerprint(2, 1)
	c := NewFingerprint(1, 3)

	idx := NewFingerprintIndex([]Fingerprint{b, a, b, c, a})
	keys := idx.Keys()

	if len(keys) != 3 || keys[0] != b || keys[1] != a || keys[2] != c {
		t.Errorf("Expected keys [b a c], got %v", keys)
	}

	// callers cannot reorder the index through the returned slice
	keys[0] = c
	if idx.Keys()[0] != b {
		t.Error("Keys returned the internal slice")
	}
}

func TestNilFingerprintIndex(t *testing.T) {
	var idx *FingerprintIndex
	if idx.Len() != 0 || idx.Chunks(NewFingerprint(1)) != nil || idx.Keys() != nil || idx.Contains(NewFingerprint(1)) {
		t.Error("nil index should behave as empty")
	}
}

func TestFingerprintString(t *testing.T) {
	fp := NewFingerprint(10, 20, 40, 79)
	if got := fp.String(); got != "(10, 20, 40, 79)" {
		t.Errorf("String() = %q", got)
	}
	if len(fp.Values()) != 4 {
		t.Errorf("Values() length = %d, expected 4", len(fp.Values()))
	}
}

func TestNewFingerprintTooManyBins(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for too many bins")
		}
	}()
	NewFingerprint(make([]int, MaxBuckets+1)...)
}
