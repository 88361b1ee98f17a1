package fingerprint

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/himanishpuri/audiomatch/internal/model"
)

// BucketWinners reduces one spectrum to a Fingerprint: for each sub-band
// [b*BucketSize, (b+1)*BucketSize) it records the global index of the
// loudest bin. Ties go to the lowest index. A bucket layout outside
// Config.Validate's bounds is rejected with model.ErrInvalidInput.
func BucketWinners(spectrum []float64, cfg Config) (model.Fingerprint, error) {
	if err := cfg.validateBuckets(); err != nil {
		return model.Fingerprint{}, err
	}
	return bucketWinners(spectrum, cfg)
}

func bucketWinners(spectrum []float64, cfg Config) (model.Fingerprint, error) {
	if upper := cfg.UpperLimit(); len(spectrum) < upper {
		return model.Fingerprint{}, fmt.Errorf("%w: %d bins, need at least %d",
			model.ErrMalformedSpectrum, len(spectrum), upper)
	}

	fp := model.Fingerprint{N: cfg.Buckets}
	for b := 0; b < cfg.Buckets; b++ {
		start := b * cfg.BucketSize
		band := spectrum[start : start+cfg.BucketSize]
		for i, v := range band {
			if v < 0 || math.IsNaN(v) {
				return model.Fingerprint{}, fmt.Errorf("%w: bin %d has magnitude %v",
					model.ErrMalformedSpectrum, start+i, v)
			}
		}
		fp.Bins[b] = start + floats.MaxIdx(band)
	}
	return fp, nil
}

// ExtractFingerprints returns one Fingerprint per spectrum, in order.
func ExtractFingerprints(spectra [][]float64, cfg Config) ([]model.Fingerprint, error) {
	if err := cfg.validateBuckets(); err != nil {
		return nil, err
	}

	out := make([]model.Fingerprint, len(spectra))
	for i, mag := range spectra {
		fp, err := bucketWinners(mag, cfg)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		out[i] = fp
	}
	return out, nil
}

// BuildIndex groups chunk indexes by identical fingerprint.
func BuildIndex(fps []model.Fingerprint) *model.FingerprintIndex {
	return model.NewFingerprintIndex(fps)
}
