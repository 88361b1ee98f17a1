package fingerprint

import (
	"context"
	"fmt"

	"github.com/himanishpuri/audiomatch/internal/audio"
	"github.com/himanishpuri/audiomatch/internal/model"
)

// FingerprintFile opens path through opener, fingerprints it and closes the
// source on every exit path. A close failure is reported only when nothing
// else failed.
func FingerprintFile(ctx context.Context, opener audio.Opener, path string, cfg Config) (*model.FileFingerprint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src, err := opener.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	spectra, duration, err := readAndClose(ctx, src, path, cfg)
	if err != nil {
		return nil, err
	}
	return fingerprintSpectra(path, duration, spectra, cfg)
}

// FingerprintSource fingerprints an already open source. The caller keeps
// ownership of src.
func FingerprintSource(ctx context.Context, src audio.Source, name string, cfg Config) (*model.FileFingerprint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	spectra, duration, err := readSpectra(ctx, src, name, cfg)
	if err != nil {
		return nil, err
	}
	return fingerprintSpectra(name, duration, spectra, cfg)
}

func readAndClose(ctx context.Context, src audio.Source, path string, cfg Config) (spectra [][]float64, duration float64, err error) {
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			spectra, duration, err = nil, 0, fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return readSpectra(ctx, src, path, cfg)
}

func readSpectra(ctx context.Context, src audio.Source, name string, cfg Config) ([][]float64, float64, error) {
	rate := src.SampleRate()
	chunkLen, err := ChunkSize(rate, cfg)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", name, err)
	}

	spectra, err := Spectra(ctx, src, chunkLen, cfg.Window)
	if err != nil {
		return nil, 0, fmt.Errorf("reading spectra of %s: %w", name, err)
	}
	return spectra, float64(src.TotalSamples()) / rate, nil
}

func fingerprintSpectra(name string, duration float64, spectra [][]float64, cfg Config) (*model.FileFingerprint, error) {
	fps, err := ExtractFingerprints(spectra, cfg)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting %s: %w", name, err)
	}

	return &model.FileFingerprint{
		Path:     name,
		Duration: duration,
		Chunks:   len(fps),
		Index:    BuildIndex(fps),
	}, nil
}
