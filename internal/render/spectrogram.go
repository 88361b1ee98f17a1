// Package render draws spectrogram images of audio files for inspection.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"

	"github.com/eligwz/spectrogram"

	"github.com/himanishpuri/audiomatch/internal/audio"
	"github.com/himanishpuri/audiomatch/internal/model"
)

type SpectrogramOptions struct {
	Width  int
	Height int // frequency bins drawn
	// Rectangular skips the Hamming window.
	Rectangular bool
	Log10       bool
	Background  string // hex RGB
}

func DefaultSpectrogramOptions() SpectrogramOptions {
	return SpectrogramOptions{
		Width:      2048,
		Height:     512,
		Background: "000000",
	}
}

// ReadAll opens path and returns every mono sample and the sample rate.
func ReadAll(ctx context.Context, opener audio.Opener, path string) ([]float64, float64, error) {
	src, err := opener.Open(ctx, path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	samples := make([]float64, src.TotalSamples())
	n, err := audio.ReadFull(src, samples)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return samples[:n], src.SampleRate(), nil
}

// SaveSpectrogram renders samples as a PNG at out.
func SaveSpectrogram(samples []float64, sampleRate float64, out string, opts SpectrogramOptions) error {
	if opts.Width < 1 || opts.Height < 1 {
		return fmt.Errorf("%w: image size %dx%d", model.ErrInvalidInput, opts.Width, opts.Height)
	}
	if len(samples) == 0 {
		return fmt.Errorf("%w: no samples to draw", model.ErrDegenerateInput)
	}
	if opts.Background == "" {
		opts.Background = "000000"
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, opts.Width, opts.Height))
	bg := spectrogram.ParseColor(opts.Background)
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	spectrogram.Drawfft(
		img,
		samples,
		uint32(sampleRate),
		uint32(opts.Height),
		opts.Rectangular,
		false, // FFT, not DFT
		true,  // magnitude
		opts.Log10,
	)

	if err := spectrogram.SavePng(img, out); err != nil {
		return fmt.Errorf("saving %s: %w", out, err)
	}
	return nil
}

// RenderFile reads path through opener and writes its spectrogram to out.
func RenderFile(ctx context.Context, opener audio.Opener, path, out string, opts SpectrogramOptions) error {
	samples, rate, err := ReadAll(ctx, opener, path)
	if err != nil {
		return err
	}
	return SaveSpectrogram(samples, rate, out, opts)
}
