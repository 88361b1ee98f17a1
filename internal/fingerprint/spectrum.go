package fingerprint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/himanishpuri/audiomatch/internal/audio"
	"github.com/himanishpuri/audiomatch/internal/model"
)

// Coefficients returns the taper for w at length n, or nil for rectangular.
func Coefficients(w Window, n int) []float64 {
	switch w {
	case WindowHamming:
		return window.Hamming(n)
	case WindowHann:
		return window.Hann(n)
	default:
		return nil
	}
}

// FFTReal wraps the go-dsp FFT function and returns a complex spectrum.
func FFTReal(frame []float64) []complex128 {
	return fft.FFTReal(frame)
}

// MagnitudeSpectrum converts a complex spectrum into a magnitude spectrum (positive freqs only)
func MagnitudeSpectrum(spectrum []complex128) []float64 {
	n := len(spectrum)
	half := n / 2
	mag := make([]float64, half)
	for i := 0; i < half; i++ {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

// ChunkSpectrum tapers one chunk with win (if any) and returns its magnitude spectrum.
// chunk is not modified.
func ChunkSpectrum(chunk, win []float64) []float64 {
	frame := make([]float64, len(chunk))
	copy(frame, chunk)
	if win != nil {
		for i := range frame {
			frame[i] *= win[i]
		}
	}
	return MagnitudeSpectrum(FFTReal(frame))
}

// Spectra reads src to the end in non-overlapping chunks of chunkLen samples
// and returns one magnitude spectrum per full chunk, in order. A trailing
// partial chunk is discarded. Each spectrum has chunkLen/2 bins.
func Spectra(ctx context.Context, src audio.Source, chunkLen int, w Window) ([][]float64, error) {
	if chunkLen < 1 {
		return nil, fmt.Errorf("%w: chunk length %d must be positive", model.ErrInvalidInput, chunkLen)
	}

	win := Coefficients(w, chunkLen)
	buf := make([]float64, chunkLen)

	capHint := 0
	if total := src.TotalSamples(); total > 0 {
		capHint = total / chunkLen
	}
	spectra := make([][]float64, 0, capHint)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := audio.ReadFull(src, buf)
		if n == chunkLen {
			spectra = append(spectra, ChunkSpectrum(buf, win))
		}
		if errors.Is(err, io.EOF) {
			return spectra, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
