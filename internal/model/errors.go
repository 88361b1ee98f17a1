package model

import "errors"

var (
	// ErrInvalidInput reports a non-positive sample rate or chunk length.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedSpectrum reports a spectrum shorter than the required bin count.
	ErrMalformedSpectrum = errors.New("malformed spectrum")
	// ErrResource reports a failure to open, read or close a sample source.
	ErrResource = errors.New("resource error")
	// ErrDegenerateInput reports a zero-duration file.
	ErrDegenerateInput = errors.New("degenerate input")
)
