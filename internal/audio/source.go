package audio

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/himanishpuri/audiomatch/internal/model"
)

// Source is an open stream of mono samples normalized to [-1, 1].
// Callers must Close it when done.
type Source interface {
	SampleRate() float64
	TotalSamples() int
	// ReadSamples fills dst with up to len(dst) samples and returns how many
	// were written. It returns io.EOF once the stream is exhausted.
	ReadSamples(dst []float64) (int, error)
	Close() error
}

// Opener opens a sample source for a path.
type Opener interface {
	Open(ctx context.Context, path string) (Source, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string) (Source, error)

func (f OpenerFunc) Open(ctx context.Context, path string) (Source, error) {
	return f(ctx, path)
}

// FileOpener decodes WAV and MP3 directly and transcodes anything else
// through ffmpeg into TempDir.
type FileOpener struct {
	TempDir string
	// TranscodeRate is passed to ffmpeg; 0 keeps the source rate.
	TranscodeRate int
}

func (o FileOpener) Open(ctx context.Context, path string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return OpenWAV(path)
	case ".mp3":
		return OpenMP3(path)
	}

	tempDir := o.TempDir
	if tempDir == "" {
		tempDir = DefaultTempDir
	}
	wavPath, err := ConvertToMonoWAV(ctx, path, tempDir, ConvertWAVConfig{SampleRate: o.TranscodeRate})
	if err != nil {
		return nil, resourceErr("transcoding", path, err)
	}
	src, err := openWAV(wavPath)
	if err != nil {
		removeQuietly(wavPath)
		return nil, err
	}
	return &tempFileSource{wavSource: src, path: wavPath}, nil
}

// ReadFull reads exactly len(dst) samples unless the source ends first,
// in which case it returns the short count and io.EOF.
func ReadFull(src Source, dst []float64) (int, error) {
	total := 0
	for total < len(dst) {
		n, err := src.ReadSamples(dst[total:])
		total += n
		if err == io.EOF {
			return total, io.EOF
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, fmt.Errorf("%w: source returned no samples and no error", model.ErrResource)
		}
	}
	return total, nil
}

func resourceErr(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", model.ErrResource, op, path, err)
}
