package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/himanishpuri/audiomatch/internal/audio"
	"github.com/himanishpuri/audiomatch/internal/fingerprint"
	"github.com/himanishpuri/audiomatch/internal/render"
)

func (g globalOptions) opener() audio.Opener {
	return audio.FileOpener{TempDir: g.tempDir, TranscodeRate: g.rate}
}

func handleInspect(ctx context.Context, g globalOptions, args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("inspect", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	top := cmd.Int("top", 10, "Number of most repeated fingerprints to list")
	positional, err := parseInterspersed(cmd, args)
	if err != nil {
		return exitError
	}
	if len(positional) != 1 {
		fmt.Fprintln(stderr, "Usage: audiomatch inspect <file> [--top <n>]")
		return exitError
	}
	path := positional[0]

	win, err := fingerprint.ParseWindow(g.window)
	if err != nil {
		red.Fprintf(stderr, "%v\n", err)
		return exitError
	}
	cfg := fingerprint.DefaultConfig()
	cfg.Window = win

	ff, err := fingerprint.FingerprintFile(ctx, g.opener(), path, cfg)
	if err != nil {
		red.Fprintf(stderr, "Fingerprinting failed: %v\n", err)
		return exitError
	}

	fmt.Fprintf(stdout, "%s\n", audio.Label(path))
	fmt.Fprintf(stdout, "   duration:     %.3fs\n", ff.Duration)
	fmt.Fprintf(stdout, "   chunks:       %d (%.1f ms each)\n", ff.Chunks, cfg.ChunkDuration()*1000)
	fmt.Fprintf(stdout, "   fingerprints: %d distinct\n", ff.Index.Len())

	keys := ff.Index.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return len(ff.Index.Chunks(keys[i])) > len(ff.Index.Chunks(keys[j]))
	})
	if *top < len(keys) {
		keys = keys[:*top]
	}
	for _, key := range keys {
		chunks := ff.Index.Chunks(key)
		faint.Fprintf(stdout, "   %-24s x%-4d first at %.3fs\n", key, len(chunks), float64(chunks[0])*cfg.ChunkDuration())
	}
	return exitMatch
}

func handleSpectrogram(ctx context.Context, g globalOptions, args []string, stdout, stderr io.Writer) int {
	opts := render.DefaultSpectrogramOptions()

	cmd := flag.NewFlagSet("spectrogram", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	out := cmd.String("o", "", "Output PNG path (default: <file>.png)")
	cmd.IntVar(&opts.Width, "width", opts.Width, "Image width in pixels")
	cmd.IntVar(&opts.Height, "height", opts.Height, "Frequency bins drawn")
	cmd.BoolVar(&opts.Log10, "log", false, "Log-scale magnitudes")
	positional, err := parseInterspersed(cmd, args)
	if err != nil {
		return exitError
	}
	if len(positional) != 1 {
		fmt.Fprintln(stderr, "Usage: audiomatch spectrogram <file> [-o <out.png>] [--width <px>] [--height <bins>] [--log]")
		return exitError
	}
	path := positional[0]

	win, err := fingerprint.ParseWindow(g.window)
	if err != nil {
		red.Fprintf(stderr, "%v\n", err)
		return exitError
	}
	opts.Rectangular = win == fingerprint.WindowRectangular

	if *out == "" {
		*out = strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	}

	if err := render.RenderFile(ctx, g.opener(), path, *out, opts); err != nil {
		red.Fprintf(stderr, "Rendering failed: %v\n", err)
		return exitError
	}
	fmt.Fprintf(stdout, "Saved spectrogram to %s\n", *out)
	return exitMatch
}
