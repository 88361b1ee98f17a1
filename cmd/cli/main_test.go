package main

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/audiomatch/internal/audiotest"
)

func init() {
	color.NoColor = true
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"--quiet"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCompareMatch(t *testing.T) {
	dir := t.TempDir()
	tone := audiotest.WriteWAV(t, dir, "tone.wav", audiotest.Sine(440, 44100, 1.0), 44100, 1)

	code, out, errOut := runCLI(t, "compare", tone, tone, "--debug")
	require.Equal(t, exitMatch, code, errOut)
	assert.Contains(t, out, "(43, 1)")
	assert.Contains(t, out, "offset histogram:")
	assert.Contains(t, out, "MATCH")
	assert.NotContains(t, out, "NO MATCH")
}

func TestCompareNoMatchAboveThreshold(t *testing.T) {
	dir := t.TempDir()
	tone := audiotest.WriteWAV(t, dir, "tone.wav", audiotest.Sine(440, 44100, 1.0), 44100, 1)

	code, out, _ := runCLI(t, "--threshold", "1000", "compare", tone, tone)
	assert.Equal(t, exitNoMatch, code)
	assert.Contains(t, out, "NO MATCH")
}

func TestCompareErrors(t *testing.T) {
	code, _, errOut := runCLI(t, "compare", "only-one.wav")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "Usage")

	code, _, errOut = runCLI(t, "compare", "/nonexistent/a.wav", "/nonexistent/b.wav")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "Comparison failed")

	code, _, _ = runCLI(t, "--window", "kaiser", "compare", "a.wav", "b.wav")
	assert.Equal(t, exitError, code)
}

func TestUnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "identify")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "Unknown command")

	code, _, _ = runCLI(t)
	assert.Equal(t, exitError, code)
}

func TestRecordHistoryForget(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "history.sqlite3")
	tone := audiotest.WriteWAV(t, dir, "tone.wav", audiotest.Sine(440, 44100, 1.0), 44100, 1)

	code, out, errOut := runCLI(t, "--db", db, "compare", tone, tone, "--record")
	require.Equal(t, exitMatch, code, errOut)

	id := regexp.MustCompile(`recorded as (\S+)`).FindStringSubmatch(out)
	require.Len(t, id, 2, out)

	assert.NotContains(t, out, "before")

	code, out, errOut = runCLI(t, "--db", db, "compare", tone, tone, "--record")
	require.Equal(t, exitMatch, code, errOut)
	assert.Contains(t, out, "compared 1 time(s) before")
	assert.Contains(t, out, id[1])

	code, out, _ = runCLI(t, "--db", db, "history", "--limit", "1")
	require.Equal(t, exitMatch, code)
	assert.Contains(t, out, "tone.wav")
	assert.Contains(t, out, "showing 1 of 2")

	code, out, errOut = runCLI(t, "--db", db, "show", id[1])
	require.Equal(t, exitMatch, code, errOut)
	assert.Contains(t, out, id[1])
	assert.Contains(t, out, tone)

	code, out, _ = runCLI(t, "--db", db, "forget", id[1])
	require.Equal(t, exitMatch, code)
	assert.True(t, strings.HasPrefix(out, "Deleted"))

	code, _, errOut = runCLI(t, "--db", db, "forget", id[1])
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "No record")

	code, _, errOut = runCLI(t, "--db", db, "show", id[1])
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "No record")

	code, out, _ = runCLI(t, "--db", db, "history")
	require.Equal(t, exitMatch, code)
	assert.Contains(t, out, "showing 1 of 1")
}

func TestHistoryDatabaseFromEnv(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "env.sqlite3")
	t.Setenv("AUDIOMATCH_DB_PATH", db)

	code, out, errOut := runCLI(t, "history")
	require.Equal(t, exitMatch, code, errOut)
	assert.Contains(t, out, "No comparisons recorded")
	assert.FileExists(t, db)
}

func TestParseInterspersed(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	debug := fs.Bool("debug", false, "")
	out := fs.String("o", "", "")

	pos, err := parseInterspersed(fs, []string{"a.wav", "--debug", "b.wav", "-o", "x.png"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.wav", "b.wav"}, pos)
	assert.True(t, *debug)
	assert.Equal(t, "x.png", *out)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	tone := audiotest.WriteWAV(t, dir, "tone.wav", audiotest.Sine(440, 44100, 1.0), 44100, 1)

	code, out, errOut := runCLI(t, "inspect", tone, "--top", "3")
	require.Equal(t, exitMatch, code, errOut)
	assert.Contains(t, out, "chunks:       43")
	assert.Contains(t, out, "(10, ")
}

func TestSpectrogram(t *testing.T) {
	dir := t.TempDir()
	tone := audiotest.WriteWAV(t, dir, "tone.wav", audiotest.Sine(440, 44100, 1.0), 44100, 1)

	code, out, errOut := runCLI(t, "--window", "hamming", "spectrogram", tone, "--width", "128", "--height", "64")
	require.Equal(t, exitMatch, code, errOut)
	assert.Contains(t, out, filepath.Join(dir, "tone.png"))
	assert.FileExists(t, filepath.Join(dir, "tone.png"))
}
