// Package audiotest synthesizes signals and WAV fixtures for tests.
package audiotest

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Sine returns seconds of a unit-amplitude sine at freq Hz.
func Sine(freq float64, sampleRate int, seconds float64) []float64 {
	n := int(math.Round(seconds * float64(sampleRate)))
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// Noise returns seconds of seeded uniform white noise in [-0.8, 0.8].
func Noise(seed int64, sampleRate int, seconds float64) []float64 {
	r := rand.New(rand.NewSource(seed))
	n := int(math.Round(seconds * float64(sampleRate)))
	out := make([]float64, n)
	for i := range out {
		out[i] = (r.Float64()*2 - 1) * 0.8
	}
	return out
}

// Silence returns seconds of zeros.
func Silence(sampleRate int, seconds float64) []float64 {
	return make([]float64, int(math.Round(seconds*float64(sampleRate))))
}

// WriteWAV writes mono samples as 16-bit PCM, duplicated across channels,
// into dir/name and returns the path.
func WriteWAV(t testing.TB, dir, name string, samples []float64, sampleRate, channels int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	data := make([]int, 0, len(samples)*channels)
	for _, s := range samples {
		v := int(math.Round(s * 32767))
		for c := 0; c < channels; c++ {
			data = append(data, v)
		}
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalizing %s: %v", path, err)
	}
	return path
}

// Silent MP3 fixture layout: MPEG-1 Layer III, 128 kbit/s, 44100 Hz, stereo.
const (
	MP3SampleRate   = 44100
	MP3FrameSamples = 1152
	mp3FrameBytes   = 144 * 128000 / MP3SampleRate
)

// WriteSilentMP3 writes frames MP3 frames of digital silence into dir/name
// and returns the path. Zeroed side info and main data decode to zeros, so
// each frame yields exactly MP3FrameSamples samples.
func WriteSilentMP3(t testing.TB, dir, name string, frames int) string {
	t.Helper()

	frame := make([]byte, mp3FrameBytes)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0x00})

	data := make([]byte, 0, frames*len(frame))
	for i := 0; i < frames; i++ {
		data = append(data, frame...)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
