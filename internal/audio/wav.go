package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

type wavSource struct {
	f        *os.File
	dec      *wav.Decoder
	rate     float64
	channels int
	bitDepth int
	total    int
	buf      *audio.IntBuffer
}

// OpenWAV opens an integer PCM WAV file (8, 16, 24 or 32 bit, any channel count).
func OpenWAV(path string) (Source, error) {
	src, err := openWAV(path)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func openWAV(path string) (*wavSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, resourceErr("opening", path, err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, resourceErr("decoding", path, errors.New("not a valid WAV file"))
	}
	if dec.WavAudioFormat != wavFormatPCM {
		f.Close()
		return nil, resourceErr("decoding", path, fmt.Errorf("unsupported WAV audio format %d: only PCM (1) supported", dec.WavAudioFormat))
	}
	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		f.Close()
		return nil, resourceErr("decoding", path, fmt.Errorf("unsupported bits per sample: %d", dec.BitDepth))
	}
	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return nil, resourceErr("seeking to PCM data in", path, err)
	}

	channels := int(dec.NumChans)
	bytesPerFrame := channels * int(dec.BitDepth) / 8

	return &wavSource{
		f:        f,
		dec:      dec,
		rate:     float64(dec.SampleRate),
		channels: channels,
		bitDepth: int(dec.BitDepth),
		total:    int(dec.PCMLen()) / bytesPerFrame,
		buf:      &audio.IntBuffer{},
	}, nil
}

func (s *wavSource) SampleRate() float64 { return s.rate }
func (s *wavSource) TotalSamples() int   { return s.total }

func (s *wavSource) ReadSamples(dst []float64) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * s.channels
	if cap(s.buf.Data) < need {
		s.buf.Data = make([]int, need)
	}
	s.buf.Data = s.buf.Data[:need]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, resourceErr("reading", s.f.Name(), err)
	}

	frames := n / s.channels
	if frames == 0 {
		return 0, io.EOF
	}
	downmix(dst[:frames], s.buf.Data[:frames*s.channels], s.channels, s.bitDepth)
	return frames, nil
}

func (s *wavSource) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	if err != nil {
		return resourceErr("closing", "wav source", err)
	}
	return nil
}

// downmix averages interleaved integer frames into normalized mono samples.
func downmix(dst []float64, data []int, channels, bitDepth int) {
	var scale, center float64
	if bitDepth == 8 {
		// 8-bit PCM is unsigned
		scale, center = 1.0/128.0, 128
	} else {
		scale = 1.0 / float64(int64(1)<<(bitDepth-1))
	}

	for i := range dst {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(data[i*channels+c]) - center
		}
		dst[i] = sum / float64(channels) * scale
	}
}
