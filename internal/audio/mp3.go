package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always decodes to interleaved 16-bit little-endian stereo.
const mp3BytesPerFrame = 4

type mp3Source struct {
	f     *os.File
	dec   *mp3.Decoder
	total int
	buf   []byte
}

// OpenMP3 opens an MP3 file and downmixes it to mono.
func OpenMP3(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, resourceErr("opening", path, err)
	}

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, resourceErr("decoding", path, err)
	}
	if dec.Length() < 0 {
		f.Close()
		return nil, resourceErr("decoding", path, errors.New("unknown stream length"))
	}

	return &mp3Source{
		f:     f,
		dec:   dec,
		total: int(dec.Length() / mp3BytesPerFrame),
	}, nil
}

func (s *mp3Source) SampleRate() float64 { return float64(s.dec.SampleRate()) }
func (s *mp3Source) TotalSamples() int   { return s.total }

func (s *mp3Source) ReadSamples(dst []float64) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * mp3BytesPerFrame
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.dec, s.buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, resourceErr("reading", s.f.Name(), err)
	}

	frames := downmixStereo16(dst, s.buf[:n])
	if frames == 0 {
		return 0, io.EOF
	}
	return frames, nil
}

// downmixStereo16 averages interleaved 16-bit little-endian stereo frames
// from buf into dst and returns how many were written. A trailing partial
// frame is ignored.
func downmixStereo16(dst []float64, buf []byte) int {
	frames := min(len(buf)/mp3BytesPerFrame, len(dst))

	const scale = 1.0 / 32768.0
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(buf[i*mp3BytesPerFrame:]))
		r := int16(binary.LittleEndian.Uint16(buf[i*mp3BytesPerFrame+2:]))
		dst[i] = (float64(l) + float64(r)) * 0.5 * scale
	}
	return frames
}

func (s *mp3Source) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	if err != nil {
		return resourceErr("closing", "mp3 source", err)
	}
	return nil
}
