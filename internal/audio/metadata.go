package audio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

type Metadata struct {
	Filename string
	Title    string
	Artist   string
	Album    string
	Format   string
}

// ReadMetadata reads embedded ID3/MP4/FLAC/OGG tags. Files without tags
// return a Metadata holding only the filename.
func ReadMetadata(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta := &Metadata{Filename: filepath.Base(path)}

	m, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return meta, nil
		}
		return nil, err
	}

	meta.Title = m.Title()
	meta.Artist = m.Artist()
	meta.Album = m.Album()
	meta.Format = string(m.Format())
	return meta, nil
}

// Label is a human-readable name for a file: "Artist - Title" when tagged,
// otherwise the base filename.
func (m *Metadata) Label() string {
	title := strings.TrimSpace(m.Title)
	artist := strings.TrimSpace(m.Artist)
	switch {
	case title != "" && artist != "":
		return artist + " - " + title
	case title != "":
		return title
	default:
		return m.Filename
	}
}

// Label reads the tags of path and falls back to its filename on any error.
func Label(path string) string {
	meta, err := ReadMetadata(path)
	if err != nil {
		return filepath.Base(path)
	}
	return meta.Label()
}
