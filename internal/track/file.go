package track

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
)

// Tagged is a song read from an audio file, plus any lyrics embedded in it.
type Tagged struct {
	Song   *Song
	Lyrics string
}

// FromFile reads the ID3 tags of an mp3. The file name stands in for a
// missing title.
func FromFile(path string) (*Tagged, error) {
	if path == "" {
		return nil, errors.New("empty file path")
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}
	defer tag.Close()

	title := strings.TrimSpace(tag.Title())
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	artist := strings.TrimSpace(tag.Artist())

	song := New(artist, title)
	song.Album = strings.TrimSpace(tag.Album())

	var lyrics string
	for _, frame := range tag.GetFrames(tag.CommonID("Unsynchronised lyrics/text transcription")) {
		uslf, ok := frame.(id3v2.UnsynchronisedLyricsFrame)
		if !ok {
			continue
		}
		if strings.TrimSpace(uslf.Lyrics) != "" {
			lyrics = uslf.Lyrics
			break
		}
	}

	return &Tagged{Song: song, Lyrics: lyrics}, nil
}
