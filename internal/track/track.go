package track

import (
	"hash/fnv"
	"strings"
)

// Song identifies a track. Title and artist alone decide where its lyrics
// are cached.
type Song struct {
	ID           int64
	Title        string
	ArtistName   string
	Album        string
	DurationSecs int64
	ArtworkURL   string
}

func (s *Song) IsValid() bool {
	if s == nil {
		return false
	}
	return s.Title != "" && s.ArtistName != ""
}

// LrcFileName is the cache file name for the song's lyrics.
func (s *Song) LrcFileName() string {
	return s.Title + "-" + s.ArtistName + ".lrc"
}

func (s *Song) IsSameTrack(other *Song) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.ID != 0 && other.ID != 0 {
		return s.ID == other.ID
	}
	return s.Title == other.Title && s.ArtistName == other.ArtistName
}

// IDFor derives a stable positive id for songs whose source has none.
func IDFor(title string, artist string) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(title)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(artist)))
	return int64(h.Sum64() >> 1)
}

func New(artist string, title string) *Song {
	return &Song{
		ID:         IDFor(title, artist),
		Title:      title,
		ArtistName: artist,
	}
}
