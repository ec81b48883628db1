package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karolbroda.com/ticktock/internal/cache"
	"karolbroda.com/ticktock/internal/lyrics"
	"karolbroda.com/ticktock/internal/track"
)

func TestParseSongLine(t *testing.T) {
	song, ok, err := parseSongLine("  Daft Punk - One More Time ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Daft Punk", song.ArtistName)
	assert.Equal(t, "One More Time", song.Title)
	assert.Equal(t, track.IDFor("One More Time", "Daft Punk"), song.ID)

	for _, skip := range []string{"", "   ", "# comment"} {
		_, ok, err := parseSongLine(skip)
		assert.NoError(t, err, skip)
		assert.False(t, ok, skip)
	}

	for _, bad := range []string{"no separator", " - title only", "artist - "} {
		_, _, err := parseSongLine(bad)
		assert.Error(t, err, bad)
	}
}

func TestReadSongList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songs.txt")
	require.NoError(t, os.WriteFile(path, []byte("# queue\nA - One\n\nB - Two - Remix\n"), 0o644))

	songs, err := readSongList(path)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "Two - Remix", songs[1].Title)

	require.NoError(t, os.WriteFile(path, []byte("A - One\nbroken\n"), 0o644))
	_, err = readSongList(path)
	assert.ErrorContains(t, err, ":2:")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(1536*1024))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(-3))
	assert.Equal(t, "3:07", formatDuration(187))
}

func TestSeedEmbeddedLyrics(t *testing.T) {
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	song := track.New("Artist", "Song")

	assert.False(t, seedEmbeddedLyrics(store, song, "plain text, no timestamps"))
	assert.False(t, store.Readable(store.Path(song.LrcFileName())))

	assert.True(t, seedEmbeddedLyrics(store, song, "[00:01.00]hello\n[00:02.50]world\n"))
	lines, err := lyrics.ParseFile(store.Path(song.LrcFileName()))
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	// an existing entry wins over the tags
	assert.False(t, seedEmbeddedLyrics(store, song, "[00:03.00]other\n"))
}
