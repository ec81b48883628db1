package favorites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karolbroda.com/ticktock/internal/track"
)

func TestAddCheckDelete(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	song := track.New("The Beatles", "Yesterday")
	id, err := s.Add(song)
	require.NoError(t, err)
	assert.Equal(t, song.ID, id)

	fav, err := s.IsFavorite(id)
	require.NoError(t, err)
	assert.True(t, fav)

	n, err := s.Delete(id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	fav, err = s.IsFavorite(id)
	require.NoError(t, err)
	assert.False(t, fav)

	n, err = s.Delete(id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestAddInvalid(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	id, err := s.Add(&track.Song{Title: "No Artist"})
	assert.Error(t, err)
	assert.Equal(t, InvalidID, id)

	id, err = s.Add(nil)
	assert.Error(t, err)
	assert.Equal(t, InvalidID, id)
}

func TestAddAssignsMissingID(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	id, err := s.Add(&track.Song{Title: "Help!", ArtistName: "The Beatles"})
	require.NoError(t, err)
	assert.Equal(t, track.IDFor("Help!", "The Beatles"), id)
}

func TestPersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	_, err = s.Add(track.New("Queen", "Bohemian Rhapsody"))
	require.NoError(t, err)
	_, err = s.Add(track.New("ABBA", "Waterloo"))
	require.NoError(t, err)

	reopened, err := Open(dir)
	require.NoError(t, err)

	songs, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, songs, 2)

	fav, err := reopened.IsFavorite(track.IDFor("Waterloo", "ABBA"))
	require.NoError(t, err)
	assert.True(t, fav)

	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestListNewestFirst(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	first := track.New("A", "First")
	second := track.New("B", "Second")
	_, err = s.Add(first)
	require.NoError(t, err)
	_, err = s.Add(second)
	require.NoError(t, err)

	// re-adding keeps the original position
	_, err = s.Add(first)
	require.NoError(t, err)

	songs, err := s.List()
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "Second", songs[0].Title)
	assert.Equal(t, "First", songs[1].Title)
}

func TestOpenCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("garbage"), 0o644))

	_, err := Open(dir)
	assert.Error(t, err)
}

func TestAddRollsBackOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	// a directory squatting on the tmp name makes the write fail
	require.NoError(t, os.Mkdir(s.Path()+".tmp", 0o755))

	song := track.New("Queen", "Bicycle Race")
	id, err := s.Add(song)
	assert.Error(t, err)
	assert.Equal(t, InvalidID, id)

	fav, err := s.IsFavorite(song.ID)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestDataDir(t *testing.T) {
	assert.Equal(t, "/custom", DataDir("/custom"))

	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	assert.Equal(t, filepath.Join("/xdg/data", "ticktock"), DataDir(""))
}

func TestOpenEmptyDir(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
