package favorites

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"karolbroda.com/ticktock/internal/log"
	"karolbroda.com/ticktock/internal/track"
)

// InvalidID is returned by Add when nothing was stored.
const InvalidID int64 = -1

const fileName = "favorites.bin"

type entry struct {
	Song    track.Song
	AddedAt time.Time
}

// Store keeps favorite songs in memory and mirrors them to a single gob
// file on every change.
type Store struct {
	mu      sync.RWMutex
	path    string
	entries map[int64]entry
}

// DataDir resolves where the favorites file lives.
func DataDir(override string) string {
	if override != "" {
		return override
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "ticktock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ticktock")
	}
	return filepath.Join(home, ".local", "share", "ticktock")
}

// Open loads the favorites file in dir, creating dir if needed. A missing
// file is an empty store.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("empty favorites dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create favorites dir: %w", err)
	}

	s := &Store{
		path:    filepath.Join(dir, fileName),
		entries: make(map[int64]entry),
	}

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open favorites: %w", err)
	}
	defer f.Close()

	var stored []entry
	if err := gob.NewDecoder(f).Decode(&stored); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	for _, e := range stored {
		s.entries[e.Song.ID] = e
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

// Add stores song and returns its id. Adding a song twice keeps the first
// AddedAt.
func (s *Store) Add(song *track.Song) (int64, error) {
	if song == nil || !song.IsValid() {
		return InvalidID, errors.New("song needs a title and an artist")
	}

	stored := *song
	if stored.ID == 0 {
		stored.ID = track.IDFor(stored.Title, stored.ArtistName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.entries[stored.ID]
	e := entry{Song: stored, AddedAt: time.Now()}
	if existed {
		e.AddedAt = prev.AddedAt
	}
	s.entries[stored.ID] = e

	if err := s.flushLocked(); err != nil {
		if existed {
			s.entries[stored.ID] = prev
		} else {
			delete(s.entries, stored.ID)
		}
		return InvalidID, err
	}
	return stored.ID, nil
}

// Delete removes the song with id and returns how many songs were removed.
func (s *Store) Delete(id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.entries[id]
	if !ok {
		return 0, nil
	}
	delete(s.entries, id)

	if err := s.flushLocked(); err != nil {
		s.entries[id] = prev
		return 0, err
	}
	return 1, nil
}

func (s *Store) IsFavorite(id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[id]
	return ok, nil
}

// List returns favorites, most recently added first.
func (s *Store) List() ([]track.Song, error) {
	s.mu.RLock()
	sorted := make([]entry, 0, len(s.entries))
	for _, e := range s.entries {
		sorted = append(sorted, e)
	}
	s.mu.RUnlock()

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].AddedAt.Equal(sorted[j].AddedAt) {
			return sorted[i].Song.ID < sorted[j].Song.ID
		}
		return sorted[i].AddedAt.After(sorted[j].AddedAt)
	})

	songs := make([]track.Song, len(sorted))
	for i, e := range sorted {
		songs[i] = e.Song
	}
	return songs, nil
}

func (s *Store) flushLocked() error {
	list := make([]entry, 0, len(s.entries))
	for _, e := range s.entries {
		list = append(list, e)
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(list); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write favorites: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write favorites: %w", err)
	}

	log.L().Debug("favorites saved", zap.Int("count", len(list)))
	return nil
}
