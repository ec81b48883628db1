package cache

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"karolbroda.com/ticktock/internal/log"
)

const (
	cacheDirName    = "ticktock"
	lyricsCacheName = "lyrics"
	lrcExt          = ".lrc"
	tmpExt          = ".tmp"
)

var ErrNotCached = errors.New("not cached")

// Entry describes one cached lyric file.
type Entry struct {
	Name      string
	Path      string
	SizeBytes int64
	ModTime   time.Time
}

// Store keeps one .lrc file per song in a single directory. Files are
// trusted as-is once present: there is no expiry or checksum.
type Store struct {
	basePath string
}

// LyricsDir resolves the lyrics directory: override, then
// $XDG_CACHE_HOME/ticktock/lyrics, then ~/.cache/ticktock/lyrics.
func LyricsDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	// xdg cache home takes priority
	xdgCache := os.Getenv("XDG_CACHE_HOME")
	if xdgCache != "" {
		return filepath.Join(xdgCache, cacheDirName, lyricsCacheName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".cache", cacheDirName, lyricsCacheName), nil
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("empty lyrics directory")
	}

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}

	return &Store{basePath: dir}, nil
}

func (s *Store) Dir() string {
	return s.basePath
}

// Path maps a cache file name into the store. Separators are
// percent-escaped so a name can never leave the directory, and distinct names
// never share a file.
func (s *Store) Path(fileName string) string {
	return filepath.Join(s.basePath, diskName(fileName))
}

// Readable reports whether path is a regular file that can be opened.
func (s *Store) Readable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// Save copies r into the named file, replacing it atomically. Failures are
// logged and reported as false.
func (s *Store) Save(r io.Reader, fileName string) bool {
	err := s.write(r, s.Path(fileName))
	if err != nil {
		log.Warn(context.Background(), "failed to save lyrics file",
			zap.String("file", fileName), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) write(r io.Reader, filePath string) error {
	if r == nil {
		return errors.New("nil lyrics stream")
	}

	// write to temp file first, then rename for atomicity
	tmpPath := filePath + tmpExt

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	_, err = io.Copy(file, r)
	if err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	err = file.Sync()
	if err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	err = file.Close()
	if err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, filePath)
}

func (s *Store) Delete(fileName string) error {
	err := os.Remove(s.Path(fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotCached
		}
		return err
	}
	return nil
}

func (s *Store) Clear() (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, lrcExt) || strings.HasSuffix(name, tmpExt) {
			if os.Remove(filepath.Join(s.basePath, name)) == nil {
				removed++
			}
		}
	}

	return removed, nil
}

// Prune removes what interrupted writes leave behind: stray temp files and
// empty lyric files.
func (s *Store) Prune() (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, err
	}

	pruned := 0

	for _, dirEntry := range entries {
		if dirEntry.IsDir() {
			continue
		}

		name := dirEntry.Name()
		filePath := filepath.Join(s.basePath, name)

		if strings.HasSuffix(name, tmpExt) {
			if os.Remove(filePath) == nil {
				pruned++
			}
			continue
		}

		if !strings.HasSuffix(name, lrcExt) {
			continue
		}

		info, err := dirEntry.Info()
		if err != nil {
			continue
		}
		if info.Size() == 0 {
			if os.Remove(filePath) == nil {
				pruned++
			}
		}
	}

	return pruned, nil
}

func (s *Store) Stats() (count int, sizeBytes int64, err error) {
	entries, err := s.List()
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		count++
		sizeBytes += entry.SizeBytes
	}

	return count, sizeBytes, nil
}

// List returns cached lyric files, newest first.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var result []Entry

	for _, dirEntry := range entries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), lrcExt) {
			continue
		}

		info, err := dirEntry.Info()
		if err != nil {
			continue
		}

		result = append(result, Entry{
			Name:      dirEntry.Name(),
			Path:      filepath.Join(s.basePath, dirEntry.Name()),
			SizeBytes: info.Size(),
			ModTime:   info.ModTime(),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ModTime.After(result[j].ModTime)
	})

	return result, nil
}

var diskEscaper = strings.NewReplacer("%", "%25", "/", "%2F", `\`, "%5C")

// diskName escapes fileName for the filesystem. The mapping is one-to-one.
func diskName(fileName string) string {
	name := diskEscaper.Replace(fileName)
	if name == "." || name == ".." {
		name = strings.ReplaceAll(name, ".", "%2E")
	}
	return name
}
