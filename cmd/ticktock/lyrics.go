package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"karolbroda.com/ticktock/internal/lyrics"
	"karolbroda.com/ticktock/internal/track"
)

var (
	// flags for lyrics prefetch
	prefetchJobs int
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "fetch and inspect lyrics",
	Long:  `download lyrics into the cache, print them, or prefetch a whole list of songs.`,
}

var lyricsFetchCmd = &cobra.Command{
	Use:   "fetch <artist> <title>",
	Short: "download lyrics into the cache",
	Long:  `make sure the song's .lrc file is cached, downloading it if needed.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		song := track.New(args[0], args[1])
		lines, err := a.fetcher.Fetch(cmd.Context(), song)
		if err != nil {
			return fmt.Errorf("lyrics not found: %w", err)
		}
		if len(lines) == 0 {
			return errors.New("no synced lyrics available")
		}

		fmt.Printf("cached %d lines for %s - %s\n", len(lines), song.ArtistName, song.Title)
		fmt.Printf("  file: %s\n", a.store.Path(song.LrcFileName()))
		return nil
	},
}

var lyricsShowCmd = &cobra.Command{
	Use:   "show <artist> <title>",
	Short: "print synced lyrics",
	Long:  `print the song's lyrics with timestamps, downloading them first if they are not cached.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		lines, err := a.fetcher.Fetch(cmd.Context(), track.New(args[0], args[1]))
		if err != nil {
			return fmt.Errorf("lyrics not found: %w", err)
		}
		if len(lines) == 0 {
			fmt.Println("no synced lyrics available")
			return nil
		}

		for _, line := range lines {
			fmt.Printf("[%s] %s\n", lyrics.FormatTimestamp(line.TimestampMillis), line.Text)
		}
		return nil
	},
}

var lyricsPrefetchCmd = &cobra.Command{
	Use:   "prefetch <list-file>",
	Short: "cache lyrics for many songs",
	Long: `read "artist - title" lines from a file (or - for stdin) and cache lyrics for
each. blank lines and lines starting with # are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		songs, err := readSongList(args[0])
		if err != nil {
			return err
		}
		if len(songs) == 0 {
			fmt.Println("no songs to prefetch")
			return nil
		}

		var found, missing atomic.Int32
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(max(1, prefetchJobs))

		for _, song := range songs {
			song := song
			g.Go(func() error {
				lines, err := a.fetcher.Fetch(ctx, song)
				switch {
				case errors.Is(err, lyrics.ErrNotFound):
					missing.Add(1)
					fmt.Printf("  -  %s - %s: not found\n", song.ArtistName, song.Title)
					return nil
				case err != nil:
					return fmt.Errorf("%s - %s: %w", song.ArtistName, song.Title, err)
				case len(lines) == 0:
					missing.Add(1)
					fmt.Printf("  -  %s - %s: not saved\n", song.ArtistName, song.Title)
					return nil
				}
				found.Add(1)
				fmt.Printf("  ✓  %s - %s (%d lines)\n", song.ArtistName, song.Title, len(lines))
				return nil
			})
		}

		err = g.Wait()
		fmt.Printf("\ncached: %d, missing: %d, total: %d\n", found.Load(), missing.Load(), len(songs))
		return err
	},
}

func init() {
	rootCmd.AddCommand(lyricsCmd)

	lyricsCmd.AddCommand(lyricsFetchCmd)
	lyricsCmd.AddCommand(lyricsShowCmd)
	lyricsCmd.AddCommand(lyricsPrefetchCmd)

	lyricsPrefetchCmd.Flags().IntVarP(&prefetchJobs, "jobs", "j", 4, "concurrent downloads")
}

func readSongList(path string) ([]*track.Song, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open song list: %w", err)
		}
		defer f.Close()
	}

	var songs []*track.Song
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		song, ok, err := parseSongLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, n, err)
		}
		if ok {
			songs = append(songs, song)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read song list: %w", err)
	}
	return songs, nil
}

// parseSongLine reads "artist - title". ok is false for blank and comment
// lines.
func parseSongLine(line string) (*track.Song, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, false, nil
	}

	artist, title, found := strings.Cut(line, " - ")
	artist, title = strings.TrimSpace(artist), strings.TrimSpace(title)
	if !found || artist == "" || title == "" {
		return nil, false, fmt.Errorf("expected \"artist - title\", got %q", line)
	}
	return track.New(artist, title), true, nil
}
