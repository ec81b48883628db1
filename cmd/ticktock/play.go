package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"karolbroda.com/ticktock/internal/cache"
	"karolbroda.com/ticktock/internal/log"
	"karolbroda.com/ticktock/internal/lyrics"
	"karolbroda.com/ticktock/internal/track"
	"karolbroda.com/ticktock/internal/ui"
)

var (
	// flags for play
	playArtwork string
	playFile    string
)

var playCmd = &cobra.Command{
	Use:   "play [<artist> <title>]",
	Short: "show lyrics for a song on an internal clock",
	Long: `starts the TUI for one song without an mpris player. the lyrics clock starts
when the screen opens.

with --file, title, artist and album are read from the mp3's id3 tags, and
embedded synced lyrics are written to the lyrics cache before anything is
downloaded.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if playFile != "" {
			return cobra.MaximumNArgs(2)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := resolvePlaySong(cmd, args)
		if err != nil {
			return err
		}
		return runTUI(cmd, ui.ModelConfig{Song: song})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVar(&playArtwork, "artwork", "", "cover art url or path")
	playCmd.Flags().StringVar(&playFile, "file", "", "mp3 file to read tags and embedded lyrics from")
}

func resolvePlaySong(cmd *cobra.Command, args []string) (*track.Song, error) {
	var song *track.Song

	if playFile != "" {
		tagged, err := track.FromFile(playFile)
		if err != nil {
			return nil, err
		}
		song = tagged.Song

		if len(args) == 2 {
			song.ArtistName, song.Title = args[0], args[1]
			song.ID = track.IDFor(song.Title, song.ArtistName)
		}
		if !song.IsValid() {
			return nil, errors.New("file has no artist tag, pass <artist> <title>")
		}

		store, err := openStore(loadConfig(cmd))
		if err != nil {
			return nil, err
		}
		seedEmbeddedLyrics(store, song, tagged.Lyrics)
	} else {
		song = track.New(args[0], args[1])
	}

	if playArtwork != "" {
		song.ArtworkURL = playArtwork
	}
	return song, nil
}

// seedEmbeddedLyrics stores lyrics from the file's tags as the song's cache
// entry so no download is needed. Unsynced text and existing entries are
// left alone.
func seedEmbeddedLyrics(store *cache.Store, song *track.Song, text string) bool {
	if strings.TrimSpace(text) == "" || len(lyrics.ParseString(text)) == 0 {
		return false
	}

	fileName := song.LrcFileName()
	if store.Readable(store.Path(fileName)) {
		return false
	}

	if !store.Save(strings.NewReader(text), fileName) {
		return false
	}
	log.L().Info("seeded lyrics from tags", zap.String("lrc", fileName))
	fmt.Printf("using lyrics embedded in %s\n", playFile)
	return true
}
