package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"karolbroda.com/ticktock/internal/cache"
	"karolbroda.com/ticktock/internal/config"
	"karolbroda.com/ticktock/internal/favorites"
	"karolbroda.com/ticktock/internal/fetcher"
	"karolbroda.com/ticktock/internal/log"
	"karolbroda.com/ticktock/internal/lyrics"
)

var (
	// global flags
	mprisService string
	syncOffset   float64
	hideHeader   bool
	lrclibURL    string
	lyricsDir    string
	queryArtist  bool
	strict       bool
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "ticktock",
	Short: "synced lyrics for whatever is playing",
	Long: `ticktock shows synchronized lyrics for the song your music player is playing.
lyrics are downloaded from lrclib once and kept as .lrc files; the screen is
themed from the album artwork.

when run without a subcommand, it follows an mpris player in the TUI.`,
	Version: "1.0.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runViewer(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&mprisService, "mpris-service", "m", "", "mpris service name (e.g., org.mpris.MediaPlayer2.spotify)")
	rootCmd.PersistentFlags().Float64VarP(&syncOffset, "sync-offset", "s", 0, "initial sync offset in seconds")
	rootCmd.PersistentFlags().BoolVarP(&hideHeader, "hide-header", "H", false, "hide header section")
	rootCmd.PersistentFlags().StringVar(&lrclibURL, "lrclib-url", "", "custom lrclib search url")
	rootCmd.PersistentFlags().StringVar(&lyricsDir, "lyrics-dir", "", "directory holding .lrc files")
	rootCmd.PersistentFlags().BoolVar(&queryArtist, "query-artist", false, "send the artist along with the title when searching")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "fail when downloaded lyrics cannot be saved")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func Execute() {
	defer log.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds what every command needs, built from config with flags on top.
type app struct {
	cfg     *config.Config
	store   *cache.Store
	fetcher *fetcher.Fetcher
}

func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()

	flags := cmd.Flags()
	if mprisService != "" {
		cfg.MprisService = mprisService
	}
	if lrclibURL != "" {
		cfg.LrclibURL = lrclibURL
	}
	if lyricsDir != "" {
		cfg.LyricsDir = lyricsDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("sync-offset") {
		cfg.SyncOffset = syncOffset
	}
	if flags.Changed("hide-header") {
		cfg.HideHeader = hideHeader
	}
	if flags.Changed("query-artist") {
		cfg.QueryArtist = queryArtist
	}
	if flags.Changed("strict") {
		cfg.StrictPersistence = strict
	}
	return cfg
}

func newApp(cmd *cobra.Command, opts ...fetcher.Option) (*app, error) {
	cfg := loadConfig(cmd)

	if err := log.Init(cfg.LogLevel, cfg.LogPath); err != nil {
		return nil, err
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	client := lyrics.NewClient(cfg.LrclibURL, cfg.HTTPTimeout)
	opts = append([]fetcher.Option{
		fetcher.WithArtistQuery(cfg.QueryArtist),
		fetcher.WithStrictPersistence(cfg.StrictPersistence),
	}, opts...)

	f, err := fetcher.New(client, store, opts...)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, store: store, fetcher: f}, nil
}

func openStore(cfg *config.Config) (*cache.Store, error) {
	dir, err := cache.LyricsDir(cfg.LyricsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lyrics dir: %w", err)
	}
	store, err := cache.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open lyrics dir: %w", err)
	}
	return store, nil
}

func openFavorites(cfg *config.Config) (*favorites.Store, error) {
	store, err := favorites.Open(favorites.DataDir(cfg.DataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to open favorites: %w", err)
	}
	return store, nil
}
