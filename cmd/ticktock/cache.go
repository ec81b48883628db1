package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"karolbroda.com/ticktock/internal/cache"
	"karolbroda.com/ticktock/internal/track"
)

var (
	// flags for cache clear
	cacheConfirm bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "manage the lyrics cache",
	Long:  `inspect and clean up the cached .lrc files.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(loadConfig(cmd))
		if err != nil {
			return err
		}

		count, sizeBytes, err := store.Stats()
		if err != nil {
			return fmt.Errorf("failed to get cache stats: %w", err)
		}

		fmt.Println("cache statistics:")
		fmt.Printf("  location: %s\n", store.Dir())
		fmt.Printf("  entries:  %d\n", count)
		fmt.Printf("  size:     %s\n", formatBytes(sizeBytes))
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "list cached lyric files",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(loadConfig(cmd))
		if err != nil {
			return err
		}

		entries, err := store.List()
		if err != nil {
			return fmt.Errorf("failed to list cache: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("cache is empty")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tSIZE\tCACHED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, formatBytes(e.SizeBytes), e.ModTime.Format("2006-01-02"))
		}
		w.Flush()

		fmt.Printf("\ntotal: %d files\n", len(entries))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "delete every cached lyric file",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(loadConfig(cmd))
		if err != nil {
			return err
		}

		if !cacheConfirm {
			fmt.Printf("delete all cached lyrics in %s? [y/N]: ", store.Dir())
			var response string
			fmt.Scanln(&response)
			response = strings.ToLower(response)
			if response != "y" && response != "yes" {
				fmt.Println("cancelled")
				return nil
			}
		}

		removed, err := store.Clear()
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Printf("removed %d files\n", removed)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "remove empty and half-written files",
	Long:  `remove leftover temporary files and empty .lrc files, which would otherwise count as cache hits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(loadConfig(cmd))
		if err != nil {
			return err
		}

		pruned, err := store.Prune()
		if err != nil {
			return fmt.Errorf("failed to prune cache: %w", err)
		}

		fmt.Printf("removed %d files\n", pruned)
		return nil
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <artist> <title>",
	Short: "remove one song's lyrics from the cache",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(loadConfig(cmd))
		if err != nil {
			return err
		}

		song := track.New(args[0], args[1])
		err = store.Delete(song.LrcFileName())
		if errors.Is(err, cache.ErrNotCached) {
			return fmt.Errorf("song not found in cache: %s", song.LrcFileName())
		}
		if err != nil {
			return fmt.Errorf("failed to delete from cache: %w", err)
		}

		fmt.Printf("deleted '%s - %s' from cache\n", song.ArtistName, song.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)

	cacheClearCmd.Flags().BoolVar(&cacheConfirm, "confirm", false, "skip confirmation prompt")
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
