package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"karolbroda.com/ticktock/internal/track"
)

var favoriteCmd = &cobra.Command{
	Use:     "favorite",
	Aliases: []string{"fav"},
	Short:   "manage favorite songs",
	Long:    `add, remove and list favorite songs. the TUI toggles the same list with f.`,
}

var favoriteAddCmd = &cobra.Command{
	Use:   "add <artist> <title>",
	Short: "mark a song as favorite",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		favs, err := openFavorites(loadConfig(cmd))
		if err != nil {
			return err
		}

		song := track.New(args[0], args[1])
		if _, err := favs.Add(song); err != nil {
			return fmt.Errorf("failed to add favorite: %w", err)
		}

		fmt.Printf("♥ %s - %s\n", song.ArtistName, song.Title)
		return nil
	},
}

var favoriteRemoveCmd = &cobra.Command{
	Use:     "remove <artist> <title>",
	Aliases: []string{"rm"},
	Short:   "unmark a favorite song",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		favs, err := openFavorites(loadConfig(cmd))
		if err != nil {
			return err
		}

		song := track.New(args[0], args[1])
		removed, err := favs.Delete(song.ID)
		if err != nil {
			return fmt.Errorf("failed to remove favorite: %w", err)
		}
		if removed == 0 {
			return fmt.Errorf("not a favorite: %s - %s", song.ArtistName, song.Title)
		}

		fmt.Printf("removed %s - %s\n", song.ArtistName, song.Title)
		return nil
	},
}

var favoriteCheckCmd = &cobra.Command{
	Use:   "check <artist> <title>",
	Short: "check whether a song is a favorite",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		favs, err := openFavorites(loadConfig(cmd))
		if err != nil {
			return err
		}

		song := track.New(args[0], args[1])
		ok, err := favs.IsFavorite(song.ID)
		if err != nil {
			return err
		}

		if ok {
			fmt.Println("yes")
		} else {
			fmt.Println("no")
		}
		return nil
	},
}

var favoriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "list favorite songs",
	RunE: func(cmd *cobra.Command, args []string) error {
		favs, err := openFavorites(loadConfig(cmd))
		if err != nil {
			return err
		}

		songs, err := favs.List()
		if err != nil {
			return err
		}
		if len(songs) == 0 {
			fmt.Println("no favorites yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ARTIST\tTITLE\tALBUM")
		for _, s := range songs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.ArtistName, s.Title, s.Album)
		}
		w.Flush()

		fmt.Printf("\ntotal: %d songs (%s)\n", len(songs), favs.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(favoriteCmd)

	favoriteCmd.AddCommand(favoriteAddCmd)
	favoriteCmd.AddCommand(favoriteRemoveCmd)
	favoriteCmd.AddCommand(favoriteCheckCmd)
	favoriteCmd.AddCommand(favoriteListCmd)
}
