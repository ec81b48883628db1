package main

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"karolbroda.com/ticktock/internal/player"
)

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "mpris player utilities",
	Long:  `discover mpris-compatible music players and see what they are playing.`,
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list available mpris players",
	RunE: func(cmd *cobra.Command, args []string) error {
		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		services, err := player.ListPlayers(bus)
		if err != nil {
			return err
		}

		if len(services) == 0 {
			fmt.Println("no mpris players found")
			fmt.Println("\ncheck if your music player is running and supports mpris")
			return nil
		}

		fmt.Printf("found %d mpris player(s):\n\n", len(services))
		for _, service := range services {
			if identity := player.Identity(bus, service); identity != "" {
				fmt.Printf("  %s (%s)\n", service, identity)
			} else {
				fmt.Printf("  %s\n", service)
			}
		}

		fmt.Println("\nuse --mpris-service flag to specify which player to use")
		return nil
	},
}

var playerCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "show currently playing track",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		playerService, err := player.NewService(bus, cfg.MprisService)
		if err != nil {
			return fmt.Errorf("failed to connect to player: %w", err)
		}

		song, err := playerService.CurrentSong()
		if err != nil {
			fmt.Println("no track currently playing")
			return nil
		}

		fmt.Printf("title:    %s\n", song.Title)
		fmt.Printf("artist:   %s\n", song.ArtistName)
		if song.Album != "" {
			fmt.Printf("album:    %s\n", song.Album)
		}
		if song.DurationSecs > 0 {
			fmt.Printf("duration: %s\n", formatDuration(song.DurationSecs))
		}
		if song.ArtworkURL != "" {
			fmt.Printf("artwork:  %s\n", song.ArtworkURL)
		}

		playing, _ := playerService.Playing()
		if !playing {
			fmt.Printf("state:    paused\n")
			return nil
		}
		fmt.Printf("state:    playing\n")
		if pos, err := playerService.CurrentPosition(); err == nil && pos > 0 {
			fmt.Printf("position: %s\n", formatDuration(pos/1000))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playerCmd)

	playerCmd.AddCommand(playerListCmd)
	playerCmd.AddCommand(playerCurrentCmd)
}

func formatDuration(seconds int64) string {
	if seconds < 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
