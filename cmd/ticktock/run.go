package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"karolbroda.com/ticktock/internal/artwork"
	"karolbroda.com/ticktock/internal/colors"
	"karolbroda.com/ticktock/internal/config"
	"karolbroda.com/ticktock/internal/dispatch"
	"karolbroda.com/ticktock/internal/fetcher"
	"karolbroda.com/ticktock/internal/log"
	"karolbroda.com/ticktock/internal/player"
	"karolbroda.com/ticktock/internal/presenter"
	"karolbroda.com/ticktock/internal/terminal"
	"karolbroda.com/ticktock/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "follow an mpris player and show its lyrics",
	Long:  `starts the TUI and shows synchronized lyrics for whatever the mpris player is playing.`,
	RunE:  runViewer,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runViewer(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	bus, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer bus.Close()

	playerService, err := player.NewService(bus, cfg.MprisService)
	if err != nil {
		return fmt.Errorf("failed to create player service: %w", err)
	}
	if err := playerService.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not set up dbus signals: %v\n", err)
	}
	defer playerService.Stop()

	return runTUI(cmd, ui.ModelConfig{Player: playerService})
}

// runTUI wires the presenter to the screen and blocks until the user quits.
func runTUI(cmd *cobra.Command, mc ui.ModelConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()
	defer terminal.Reset()

	// every view call goes through this one goroutine, never through the
	// bubbletea event loop itself
	mainLoop := dispatch.NewSerial()
	defer mainLoop.Close()

	a, err := newApp(cmd, fetcher.WithDispatcher(mainLoop))
	if err != nil {
		return err
	}
	cfg := a.cfg

	favs, err := openFavorites(cfg)
	if err != nil {
		return err
	}

	themeColor, err := colors.ParseHex(cfg.ThemeColor)
	if err != nil {
		log.L().Warn("bad theme color, using default", zap.String("color", cfg.ThemeColor), zap.Error(err))
		themeColor = colors.MustParseHex(config.DefaultThemeColor)
	}

	p, err := presenter.New(a.fetcher, favs, artwork.NewLoader(themeColor), mainLoop)
	if err != nil {
		return err
	}

	bridge := ui.NewBridge()
	p.Attach(bridge)
	defer p.Detach()

	mc.Controller = p
	mc.SyncOffset = cfg.SyncOffset
	mc.HideHeader = cfg.HideHeader
	mc.ThemeColor = themeColor

	program := tea.NewProgram(
		ui.NewModel(mc),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	bridge.Bind(program)

	log.L().Info("tui started", zap.String("lyrics_dir", a.store.Dir()))

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running bubble tea: %w", err)
	}
	return nil
}

var (
	_ ui.Controller  = (*presenter.PlayPresenter)(nil)
	_ presenter.View = (*ui.Bridge)(nil)
)
