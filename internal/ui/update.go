package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"karolbroda.com/ticktock/internal/log"
	"karolbroda.com/ticktock/internal/player"
	"karolbroda.com/ticktock/internal/track"
)

var errNoLyrics = errors.New("no synced lyrics available")

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		return m.handleTick()

	case playerEventMsg:
		return m.handlePlayerEvent(msg.event)

	case songMsg:
		m.changeSong(msg.song)
		return m, nil

	case coverMsg:
		m.cover = msg.img
		return m, nil

	case coverBackgroundMsg:
		m.background = msg.img
		return m, nil

	case bgColorMsg:
		m.theme = ThemeFor(msg.color, m.theme.Light)
		return m, nil

	case viewModeMsg:
		m.theme = ThemeFor(m.theme.Background, msg.light)
		return m, nil

	case favoriteMsg:
		m.favorite = msg.favorite
		return m, nil

	case lyricsStartMsg:
		m.loading = true
		m.err = nil
		return m, nil

	case lyricsMsg:
		m.loading = false
		m.lines = msg.lines
		m.index = -1
		if len(msg.lines) == 0 {
			m.err = errNoLyrics
			return m, nil
		}
		m.err = nil
		m.updateLyricIndex()
		return m, nil

	case lyricsErrMsg:
		m.loading = false
		m.lines = nil
		m.index = -1
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		if m.player != nil {
			m.player.Stop()
		}
		return m, tea.Quit

	case "f":
		m.toggleFavorite()
		return m, nil

	case "up", "k", "+", "=":
		m.shiftOffset(0.1)
	case "down", "j", "-":
		m.shiftOffset(-0.1)
	case "right", "l":
		m.shiftOffset(0.5)
	case "left", "h":
		m.shiftOffset(-0.5)
	case "0":
		m.syncOffset = 0
		m.updateLyricIndex()

	case "tab", "i":
		m.hideHeader = !m.hideHeader
	}

	return m, nil
}

func (m *Model) shiftOffset(seconds float64) {
	m.syncOffset += seconds
	m.updateLyricIndex()
}

// toggleFavorite asks the presenter to flip the favorite state. The screen
// only changes once the presenter confirms.
func (m *Model) toggleFavorite() {
	if m.ctrl == nil || !m.song.IsValid() {
		return
	}
	if m.favorite {
		m.ctrl.DeleteFavoriteSong(m.song.ID)
		return
	}
	m.ctrl.AddFavoriteSong(m.song)
}

func (m Model) handlePlayerEvent(event player.EventData) (tea.Model, tea.Cmd) {
	next := m.listenForPlayerEvents()

	switch event.Type {
	case player.EventTrackChanged:
		m.changeSong(event.Song)
		m.positionMs = event.PositionMillis
	case player.EventSeeked:
		m.positionMs = event.PositionMillis
		if m.updateLyricIndex() {
			m.anim.Reset()
		}
	}

	return m, next
}

func (m *Model) changeSong(song *track.Song) {
	if m.song != nil && song.IsSameTrack(m.song) && m.lines != nil {
		return
	}

	m.resetForSong(song)
	if !song.IsValid() {
		m.err = errors.New("no track playing")
		return
	}

	log.L().Info("track changed", zap.String("title", song.Title), zap.String("artist", song.ArtistName))

	if m.ctrl == nil {
		return
	}
	m.ctrl.LoadLrc(song)
	if song.ArtworkURL != "" {
		m.ctrl.SetCoverImgURL(song.ArtworkURL)
	}
	m.ctrl.IsFavoriteSong(song.ID)
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.player != nil {
		if err := m.player.Poll(); err != nil {
			log.L().Debug("player poll failed", zap.Error(err))
		}
	}

	m.positionMs = m.position()
	changed := m.updateLyricIndex()
	m.anim.Update(changed, 8)

	return m, tickCmd()
}
