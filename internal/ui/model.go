package ui

import (
	"image"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/ticktock/internal/colors"
	"karolbroda.com/ticktock/internal/config"
	"karolbroda.com/ticktock/internal/lyrics"
	"karolbroda.com/ticktock/internal/player"
	"karolbroda.com/ticktock/internal/track"
)

// Controller is what the screen asks of its presenter. Calls must not
// block.
type Controller interface {
	LoadLrc(song *track.Song)
	SetCoverImgURL(url string)
	IsFavoriteSong(id int64)
	AddFavoriteSong(song *track.Song)
	DeleteFavoriteSong(id int64)
}

type tickMsg time.Time

type playerEventMsg struct {
	event player.EventData
}

type songMsg struct {
	song *track.Song
}

type Model struct {
	ctrl   Controller
	player *player.Service
	now    func() time.Time

	song       *track.Song
	startedAt  time.Time
	positionMs int64
	lines      []lyrics.Line
	index      int
	loading    bool
	err        error
	favorite   bool

	cover      image.Image
	background image.Image
	theme      Theme
	fallback   colors.Color

	syncOffset float64
	hideHeader bool
	quitting   bool
	width      int
	height     int
	spinner    spinner.Model
	anim       AnimState
}

type ModelConfig struct {
	Controller Controller
	// Player follows an MPRIS player. Without one, Song plays on an
	// internal clock that starts when the screen opens.
	Player     *player.Service
	Song       *track.Song
	SyncOffset float64
	HideHeader bool
	ThemeColor colors.Color
}

func NewModel(cfg ModelConfig) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctrl:       cfg.Controller,
		player:     cfg.Player,
		now:        time.Now,
		song:       cfg.Song,
		index:      -1,
		theme:      DefaultTheme(cfg.ThemeColor),
		fallback:   cfg.ThemeColor,
		syncOffset: cfg.SyncOffset,
		hideHeader: cfg.HideHeader,
		spinner:    sp,
	}
	m.anim.Reset()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), m.spinner.Tick, m.listenForPlayerEvents()}
	if m.song != nil {
		song := m.song
		cmds = append(cmds, func() tea.Msg { return songMsg{song: song} })
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(config.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) listenForPlayerEvents() tea.Cmd {
	if m.player == nil {
		return nil
	}

	events := m.player.Events()
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return playerEventMsg{event: event}
	}
}

// position is the playback position used to pick the current line.
func (m Model) position() int64 {
	now := m.now()
	if m.player != nil {
		return m.player.State().Position(now)
	}
	if m.startedAt.IsZero() {
		return 0
	}
	return now.Sub(m.startedAt).Milliseconds()
}

func (m *Model) updateLyricIndex() bool {
	if len(m.lines) == 0 {
		return false
	}

	adjusted := m.positionMs + int64(m.syncOffset*1000)
	idx := lyrics.FindCurrentLineIndex(m.lines, adjusted)
	if idx == m.index {
		return false
	}
	m.index = idx
	return true
}

func (m *Model) resetForSong(song *track.Song) {
	m.song = song
	m.startedAt = m.now()
	m.positionMs = 0
	m.lines = nil
	m.index = -1
	m.err = nil
	m.loading = false
	m.favorite = false
	m.cover = nil
	m.background = nil
	m.theme = DefaultTheme(m.fallback)
	m.anim.Reset()
}

func (m Model) Song() *track.Song    { return m.song }
func (m Model) Lines() []lyrics.Line { return m.lines }
func (m Model) CurrentIndex() int    { return m.index }
func (m Model) SyncOffset() float64  { return m.syncOffset }
func (m Model) IsFavorite() bool     { return m.favorite }
func (m Model) IsLoading() bool      { return m.loading }
func (m Model) Err() error           { return m.err }
func (m Model) Theme() Theme         { return m.theme }
func (m Model) Cover() image.Image   { return m.cover }
func (m Model) IsQuitting() bool     { return m.quitting }
