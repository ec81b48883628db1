package ui

import (
	"image"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/ticktock/internal/colors"
	"karolbroda.com/ticktock/internal/lyrics"
)

type coverMsg struct{ img image.Image }

type coverBackgroundMsg struct{ img image.Image }

type bgColorMsg struct{ color colors.Color }

type viewModeMsg struct{ light bool }

type favoriteMsg struct{ favorite bool }

type lyricsStartMsg struct{}

type lyricsMsg struct{ lines []lyrics.Line }

type lyricsErrMsg struct{ err error }

type Sender interface {
	Send(msg tea.Msg)
}

// Bridge turns presenter view calls into bubbletea messages. Send blocks
// until the program's event loop takes the message, so the presenter must
// deliver from its own goroutine rather than from inside Update.
type Bridge struct {
	mu     sync.RWMutex
	sender Sender
}

func NewBridge() *Bridge {
	return &Bridge{}
}

// Bind starts forwarding to s. Calls made before Bind are dropped.
func (b *Bridge) Bind(s Sender) {
	b.mu.Lock()
	b.sender = s
	b.mu.Unlock()
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.RLock()
	s := b.sender
	b.mu.RUnlock()
	if s != nil {
		s.Send(msg)
	}
}

func (b *Bridge) SetPlayView(cover image.Image)          { b.send(coverMsg{img: cover}) }
func (b *Bridge) SetViewBgColor(c colors.Color)          { b.send(bgColorMsg{color: c}) }
func (b *Bridge) ShowLightViews()                        { b.send(viewModeMsg{light: true}) }
func (b *Bridge) ShowDarkViews()                         { b.send(viewModeMsg{light: false}) }
func (b *Bridge) SetCoverBackground(blurred image.Image) { b.send(coverBackgroundMsg{img: blurred}) }
func (b *Bridge) AddFavoriteSong()                       { b.send(favoriteMsg{favorite: true}) }
func (b *Bridge) DeleteFavoriteSong()                    { b.send(favoriteMsg{favorite: false}) }
func (b *Bridge) IsFavoriteSong(favorite bool)           { b.send(favoriteMsg{favorite: favorite}) }
func (b *Bridge) StartDownloadLrc()                      { b.send(lyricsStartMsg{}) }
func (b *Bridge) DownloadLrcSuccess(lines []lyrics.Line) { b.send(lyricsMsg{lines: lines}) }
func (b *Bridge) DownloadFailed(err error)               { b.send(lyricsErrMsg{err: err}) }
