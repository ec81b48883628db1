// Package presenter drives the now-playing screen: cover art and the
// colors derived from it, favorite state and synced lyrics.
package presenter

import (
	"context"
	"errors"
	"image"
	"sync"

	"go.uber.org/zap"

	"karolbroda.com/ticktock/internal/colors"
	"karolbroda.com/ticktock/internal/dispatch"
	"karolbroda.com/ticktock/internal/favorites"
	"karolbroda.com/ticktock/internal/fetcher"
	"karolbroda.com/ticktock/internal/log"
	"karolbroda.com/ticktock/internal/lyrics"
	"karolbroda.com/ticktock/internal/track"
)

// View is the screen the presenter talks to. Every call arrives through the
// presenter's dispatcher, never concurrently with another.
type View interface {
	SetPlayView(cover image.Image)
	SetViewBgColor(c colors.Color)
	ShowLightViews()
	ShowDarkViews()
	SetCoverBackground(blurred image.Image)

	AddFavoriteSong()
	DeleteFavoriteSong()
	IsFavoriteSong(favorite bool)

	StartDownloadLrc()
	DownloadLrcSuccess(lines []lyrics.Line)
	DownloadFailed(err error)
}

type LyricsLoader interface {
	FetchAsync(ctx context.Context, song *track.Song, obs fetcher.Observer) *fetcher.Task
}

type Favorites interface {
	Add(song *track.Song) (int64, error)
	Delete(id int64) (int64, error)
	IsFavorite(id int64) (bool, error)
}

type CoverLoader interface {
	Load(ctx context.Context, url string) (image.Image, error)
	MainColor(img image.Image) colors.Color
	Blur(img image.Image) image.Image
}

type PlayPresenter struct {
	lyrics     LyricsLoader
	favorites  Favorites
	covers     CoverLoader
	dispatcher dispatch.Dispatcher
	colorCache *colors.Cache

	mu          sync.Mutex
	view        View
	ctx         context.Context
	cancel      context.CancelFunc
	lrcTask     *fetcher.Task
	coverCancel context.CancelFunc
	wg          sync.WaitGroup
}

func New(lyricsLoader LyricsLoader, favs Favorites, covers CoverLoader, d dispatch.Dispatcher) (*PlayPresenter, error) {
	if lyricsLoader == nil || favs == nil || covers == nil {
		return nil, errors.New("presenter needs a lyrics loader, favorites and a cover loader")
	}
	if d == nil {
		d = dispatch.Immediate
	}

	return &PlayPresenter{
		lyrics:     lyricsLoader,
		favorites:  favs,
		covers:     covers,
		dispatcher: d,
		colorCache: colors.NewCache(),
	}, nil
}

// Attach binds a view. Attaching while another view is attached detaches
// the old one first.
func (p *PlayPresenter) Attach(v View) {
	p.Detach()

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.view = v
	p.ctx = ctx
	p.cancel = cancel
	p.mu.Unlock()
}

// Detach drops the view and cancels everything in flight. Results that
// arrive afterwards are discarded.
func (p *PlayPresenter) Detach() {
	p.mu.Lock()
	ctx := p.ctx
	cancel := p.cancel
	task := p.lrcTask
	p.ctx = nil
	p.view = nil
	p.cancel = nil
	p.lrcTask = nil
	p.coverCancel = nil
	p.mu.Unlock()

	if task != nil {
		task.Cancel()
	}
	if cancel != nil {
		cancel()
		log.Debug(ctx, "view detached", zap.Int("cached_colors", p.colorCache.Len()))
	}
}

// Wait blocks until background work started so far has been delivered.
func (p *PlayPresenter) Wait() {
	p.wg.Wait()
}

// attached returns the view and the attachment's context, or nil when
// detached.
func (p *PlayPresenter) attached() (View, context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view, p.ctx
}

// deliver runs fn with the view on the dispatcher, if ctx is still live
// and a view is still attached by then.
func (p *PlayPresenter) deliver(ctx context.Context, fn func(v View)) {
	p.dispatcher.Dispatch(func() {
		if ctx.Err() != nil {
			return
		}
		v, _ := p.attached()
		if v == nil {
			return
		}
		fn(v)
	})
}

func (p *PlayPresenter) background(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fn()
	}()
}

// SetCoverImgURL loads the cover, shows it, themes the screen from its main
// color and sets a blurred copy as the background. A newer call supersedes
// an older one that is still loading.
func (p *PlayPresenter) SetCoverImgURL(url string) {
	v, parent := p.attached()
	if v == nil {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	p.mu.Lock()
	prev := p.coverCancel
	p.coverCancel = cancel
	p.mu.Unlock()
	if prev != nil {
		prev()
	}

	ctx = log.WithFields(ctx, zap.String("cover", url))

	p.background(func() {
		img, err := p.covers.Load(ctx, url)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn(ctx, "cover load failed", zap.Error(err))
			}
			return
		}

		color, cached := p.colorCache.Get(url)
		if !cached {
			color = p.colorCache.Put(url, p.covers.MainColor(img))
		}
		blurred := p.covers.Blur(img)

		p.deliver(ctx, func(v View) {
			v.SetPlayView(img)
			v.SetViewBgColor(color)
			if colors.IsDark(color) {
				v.ShowLightViews()
			} else {
				v.ShowDarkViews()
			}
			v.SetCoverBackground(blurred)
		})
	})
}

func (p *PlayPresenter) AddFavoriteSong(song *track.Song) {
	_, ctx := p.attached()
	if ctx == nil {
		return
	}

	p.background(func() {
		id, err := p.favorites.Add(song)
		if err != nil || id == favorites.InvalidID {
			log.Warn(ctx, "add favorite failed", zap.Int64("id", id), zap.Error(err))
			return
		}
		log.Debug(ctx, "favorite added", zap.Int64("id", id))
		p.deliver(ctx, func(v View) { v.AddFavoriteSong() })
	})
}

func (p *PlayPresenter) DeleteFavoriteSong(id int64) {
	_, ctx := p.attached()
	if ctx == nil {
		return
	}

	p.background(func() {
		n, err := p.favorites.Delete(id)
		if err != nil {
			log.Warn(ctx, "delete favorite failed", zap.Int64("id", id), zap.Error(err))
			return
		}
		log.Debug(ctx, "favorite deleted", zap.Int64("id", id), zap.Int64("removed", n))
		p.deliver(ctx, func(v View) { v.DeleteFavoriteSong() })
	})
}

func (p *PlayPresenter) IsFavoriteSong(id int64) {
	_, ctx := p.attached()
	if ctx == nil {
		return
	}

	p.background(func() {
		fav, err := p.favorites.IsFavorite(id)
		if err != nil {
			log.Warn(ctx, "favorite lookup failed", zap.Int64("id", id), zap.Error(err))
			return
		}
		p.deliver(ctx, func(v View) { v.IsFavoriteSong(fav) })
	})
}

// LoadLrc fetches lyrics for song. A previous load that has not finished is
// cancelled and will not notify the view.
func (p *PlayPresenter) LoadLrc(song *track.Song) {
	v, ctx := p.attached()
	if v == nil {
		return
	}

	p.mu.Lock()
	prev := p.lrcTask
	p.lrcTask = nil
	p.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}

	obs := fetcher.Callbacks{
		// OnStart runs on the caller's goroutine, so it is dispatched too
		Start: func() {
			p.deliver(ctx, func(v View) { v.StartDownloadLrc() })
		},
		Next: func(lines []lyrics.Line) {
			if v, _ := p.attached(); v != nil {
				v.DownloadLrcSuccess(lines)
			}
		},
		Error: func(err error) {
			if v, _ := p.attached(); v != nil {
				v.DownloadFailed(err)
			}
		},
	}

	task := p.lyrics.FetchAsync(ctx, song, obs)

	p.mu.Lock()
	p.lrcTask = task
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		<-task.Done()
	}()
}
