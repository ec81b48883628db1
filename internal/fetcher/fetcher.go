// Package fetcher returns parsed lyrics for a song. It reads them from the
// local .lrc cache when possible and otherwise downloads, persists and then
// parses them.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"karolbroda.com/ticktock/internal/dispatch"
	"karolbroda.com/ticktock/internal/log"
	"karolbroda.com/ticktock/internal/lyrics"
	"karolbroda.com/ticktock/internal/track"
)

// ErrPersistenceFailed is returned instead of an empty result when strict
// persistence is enabled and downloaded lyrics could not be saved.
var ErrPersistenceFailed = errors.New("lyrics could not be saved")

// Source downloads lyric text. extra is an optional refinement of the
// query and is empty unless artist queries are enabled.
type Source interface {
	Fetch(ctx context.Context, title string, extra string) (io.ReadCloser, error)
}

// Store persists lyric files and maps file names to paths.
type Store interface {
	Path(fileName string) string
	Readable(path string) bool
	Save(r io.Reader, fileName string) bool
}

// Parser turns a lyric file into ordered lines. A missing file must yield
// no lines rather than an error.
type Parser interface {
	ParseFile(path string) ([]lyrics.Line, error)
}

// ParserFunc adapts a plain function to Parser.
type ParserFunc func(path string) ([]lyrics.Line, error)

func (f ParserFunc) ParseFile(path string) ([]lyrics.Line, error) {
	return f(path)
}

// LRCParser is the default Parser.
var LRCParser Parser = ParserFunc(lyrics.ParseFile)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithArtistQuery passes the artist name to the source. Off by default,
// which can match a same-titled song by someone else.
func WithArtistQuery(enabled bool) Option {
	return func(f *Fetcher) { f.queryArtist = enabled }
}

// WithStrictPersistence makes a failed save an error instead of an empty
// result.
func WithStrictPersistence(enabled bool) Option {
	return func(f *Fetcher) { f.strict = enabled }
}

// WithDispatcher sets where FetchAsync delivers OnNext and OnError.
func WithDispatcher(d dispatch.Dispatcher) Option {
	return func(f *Fetcher) {
		if d != nil {
			f.dispatcher = d
		}
	}
}

// WithParser replaces LRCParser.
func WithParser(p Parser) Option {
	return func(f *Fetcher) {
		if p != nil {
			f.parser = p
		}
	}
}

// Fetcher implements the cache-then-download lyrics flow. It is safe for
// concurrent use.
type Fetcher struct {
	source      Source
	store       Store
	parser      Parser
	dispatcher  dispatch.Dispatcher
	queryArtist bool
	strict      bool

	flights  singleflight.Group
	mu       sync.Mutex
	inflight map[string]*flight
}

// flight is the context one shared download runs under. It is cancelled
// once every caller waiting on the download has gone away.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// New returns a Fetcher reading lyrics from source and keeping them in store.
func New(source Source, store Store, opts ...Option) (*Fetcher, error) {
	if source == nil {
		return nil, errors.New("nil lyrics source")
	}
	if store == nil {
		return nil, errors.New("nil lyrics store")
	}

	f := &Fetcher{
		source:     source,
		store:      store,
		parser:     LRCParser,
		dispatcher: dispatch.Immediate,
		inflight:   make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// errNotSaved marks a download that could not be persisted.
var errNotSaved = errors.New("not saved")

// Fetch runs the whole flow once: cache lookup, download and save on a
// miss, then parse. Only source errors and parser errors are returned; a
// failed save yields no lines unless strict persistence is on.
func (f *Fetcher) Fetch(ctx context.Context, song *track.Song) ([]lyrics.Line, error) {
	if song == nil {
		return nil, errors.New("nil song")
	}

	fileName := song.LrcFileName()
	path := f.store.Path(fileName)
	ctx = log.WithFields(ctx, zap.String("lrc", fileName))

	if f.store.Readable(path) {
		log.Debug(ctx, "lyrics cache hit")
	} else {
		err := f.download(ctx, song, fileName)
		if errors.Is(err, errNotSaved) {
			if f.strict {
				return nil, fmt.Errorf("%w: %s", ErrPersistenceFailed, fileName)
			}
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return f.parser.ParseFile(path)
}

// download fetches and saves the song's lyrics. Concurrent downloads of the
// same file share one request and one write. A caller that gives up returns
// its own ctx error; the download keeps going for the callers still waiting.
func (f *Fetcher) download(ctx context.Context, song *track.Song, fileName string) error {
	fl := f.join(ctx, fileName)
	defer f.leave(fileName, fl)

	ch := f.flights.DoChan(fileName, func() (interface{}, error) {
		// an earlier flight may have saved the file since our lookup
		if f.store.Readable(f.store.Path(fileName)) {
			return nil, nil
		}

		extra := ""
		if f.queryArtist {
			extra = song.ArtistName
		}

		log.Debug(fl.ctx, "lyrics cache miss, fetching", zap.String("title", song.Title))

		body, err := f.source.Fetch(fl.ctx, song.Title, extra)
		if err != nil {
			log.Warn(fl.ctx, "lyrics fetch failed", zap.Error(err))
			return nil, fmt.Errorf("fetch lyrics for %q: %w", song.Title, err)
		}
		defer body.Close()

		if !f.store.Save(body, fileName) {
			return nil, errNotSaved
		}
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Debug(ctx, "joined in-flight lyrics download")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// join registers the caller as a waiter on fileName's flight, starting a new
// flight context if there is none.
func (f *Fetcher) join(ctx context.Context, fileName string) *flight {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl, ok := f.inflight[fileName]
	if !ok {
		flightCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &flight{ctx: flightCtx, cancel: cancel}
		f.inflight[fileName] = fl
	}
	fl.waiters++
	return fl
}

// leave drops a waiter. The last one out cancels the flight and makes the
// next caller start a fresh download instead of joining the cancelled one.
func (f *Fetcher) leave(fileName string, fl *flight) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl.waiters--
	if fl.waiters > 0 {
		return
	}
	fl.cancel()
	if f.inflight[fileName] == fl {
		delete(f.inflight, fileName)
		f.flights.Forget(fileName)
	}
}
