package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"karolbroda.com/ticktock/internal/config"
	"karolbroda.com/ticktock/internal/log"
)

var ErrNotFound = errors.New("lyrics not found")

var (
	httpClient     *http.Client
	httpClientOnce sync.Once
)

type LrclibResponse struct {
	ID           int64   `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// Client fetches LRC text from the lrclib search endpoint.
type Client struct {
	searchURL string
	timeout   time.Duration
	http      *http.Client
}

func NewClient(searchURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = time.Duration(config.HTTPTimeoutSeconds) * time.Second
	}
	return &Client{
		searchURL: searchURL,
		timeout:   timeout,
		http:      getHTTPClient(),
	}
}

func getHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		transport := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   2 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     60 * time.Second,
			TLSHandshakeTimeout: 2 * time.Second,
		}
		httpClient = &http.Client{
			Transport: transport,
		}
	})
	return httpClient
}

// Fetch looks a song up by title and returns the synced lyrics of the
// best match as a stream. extra, when set, narrows the search by artist.
func (c *Client) Fetch(ctx context.Context, title string, extra string) (io.ReadCloser, error) {
	title = normalizeString(title)
	if title == "" {
		return nil, errors.New("track title is empty")
	}
	if c.searchURL == "" {
		return nil, errors.New("lrclib search url is empty")
	}

	parsedURL, err := url.Parse(c.searchURL)
	if err != nil {
		return nil, fmt.Errorf("invalid lrclib url %q: %w", c.searchURL, err)
	}

	query := parsedURL.Query()
	query.Set("track_name", title)
	if artist := normalizeString(extra); artist != "" {
		query.Set("artist_name", artist)
	}
	parsedURL.RawQuery = query.Encode()

	results, err := c.search(ctx, parsedURL.String())
	if err != nil {
		return nil, err
	}

	best := pickSynced(results)
	if best == nil {
		log.Debug(ctx, "lrclib returned no synced lyrics",
			zap.String("title", title), zap.Int("results", len(results)))
		return nil, fmt.Errorf("%w: %s", ErrNotFound, title)
	}

	log.Debug(ctx, "lrclib match",
		zap.Int64("lrclib_id", best.ID),
		zap.String("track", best.TrackName),
		zap.String("artist", best.ArtistName))

	return io.NopCloser(strings.NewReader(best.SyncedLyrics)), nil
}

func (c *Client) search(parentCtx context.Context, requestURL string) ([]LrclibResponse, error) {
	ctx, cancel := context.WithTimeout(parentCtx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build http request: %w", err)
	}

	req.Header.Set("User-Agent", "ticktock/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lrclib request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("lrclib returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload []LrclibResponse
	err = json.NewDecoder(resp.Body).Decode(&payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode lrclib json: %w", err)
	}

	return payload, nil
}

func pickSynced(results []LrclibResponse) *LrclibResponse {
	for i := range results {
		if strings.TrimSpace(results[i].SyncedLyrics) != "" {
			return &results[i]
		}
	}
	return nil
}

// normalizeString collapses whitespace runs so near-identical titles query alike
func normalizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
