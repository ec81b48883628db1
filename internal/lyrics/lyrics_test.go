package lyrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleLine(t *testing.T) {
	lines, err := Parse(strings.NewReader("[00:01.00]Yesterday..."))
	require.NoError(t, err)
	assert.Equal(t, []Line{{TimestampMillis: 1000, Text: "Yesterday..."}}, lines)
}

func TestParseFormats(t *testing.T) {
	raw := "\ufeff[ti:Yesterday]\n" +
		"[ar:Beatles]\n" +
		"[00:12.345]three digit\n" +
		"[01:02]no fraction\n" +
		"[01:00:00.50]with hours\n" +
		"[00:05.00]\n" +
		"plain text without tag\n" +
		"[00:03.10][00:20.00]repeated chorus\n"

	lines, err := Parse(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, []Line{
		{TimestampMillis: 3100, Text: "repeated chorus"},
		{TimestampMillis: 12345, Text: "three digit"},
		{TimestampMillis: 20000, Text: "repeated chorus"},
		{TimestampMillis: 62000, Text: "no fraction"},
		{TimestampMillis: 3600500, Text: "with hours"},
	}, lines)
}

func TestParseOffset(t *testing.T) {
	raw := "[offset:+500]\n[00:01.00]one\n[00:00.20]zero\n"
	lines, err := Parse(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []Line{
		{TimestampMillis: 0, Text: "zero"},
		{TimestampMillis: 500, Text: "one"},
	}, lines)
}

func TestParseEmpty(t *testing.T) {
	lines, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Nil(t, ParseString(""))
}

func TestParseFileMissingIsEmpty(t *testing.T) {
	lines, err := ParseFile(filepath.Join(t.TempDir(), "missing.lrc"))
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = ParseFile("")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Yesterday-Beatles.lrc")
	require.NoError(t, os.WriteFile(path, []byte("[00:01.00]Yesterday...\n[00:04.50]all my troubles\n"), 0644))

	lines, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(4500), lines[1].TimestampMillis)
}

func TestFindCurrentLineIndex(t *testing.T) {
	lines := []Line{{1000, "a"}, {2000, "b"}, {3000, "c"}}

	assert.Equal(t, -1, FindCurrentLineIndex(nil, 5000))
	assert.Equal(t, -1, FindCurrentLineIndex(lines, 999))
	assert.Equal(t, 0, FindCurrentLineIndex(lines, 1000))
	assert.Equal(t, 1, FindCurrentLineIndex(lines, 2999))
	assert.Equal(t, 2, FindCurrentLineIndex(lines, 60000))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:01.00", FormatTimestamp(1000))
	assert.Equal(t, "01:02.35", FormatTimestamp(62350))
	assert.Equal(t, "00:00.00", FormatTimestamp(-5))
}

func TestClientFetchByTitleOnly(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "trackName": "Yesterday", "artistName": "Someone", "syncedLyrics": ""},
			{"id": 2, "trackName": "Yesterday", "artistName": "Beatles", "syncedLyrics": "[00:01.00]Yesterday..."}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	body, err := client.Fetch(context.Background(), "  Yesterday ", "")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "[00:01.00]Yesterday...", string(data))
	assert.Equal(t, []string{"Yesterday"}, gotQuery["track_name"])
	_, hasArtist := gotQuery["artist_name"]
	assert.False(t, hasArtist)
}

func TestClientFetchWithArtist(t *testing.T) {
	var gotArtist string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotArtist = r.URL.Query().Get("artist_name")
		w.Write([]byte(`[{"id": 2, "syncedLyrics": "[00:01.00]x"}]`))
	}))
	defer server.Close()

	body, err := NewClient(server.URL, time.Second).Fetch(context.Background(), "Yesterday", "Beatles")
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, "Beatles", gotArtist)
}

func TestClientFetchNoSyncedLyrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "plainLyrics": "just words"}]`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Fetch(context.Background(), "Yesterday", "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClientFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).Fetch(context.Background(), "Yesterday", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClientFetchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, time.Second).Fetch(context.Background(), "Yesterday", "")
	assert.Error(t, err)
}

func TestClientFetchRejectsEmptyTitle(t *testing.T) {
	_, err := NewClient("http://example.invalid", time.Second).Fetch(context.Background(), "   ", "")
	assert.Error(t, err)
}
