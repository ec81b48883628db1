package log

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFieldsAreAttached(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	ctx := WithFields(context.Background(), zap.String("song", "Yesterday"))
	ctx = WithFields(ctx, zap.Int64("id", 7))
	Warn(ctx, "save failed", zap.String("path", "/tmp/x.lrc"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Yesterday", fields["song"])
	assert.Equal(t, int64(7), fields["id"])
	assert.Equal(t, "/tmp/x.lrc", fields["path"])
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ticktock.log")
	require.NoError(t, Init("debug", path))
	t.Cleanup(func() { Set(nil) })

	Info(context.Background(), "hello")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestInitRejectsBadLevel(t *testing.T) {
	assert.Error(t, Init("loud", filepath.Join(t.TempDir(), "x.log")))
}
