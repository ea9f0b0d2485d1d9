package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/config"
)

func TestConfigWatcher_ReloadNotifiesSubscribers(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log:\n  level: info\n")
	loader := config.NewLoader(zap.NewNop())
	initial, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	watcher := NewConfigWatcher(path, loader, initial, zap.NewNop())
	var got []string
	watcher.OnReload(func(cfg domain.Config) {
		got = append(got, cfg.Log.Level)
	})

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
	require.NoError(t, watcher.Reload(context.Background()))
	require.Equal(t, []string{"debug"}, got)
	require.Equal(t, "debug", watcher.Current().Log.Level)
	require.Equal(t, uint64(2), watcher.Revision())
}

func TestConfigWatcher_FailedReloadKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log:\n  level: warn\n")
	loader := config.NewLoader(nil)
	initial, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	watcher := NewConfigWatcher(path, loader, initial, nil)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: shouting\n"), 0o644))
	require.Error(t, watcher.Reload(context.Background()))
	require.Equal(t, "warn", watcher.Current().Log.Level)
	require.Equal(t, uint64(1), watcher.Revision())
}

func TestConfigWatcher_RunReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log:\n  level: info\n")
	loader := config.NewLoader(nil)
	initial, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	watcher := NewConfigWatcher(path, loader, initial, nil)
	watcher.debounce = 20 * time.Millisecond

	var mu sync.Mutex
	levels := []string{}
	watcher.OnReload(func(cfg domain.Config) {
		mu.Lock()
		defer mu.Unlock()
		levels = append(levels, cfg.Log.Level)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	// Writes before the watch is registered are missed, so keep writing.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("log:\n  level: error\n"), 0o644)
		return watcher.Current().Log.Level == "error"
	}, 3*time.Second, 50*time.Millisecond)

	mu.Lock()
	require.NotEmpty(t, levels)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestShouldReloadForPath(t *testing.T) {
	require.True(t, shouldReloadForPath("/etc/app/./toolcatalog.yaml", "/etc/app/toolcatalog.yaml"))
	require.False(t, shouldReloadForPath("/etc/app/other.yaml", "/etc/app/toolcatalog.yaml"))
	require.False(t, shouldReloadForPath("", filepath.Join("a", "b")))
}
