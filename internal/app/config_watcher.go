package app

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/config"
	"toolcatalog/internal/infra/telemetry"
)

const defaultReloadDebounce = 200 * time.Millisecond

// ConfigWatcher keeps the latest configuration and reloads it when the file
// changes on disk. Only the log level takes effect without a restart.
type ConfigWatcher struct {
	logger     *zap.Logger
	loader     *config.Loader
	configPath string
	debounce   time.Duration

	current  atomic.Value
	revision atomic.Uint64

	subsMu sync.Mutex
	subs   []func(domain.Config)
}

func NewConfigWatcher(configPath string, loader *config.Loader, initial domain.Config, logger *zap.Logger) *ConfigWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loader == nil {
		loader = config.NewLoader(logger)
	}
	w := &ConfigWatcher{
		logger:     logger.Named("config_watcher"),
		loader:     loader,
		configPath: configPath,
		debounce:   defaultReloadDebounce,
	}
	w.current.Store(initial)
	w.revision.Store(1)
	return w
}

// Current returns the last successfully loaded configuration.
func (w *ConfigWatcher) Current() domain.Config {
	return w.current.Load().(domain.Config)
}

func (w *ConfigWatcher) Revision() uint64 {
	return w.revision.Load()
}

// OnReload registers fn to run after every successful reload.
func (w *ConfigWatcher) OnReload(fn func(domain.Config)) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	w.subs = append(w.subs, fn)
}

// Reload loads the file now. A failed load keeps the previous configuration.
func (w *ConfigWatcher) Reload(ctx context.Context) error {
	cfg, err := w.loader.Load(ctx, w.configPath)
	if err != nil {
		return err
	}
	w.current.Store(cfg)
	rev := w.revision.Add(1)
	w.logger.Info("configuration reloaded",
		telemetry.EventField(telemetry.EventConfigReload),
		zap.String("path", w.configPath),
		zap.Uint64("revision", rev),
	)

	w.subsMu.Lock()
	subs := append([]func(domain.Config){}, w.subs...)
	w.subsMu.Unlock()
	for _, fn := range subs {
		fn(cfg)
	}
	return nil
}

// Run watches the config directory until ctx is done. Bursts of events are
// collapsed into one reload.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("config watcher failed", zap.Error(err))
		return nil
	}
	defer watcher.Close()

	dir := filepath.Dir(w.configPath)
	if err := watcher.Add(dir); err != nil {
		w.logger.Warn("config watcher add failed", zap.String("path", dir), zap.Error(err))
		<-ctx.Done()
		return nil
	}

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				w.logger.Warn("config watcher error", zap.Error(err))
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !shouldReloadForPath(event.Name, w.configPath) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-timerChan(timer):
			timer = nil
			if err := w.Reload(ctx); err != nil {
				w.logger.Warn("config reload failed", zap.Error(err))
			}
		}
	}
}

func shouldReloadForPath(path string, configPath string) bool {
	if path == "" || configPath == "" {
		return false
	}
	return filepath.Clean(path) == filepath.Clean(configPath)
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
