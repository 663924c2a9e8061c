package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDelay coalesces the burst of events an editor produces on save.
const reloadDelay = 250 * time.Millisecond

// Watcher reloads the configuration when its YAML overlay changes and hands
// each valid result to the registered callbacks. It only watches in
// development with a CONFIG_FILE; otherwise it is inert.
type Watcher struct {
	path   string
	logger *zap.Logger
	fs     *fsnotify.Watcher

	mu        sync.Mutex
	callbacks []func(*Config)
	current   *Config

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts watching initial.File when initial is a development
// configuration.
func NewWatcher(initial *Config, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{path: initial.File, logger: logger, current: initial, done: make(chan struct{})}
	if !initial.IsDevelopment() || initial.File == "" {
		logger.Info("configuration hot reload disabled", zap.String("environment", string(initial.Environment)))
		return w, nil
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Editors often replace the file, so the directory is watched.
	if err := fs.Add(filepath.Dir(initial.File)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", initial.File, err)
	}
	w.fs = fs
	w.path = filepath.Clean(initial.File)

	w.wg.Add(1)
	go w.loop()
	logger.Info("configuration hot reload enabled", zap.String("file", w.path))
	return w, nil
}

// OnChange registers fn to run with every successfully reloaded configuration.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Current returns the most recent valid configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close stops watching. It is safe on an inert watcher.
func (w *Watcher) Close() error {
	if w.fs == nil {
		return nil
	}
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, w.reload)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("configuration watcher error", zap.Error(err))
		}
	}
}

// reload keeps the previous configuration when the new one does not load.
func (w *Watcher) reload() {
	cfg, err := Load()
	if err != nil {
		w.logger.Warn("configuration reload rejected", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = cfg
	callbacks := append([]func(*Config){}, w.callbacks...)
	w.mu.Unlock()

	w.logger.Info("configuration reloaded", zap.String("file", w.path))
	for _, fn := range callbacks {
		fn(cfg)
	}
}
