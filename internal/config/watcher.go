package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// reloadDebounce absorbs the burst of events many editors and atomic
// renames generate for a single logical save.
const reloadDebounce = 150 * time.Millisecond

// Watcher reloads a bridge host's Config from disk whenever the file
// backing it changes, and calls the configured callback with the
// freshly parsed value.
type Watcher struct {
	path     string
	callback func(*Config)

	fs *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher constructs a Watcher for path. Call Start to begin
// watching; the callback is invoked from the reload debounce timer's
// goroutine.
func NewWatcher(path string, callback func(*Config)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{path: path, callback: callback, fs: fs}, nil
}

// Start begins watching the config file's directory (not the file
// itself, so atomic-rename saves are still observed) until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.fs.Add(dir); err != nil {
		return err
	}
	go w.loop(ctx)
	return nil
}

// Stop releases the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("config: watcher error")
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path, true)
	if err != nil {
		log.WithError(err).Warn("config: failed to reload")
		return
	}
	if w.callback != nil {
		w.callback(cfg)
	}
}

