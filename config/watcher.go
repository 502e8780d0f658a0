package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dhamidi/rainbow/pipeline"
)

// FileWatcher reports changes to a settings file. Bursts of file system
// events (editors often write, rename and chmod in one save) collapse into
// one notification after the debounce window.
type FileWatcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	notify    pipeline.Task
	onChange  chan struct{}
	stopCh    chan struct{}
}

func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &FileWatcher{
		fsWatcher: fsw,
		path:      abs,
		debounce:  debounce,
		onChange:  make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}, nil
}

// Start watches the directory of the file, so that the file may be
// replaced or created later.
func (w *FileWatcher) Start() (<-chan struct{}, error) {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}
	go w.run()
	return w.onChange, nil
}

func (w *FileWatcher) Stop() error {
	close(w.stopCh)
	return w.fsWatcher.Close()
}

func (w *FileWatcher) run() {
	defer w.notify.Cancel()
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.affects(event) {
				w.notify.Schedule(w.debounce, w.send)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warningf("watching %s: %s", w.path, err)

		case <-w.stopCh:
			return
		}
	}
}

// send never blocks; a notification still unread covers this one.
func (w *FileWatcher) send(ctx context.Context) {
	select {
	case w.onChange <- struct{}{}:
	case <-ctx.Done():
	default:
	}
}

// affects reports whether event may have changed the contents of the
// watched file. Chmod alone does not.
func (w *FileWatcher) affects(event fsnotify.Event) bool {
	return filepath.Clean(event.Name) == w.path && event.Op != fsnotify.Chmod
}
