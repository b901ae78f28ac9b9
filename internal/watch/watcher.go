// Package watch re-runs an action when the configuration file or the Gradle
// settings file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/buildlayout/internal/logfields"
)

// Action is invoked after a debounced change.
type Action func(ctx context.Context) error

// Watcher monitors a set of files and runs an Action after they change.
type Watcher struct {
	files        map[string]bool // absolute paths
	action       Action
	watcher      *fsnotify.Watcher
	stopOnce     sync.Once
	stopChan     chan struct{}
	triggerChan  chan struct{}
	debounceTime time.Duration
	wg           sync.WaitGroup
}

// New creates a watcher for files. Missing files are fine; their directory
// is watched so that a later create triggers the action.
func New(action Action, debounce time.Duration, files ...string) (*Watcher, error) {
	if action == nil {
		return nil, fmt.Errorf("watch action cannot be nil")
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		files:        make(map[string]bool, len(files)),
		action:       action,
		watcher:      fw,
		stopChan:     make(chan struct{}),
		triggerChan:  make(chan struct{}, 1),
		debounceTime: debounce,
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to resolve watch path: %w", err)
		}
		w.files[abs] = true
	}
	return w, nil
}

// Start begins monitoring. Directories are watched rather than the files
// themselves so editors that replace files on save are still seen.
func (w *Watcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := w.watcher.Add(d); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", d, err)
		}
	}

	slog.Info("Starting watcher", logfields.Count(len(w.files)))

	w.wg.Add(2)
	go w.watchLoop(ctx)
	go w.triggerLoop(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutines. Calling Stop more than
// once is safe.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		slog.Info("Stopping watcher")
		close(w.stopChan)
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	})
	w.wg.Wait()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !w.files[abs] {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				slog.Debug("Watched file changed", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				w.trigger()
			case event.Has(fsnotify.Remove):
				slog.Warn("Watched file removed", logfields.Path(event.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Watcher error", logfields.Error(err))
		}
	}
}

// triggerLoop collapses bursts of changes into one action call.
func (w *Watcher) triggerLoop(ctx context.Context) {
	defer w.wg.Done()
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.triggerChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounceTime)
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.action(ctx); err != nil {
				slog.Error("Watch action failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) trigger() {
	select {
	case w.triggerChan <- struct{}{}:
	default:
	}
}
