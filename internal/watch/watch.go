// Package watch monitors the local sources of a build (the entry file's
// directory and any injection scripts) and triggers a rebuild callback
// when they change. Rapid change bursts collapse into one rebuild, and
// rebuilds never overlap.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/webcask/webcask/internal/options"
)

const defaultDebounce = 2 * time.Second

// Sources derives what to watch from the build options: the whole entry
// directory for file targets, plus every injection script. URL targets
// with no injection scripts have nothing to watch.
func Sources(opts *options.Options) (dirs, files []string, err error) {
	if opts.TargetKind == options.TargetFile {
		dirs = append(dirs, filepath.Dir(opts.TargetPath))
	}
	files = append(files, opts.Inject...)
	if len(dirs) == 0 && len(files) == 0 {
		return nil, nil, fmt.Errorf("nothing to watch: URL target without injection scripts")
	}
	return dirs, files, nil
}

// Watcher debounces filesystem events into rebuild callbacks.
type Watcher struct {
	dirs  []string
	files map[string]bool

	watcher  *fsnotify.Watcher
	onChange func(ctx context.Context)

	mu       sync.Mutex
	stopped  bool
	stopChan chan struct{}
	trigger  chan struct{}

	// Debounce is how long changes must settle before a rebuild fires.
	Debounce time.Duration
}

// New creates a watcher over the given directories and files. Events for
// anything inside a watched directory count; events elsewhere count only
// when they hit a listed file.
func New(dirs, files []string, onChange func(ctx context.Context)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		onChange: onChange,
		files:    make(map[string]bool, len(files)),
		stopChan: make(chan struct{}),
		trigger:  make(chan struct{}, 1),
		Debounce: defaultDebounce,
	}
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve watch directory: %w", err)
		}
		w.dirs = append(w.dirs, abs)
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve watch file: %w", err)
		}
		w.files[abs] = true
	}
	return w, nil
}

// Start registers the watch points and launches the event loops. It
// returns immediately; callbacks run until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	watchDirs := append([]string(nil), w.dirs...)
	seen := make(map[string]bool, len(watchDirs))
	for _, d := range watchDirs {
		seen[d] = true
	}
	// Watching parent directories is more reliable than watching files
	// directly: editors replace files on save.
	for f := range w.files {
		parent := filepath.Dir(f)
		if !seen[parent] {
			seen[parent] = true
			watchDirs = append(watchDirs, parent)
		}
	}

	for _, d := range watchDirs {
		if err := w.watcher.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	slog.Info("Watching sources for changes", "dirs", len(watchDirs), "files", len(w.files))
	go w.watchLoop(ctx)
	go w.fireLoop(ctx)
	return nil
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.stopChan)
	if err := w.watcher.Close(); err != nil {
		slog.Warn("Error closing file watcher", "error", err)
	}
}

func (w *Watcher) watchLoop(ctx context.Context) {
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
			if !w.relevant(event.Name) {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				slog.Debug("Source change detected", "file", event.Name, "op", event.Op.String())
				w.triggerRebuild()
			case event.Op&fsnotify.Remove != 0:
				slog.Warn("Watched source removed", "file", event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)
		}
	}
}

// relevant reports whether an event path is inside a watched directory or
// names a watched file.
func (w *Watcher) relevant(name string) bool {
	clean := filepath.Clean(name)
	if w.files[clean] {
		return true
	}
	parent := filepath.Dir(clean)
	for _, d := range w.dirs {
		if parent == d {
			return true
		}
	}
	return false
}

func (w *Watcher) triggerRebuild() {
	select {
	case w.trigger <- struct{}{}:
	default:
		// rebuild already pending
	}
}

// fireLoop debounces triggers and runs the callback inline, so one rebuild
// finishes before the next can start.
func (w *Watcher) fireLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return
		case <-w.stopChan:
			stopTimer()
			return
		case <-w.trigger:
			stopTimer()
			timer = time.NewTimer(w.Debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.onChange(ctx)
		}
	}
}
