// Package watch reports debounced changes to localization files below a directory.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonathan/xliff-fixer/internal/ingestion"
)

// DefaultDebounce is the quiet period before a changed file is reported.
const DefaultDebounce = 500 * time.Millisecond

// Event is a settled change to one file.
type Event struct {
	Path string
	Op   string // "create" or "write"
}

// Watcher watches a directory tree with fsnotify and reports matching files once
// writes to them stop for the debounce window. Each path is debounced separately.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	pattern  string
	debounce time.Duration
	onChange func(Event)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a Watcher for root. Files are reported when their path relative to
// root matches pattern (ingestion.DefaultPattern when empty) and they are not
// repair outputs.
func New(root, pattern string, debounce time.Duration, onChange func(Event)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		fs:       fw,
		root:     root,
		pattern:  pattern,
		debounce: debounce,
		onChange: onChange,
		timers:   make(map[string]*time.Timer),
	}
	if err := w.addRecursive(root, nil); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// addRecursive watches dir and its subdirectories. onFile, when set, receives every
// regular file found on the way.
func (w *Watcher) addRecursive(dir string, onFile func(path string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if d.IsDir() {
			if err := w.fs.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if onFile != nil && d.Type().IsRegular() {
			onFile(path)
		}
		return nil
	})
}

// Run processes events until ctx is cancelled. It closes the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	var op string
	switch {
	case event.Op.Has(fsnotify.Create):
		op = "create"
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// A directory moved or copied in arrives with its files already written.
			_ = w.addRecursive(event.Name, func(path string) {
				if w.accept(path) {
					w.schedule(Event{Path: path, Op: "create"})
				}
			})
			return
		}
	case event.Op.Has(fsnotify.Write):
		op = "write"
	default:
		return
	}

	if !w.accept(event.Name) {
		return
	}
	w.schedule(Event{Path: event.Name, Op: op})
}

func (w *Watcher) accept(path string) bool {
	if ingestion.IsFixedOutput(path) {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return ingestion.MatchPattern(w.pattern, rel)
}

func (w *Watcher) schedule(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[ev.Path]; ok {
		t.Stop()
	}
	w.timers[ev.Path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, ev.Path)
		w.mu.Unlock()
		if w.onChange != nil {
			w.onChange(ev)
		}
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	_ = w.fs.Close()
}
