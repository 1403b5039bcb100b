package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// alwaysSkipped are directory names that are never watched.
var alwaysSkipped = []string{".git", ".jj", "node_modules"}

const eventBuffer = 128

// Watcher implements ports.Watcher with fsnotify.
type Watcher struct {
	logger ports.Logger

	fs     *fsnotify.Watcher
	root   string
	skip   map[string]struct{}
	events chan ports.WatchEvent
	once   sync.Once
}

// NewWatcher creates a Watcher. Errors reported by the OS during watching go
// to logger.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}
	return &Watcher{
		logger: logger,
		fs:     w,
		events: make(chan ports.WatchEvent, eventBuffer),
	}, nil
}

// Start watches every directory under root except the skipped ones. Entries
// in skip match a directory by base name, or by path when absolute.
func (w *Watcher) Start(ctx context.Context, root string, skip []string) error {
	w.root = filepath.Clean(root)
	w.skip = make(map[string]struct{}, len(alwaysSkipped)+len(skip))
	for _, s := range slices.Concat(alwaysSkipped, skip) {
		w.skip[filepath.Clean(s)] = struct{}{}
	}

	for dir := range w.dirs(root) {
		if err := w.fs.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "path", dir)
		}
	}

	go w.loop(ctx)
	return nil
}

// Stop releases the OS watches and ends the event stream.
func (w *Watcher) Stop() error {
	return w.fs.Close()
}

// Events yields changes until Stop is called or the Start context ends.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for ev := range w.events {
			if !yield(ev) {
				return
			}
		}
	}
}

func (w *Watcher) skipped(path string) bool {
	if _, ok := w.skip[filepath.Base(path)]; ok {
		return true
	}
	_, ok := w.skip[filepath.Clean(path)]
	return ok
}

// dirs yields root and every directory below it that is not skipped.
// Unreadable directories are passed over.
func (w *Watcher) dirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil //nolint:nilerr // skip what cannot be read
			}
			if path != root && w.skipped(path) {
				return fs.SkipDir
			}
			if !yield(path) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.once.Do(func() { close(w.events) })

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			out, ok := convert(ev)
			if !ok || w.skippedFile(out.Path) {
				continue
			}

			select {
			case w.events <- out:
			case <-ctx.Done():
				return
			}

			if out.Operation == ports.OpCreate {
				w.addTree(out.Path)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error(zerr.Wrap(err, domain.ErrWatchFailed.Error()))
		}
	}
}

// skippedFile reports whether path is, or lies inside, a skipped directory
// below the root.
func (w *Watcher) skippedFile(path string) bool {
	for p := filepath.Clean(path); p != w.root; p = filepath.Dir(p) {
		if w.skipped(p) {
			return true
		}
		if filepath.Dir(p) == p {
			return false
		}
	}
	return false
}

// addTree watches a directory created after Start.
func (w *Watcher) addTree(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.skipped(path) {
		return
	}
	for dir := range w.dirs(path) {
		_ = w.fs.Add(dir)
	}
}

func convert(ev fsnotify.Event) (ports.WatchEvent, bool) {
	switch {
	case ev.Has(fsnotify.Write):
		return ports.WatchEvent{Path: ev.Name, Operation: ports.OpWrite}, true
	case ev.Has(fsnotify.Create):
		return ports.WatchEvent{Path: ev.Name, Operation: ports.OpCreate}, true
	case ev.Has(fsnotify.Remove):
		return ports.WatchEvent{Path: ev.Name, Operation: ports.OpRemove}, true
	case ev.Has(fsnotify.Rename):
		return ports.WatchEvent{Path: ev.Name, Operation: ports.OpRename}, true
	default:
		return ports.WatchEvent{}, false
	}
}
