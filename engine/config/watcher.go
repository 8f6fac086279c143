package config

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/ximhear/songdo/common"
)

// Watcher serves the active Pipeline snapshot and hot-reloads it when the
// backing TOML file changes on disk. Readers call Current each frame; the
// returned pointer is immutable and reloads swap it atomically, so a frame
// in flight keeps the snapshot it started with.
type Watcher struct {
	path    string
	current atomic.Pointer[Pipeline]

	fsWatch *fsnotify.Watcher

	closeOnce sync.Once
	done      chan struct{}

	// onReload, when set, is invoked with every successfully applied
	// snapshot. Used by the scene to rebuild its LOD selector.
	onReload func(*Pipeline)
}

// NewWatcher loads the file once and starts watching it for changes.
// A file that fails to load or validate on a later change keeps the previous
// snapshot and logs the problem; the initial load must succeed.
//
// Parameters:
//   - path: the TOML file to load and watch
//   - onReload: callback invoked after each applied reload; may be nil
//
// Returns:
//   - *Watcher: the running watcher
//   - error: an error if the initial load or watch registration fails
func NewWatcher(path string, onReload func(*Pipeline)) (*Watcher, error) {
	initial, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: creating watcher: %w", err)
	}
	if err := fsWatch.Add(path); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("config: watching %s: %w", path, err)
	}

	w := &Watcher{
		path:     path,
		fsWatch:  fsWatch,
		done:     make(chan struct{}),
		onReload: onReload,
	}
	w.current.Store(&initial)

	go w.run()
	return w, nil
}

// NewStaticWatcher wraps a fixed snapshot with the Watcher interface shape,
// for callers that configure programmatically instead of from a file.
//
// Parameters:
//   - p: the snapshot to serve
//
// Returns:
//   - *Watcher: a watcher that never reloads
func NewStaticWatcher(p Pipeline) *Watcher {
	w := &Watcher{done: make(chan struct{})}
	w.current.Store(&p)
	return w
}

// Current returns the active snapshot. Never nil.
//
// Returns:
//   - *Pipeline: the immutable active configuration
func (w *Watcher) Current() *Pipeline {
	return w.current.Load()
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		if w.fsWatch != nil {
			w.fsWatch.Close()
		}
	})
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatch.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fsWatch.Errors:
			if !ok {
				return
			}
			common.LogWarn("config: watch error on %s: %v", w.path, err)
		}
	}
}

func (w *Watcher) reload() {
	next, err := Load(w.path)
	if err != nil {
		common.LogWarn("config: reload of %s rejected, keeping previous snapshot: %v", w.path, err)
		return
	}
	w.current.Store(&next)
	common.LogInfo("config: reloaded %s", w.path)
	if w.onReload != nil {
		w.onReload(&next)
	}
}
