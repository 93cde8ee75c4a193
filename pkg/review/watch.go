package review

import (
	"context"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
)

// DefaultDebounce is the quiet period after the last change before the
// catalog is rescanned.
const DefaultDebounce = 200 * time.Millisecond

// Event reports a catalog rescan triggered by file changes.
type Event struct {
	Scripts   int
	Changes   int
	Timestamp time.Time
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return fmt.Sprintf("catalog rescanned: %d scripts after %d changes", e.Scripts, e.Changes)
}

// debouncer collapses bursts of changes into one callback.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending int
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// add records a change and (re)arms the timer. fn receives the number of
// changes collapsed into the call.
func (d *debouncer) add(fn func(changes int)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending++
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		n := d.pending
		d.pending = 0
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			fn(n)
		}
	})
}

// stop cancels a pending callback and waits for a running one.
func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Watch rescans the catalog whenever a script or directory under the root
// changes. Events are delivered on the returned channel, which is closed
// when ctx is cancelled. An event is dropped when the previous one has not
// been received yet.
func (c *Catalog) Watch(ctx context.Context, debounce time.Duration) (<-chan Event, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := addTree(w, c.root); err != nil {
		_ = w.Close()
		return nil, err
	}

	events := make(chan Event, 1)
	deb := newDebouncer(debounce)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer deb.stop()
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if !c.relevant(w, ev) {
					continue
				}
				c.logger.Debug("script change", "path", ev.Name, "op", ev.Op.String())
				deb.add(func(changes int) {
					if err := c.Scan(); err != nil {
						c.logger.Error("rescan failed", "error", err)
						return
					}
					select {
					case events <- Event{Scripts: c.Len(), Changes: changes, Timestamp: time.Now()}:
					default:
						// The consumer is behind; the catalog is already current.
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				c.logger.Error("fsnotify error", "error", err)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		c.logger.Error("catalog watcher panic", "error", err)
	}))
	return events, nil
}

// relevant filters events down to script files and directories. New
// directories are added to the watch list.
func (c *Catalog) relevant(w *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(ev.Name)
	if slices.Contains(fs.DefaultSkipDirs, base) {
		return false
	}
	if strings.EqualFold(filepath.Ext(ev.Name), ".ahk") {
		return true
	}
	if ev.Has(fsnotify.Create) {
		if err := addTree(w, ev.Name); err == nil && isDir(ev.Name) {
			return true
		}
	}
	// Removed or renamed directories cannot be stat'ed; rescan for anything
	// without an extension.
	return (ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)) && filepath.Ext(ev.Name) == ""
}

func addTree(w *fsnotify.Watcher, root string) error {
	if !isDir(root) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && slices.Contains(fs.DefaultSkipDirs, d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
