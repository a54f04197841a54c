package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a path must stay quiet before its edit is
// reported. Editors tend to write a file in several bursts.
const settleDelay = 75 * time.Millisecond

const reloadOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Watcher reports settled edits to level and script files so a running
// viewer can rebuild its scene. Both channels are closed after Close.
type Watcher struct {
	fs     *fsnotify.Watcher
	Events chan string
	Errors chan error

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// WatchLevels watches the level and script directories under DiskRoot.
func WatchLevels() (*Watcher, error) {
	return NewWatcher(filepath.Join(DiskRoot, "levels"), filepath.Join(DiskRoot, "scripts"))
}

// NewWatcher watches dirs for changes to .yaml and .tengo files.
func NewWatcher(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:     fw,
		Events: make(chan string, 16),
		Errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}

// Poll drains pending edits and errors without blocking. open turns false
// once the watcher has shut down and both channels are closed to the caller.
func (w *Watcher) Poll() (changed []string, errs []error, open bool) {
	if w == nil {
		return nil, nil, false
	}
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return changed, errs, false
			}
			changed = append(changed, name)
		case err, ok := <-w.Errors:
			if !ok {
				return changed, errs, false
			}
			errs = append(errs, err)
		default:
			return changed, errs, true
		}
	}
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	defer close(w.Errors)
	defer close(w.Events)

	pending := make(map[string]time.Time)
	tick := time.NewTicker(settleDelay / 3)
	defer tick.Stop()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&reloadOps == 0 || !watchedFile(ev.Name) {
				continue
			}
			pending[ev.Name] = time.Now()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}

		case now := <-tick.C:
			for name, at := range pending {
				if now.Sub(at) < settleDelay {
					continue
				}
				delete(pending, name)
				select {
				case w.Events <- name:
				case <-w.done:
					return
				}
			}
		}
	}
}

func watchedFile(path string) bool {
	return isLevelFile(path) || isScriptFile(path)
}

func isLevelFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func isScriptFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tengo")
}
