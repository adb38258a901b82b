package scenefile

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phanxgames/marquee"
)

// DefaultDebounce is how long Watch waits after the last change event
// before reloading. Editors often write a file in several steps.
const DefaultDebounce = 100 * time.Millisecond

// Watch calls reload after the file at path changes, until ctx is done.
// The parent directory is watched so replace-by-rename saves are seen.
func Watch(ctx context.Context, path string, debounce time.Duration, reload func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("scenefile: watch: %w", err)
	}
	defer w.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("scenefile: watch: %w", err)
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("scenefile: watch %s: %w", filepath.Dir(target), err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			marquee.Logger().Warn("scenefile: watch error", "path", path, "err", err)
		case <-fire:
			fire = nil
			reload()
		}
	}
}

// Loader keeps one scene file applied under a parent node and swaps it for
// a fresh copy on reload.
type Loader struct {
	stage  *marquee.Stage
	parent marquee.NodeID
	path   string

	mu      sync.Mutex
	current *Scene
	loads   int
}

// NewLoader returns a Loader for path. Nothing is applied until Load.
func NewLoader(s *marquee.Stage, parent marquee.NodeID, path string) *Loader {
	return &Loader{stage: s, parent: parent, path: path}
}

// Load parses and applies the file, then removes the previous scene. On
// error the previous scene stays in place.
func (l *Loader) Load() error {
	f, err := Load(l.path)
	if err != nil {
		return err
	}
	sc, err := f.Apply(l.stage, l.parent)
	if err != nil {
		return err
	}
	l.mu.Lock()
	old := l.current
	l.current = sc
	l.loads++
	n := l.loads
	l.mu.Unlock()
	if old != nil {
		old.Remove(l.stage)
	}
	marquee.Logger().Info("scenefile: loaded", "path", l.path, "load", n, "nodes", len(sc.Nodes), "animations", len(sc.Animations))
	return nil
}

// Current returns the scene applied by the last successful Load.
func (l *Loader) Current() *Scene {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Watch reloads the file on change until ctx is done. Reload errors are
// logged and the previous scene is kept.
func (l *Loader) Watch(ctx context.Context) error {
	return Watch(ctx, l.path, DefaultDebounce, func() {
		if err := l.Load(); err != nil {
			marquee.Logger().Warn("scenefile: reload failed", "path", l.path, "err", err)
		}
	})
}
