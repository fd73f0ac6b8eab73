// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when fact files change.
//
// A Watcher observes an explicit set of directories (fact files live in a
// handful of flat directories, so nothing is watched recursively) and keeps
// only events whose absolute path matches one of its doublestar patterns.
// Events within the debounce window are coalesced so the callback fires
// once with the full set of changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the delay before firing the onChange callback after the
// last filesystem event. This allows rapid successive events (e.g., an editor
// writing then renaming a temp file) to coalesce into a single callback.
const defaultDebounce = 500 * time.Millisecond

// defaultIgnores lists editor and OS noise that never triggers a callback.
var defaultIgnores = []string{
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.#*",
	"**/.DS_Store",
}

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dirs are the directories to observe. Missing directories are
		// skipped and can be added later with Update.
		Dirs []string

		// Patterns are doublestar-compatible glob patterns matched against
		// the absolute path of each event. An empty slice accepts every
		// non-ignored path in Dirs.
		Patterns []string

		// Debounce is the quiet period after the last event before the callback
		// fires. Zero or negative values fall back to defaultDebounce.
		Debounce time.Duration

		// OnChange is called after the debounce window closes with the sorted,
		// deduplicated list of changed paths. A nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives watcher notices. nil means slog.Default().
		Logger *slog.Logger
	}

	// Watcher monitors directories and fires a debounced callback when
	// matching files change. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		logger   *slog.Logger
		debounce time.Duration
		started  atomic.Bool

		mu       sync.RWMutex
		patterns []string
		dirs     map[string]struct{}
	}
)

// New creates a Watcher from the given Config. Patterns are validated and
// every existing directory in cfg.Dirs is registered with fsnotify.
func New(cfg Config) (*Watcher, error) {
	if err := validatePatterns(cfg.Patterns); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		logger:   logger,
		debounce: debounce,
		dirs:     make(map[string]struct{}),
	}

	if err := w.Update(cfg.Dirs, cfg.Patterns); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("watch: close after init failure", "error", closeErr)
		}
		return nil, err
	}

	return w, nil
}

// Update replaces the watched directory set and the patterns. Directories
// no longer listed are removed; new ones are added when they exist.
func (w *Watcher) Update(dirs, patterns []string) error {
	if err := validatePatterns(patterns); err != nil {
		return err
	}

	want := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return fmt.Errorf("watch: resolve directory %q: %w", d, err)
		}
		want[abs] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for d := range w.dirs {
		if _, keep := want[d]; keep {
			continue
		}
		if err := w.fsw.Remove(d); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			w.logger.Debug("watch: remove directory", "dir", d, "error", err)
		}
		delete(w.dirs, d)
	}

	for _, d := range slices.Sorted(maps.Keys(want)) {
		if _, ok := w.dirs[d]; ok {
			continue
		}
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			w.logger.Debug("watch: skipping missing directory", "dir", d)
			continue
		}
		if err := w.fsw.Add(d); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", d, err)
		}
		w.dirs[d] = struct{}{}
	}

	w.patterns = slices.Clone(patterns)
	return nil
}

// Dirs returns the directories currently being watched, sorted.
func (w *Watcher) Dirs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Sorted(maps.Keys(w.dirs))
}

// Run blocks until ctx is cancelled, processing filesystem events and
// dispatching debounced callbacks. It returns nil on clean context
// cancellation and propagates any fatal watcher errors.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire drains the pending set and invokes OnChange. It may run after ctx
	// is cancelled, so it checks ctx first. A callback that is still running
	// makes it reschedule itself instead of running concurrently.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Info("watch: previous run still in progress, retrying")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("watch: callback failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("watch: close fsnotify", "error", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			if !w.accepts(evt.Name) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("watch: fsnotify error", "error", err)
		}
	}
}

// accepts reports whether an event for path should trigger the callback.
func (w *Watcher) accepts(path string) bool {
	normalized := filepath.ToSlash(path)
	if matchAny(defaultIgnores, normalized) {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.patterns) == 0 {
		return true
	}
	return matchAny(w.patterns, normalized)
}

func matchAny(patterns []string, path string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(filepath.ToSlash(pat), path); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// validatePatterns checks that every pattern is a valid doublestar glob.
func validatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(pat)) {
			return fmt.Errorf("watch: invalid pattern %q", pat)
		}
	}
	return nil
}
