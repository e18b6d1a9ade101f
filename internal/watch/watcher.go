// Package watch rebuilds pages when their inputs change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docpage/internal/logfields"
)

const defaultDebounce = 300 * time.Millisecond

// RebuildFunc is called once per debounced burst of changes. Calls never overlap.
type RebuildFunc func(ctx context.Context, reason string) error

// Options tune a Watcher.
type Options struct {
	// Debounce is the quiet window after the last change before a rebuild runs.
	Debounce time.Duration
	// Interval triggers a rebuild periodically when > 0, for file systems
	// that do not deliver change events.
	Interval time.Duration
	// Ignore holds doublestar patterns matched against the path relative to
	// the working directory and against the file name.
	Ignore []string
	// Exclude holds files or directories whose events are always dropped,
	// such as the output directory.
	Exclude []string
}

// Watcher watches the directories holding a set of input files.
type Watcher struct {
	opts    Options
	rebuild RebuildFunc
	root    string
	dirs    []string

	fsWatcher *fsnotify.Watcher
	scheduler gocron.Scheduler
	trigger   chan string

	mu      sync.Mutex
	running bool
}

// New creates a watcher over the parent directories of paths.
func New(paths []string, rebuild RebuildFunc, opts Options) (*Watcher, error) {
	if rebuild == nil {
		return nil, fmt.Errorf("rebuild function is required")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	for _, p := range opts.Ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}

	var exclude []string
	for _, p := range opts.Exclude {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		exclude = append(exclude, abs)
	}
	opts.Exclude = exclude

	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	seen := make(map[string]struct{})
	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		dir := abs
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			dir = filepath.Dir(abs)
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		opts:      opts,
		rebuild:   rebuild,
		root:      root,
		dirs:      dirs,
		fsWatcher: fsWatcher,
		trigger:   make(chan string, 1),
	}, nil
}

// Dirs returns the watched directories.
func (w *Watcher) Dirs() []string {
	out := make([]string, len(w.dirs))
	copy(out, w.dirs)
	return out
}

// Run watches until ctx is canceled. Rebuild errors are logged and do not
// stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		if err := w.fsWatcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		slog.Debug("Watching directory", logfields.SourcePath(dir))
	}

	if w.opts.Interval > 0 {
		if err := w.startScheduler(); err != nil {
			return err
		}
		defer func() {
			if err := w.scheduler.Shutdown(); err != nil {
				slog.Error("Error stopping scheduler", logfields.Error(err))
			}
		}()
	}

	slog.Info("Watching for changes",
		slog.Int("directories", len(w.dirs)),
		slog.Duration("debounce", w.opts.Debounce),
		slog.Duration("interval", w.opts.Interval))

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var (
		pending bool
		reason  string
	)
	schedule := func(r string) {
		if pending {
			timer.Stop()
		}
		pending = true
		reason = r
		timer.Reset(w.opts.Debounce)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Change detected", logfields.SourcePath(event.Name), slog.String("op", event.Op.String()))
			schedule("change: " + w.rel(event.Name))
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		case r := <-w.trigger:
			schedule(r)
		case <-timer.C:
			pending = false
			w.runRebuild(ctx, reason)
		}
	}
}

func (w *Watcher) runRebuild(ctx context.Context, reason string) {
	start := time.Now()
	slog.Info("Rebuilding", slog.String("reason", reason))
	if err := w.rebuild(ctx, reason); err != nil {
		slog.Error("Rebuild failed", logfields.Error(err), logfields.Duration(time.Since(start)))
		return
	}
	slog.Info("Rebuild complete", logfields.Duration(time.Since(start)))
}

func (w *Watcher) startScheduler() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(w.requestRebuild, "interval"),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	w.scheduler = s
	s.Start()
	return nil
}

// requestRebuild queues a rebuild unless one is already pending.
func (w *Watcher) requestRebuild(reason string) {
	select {
	case w.trigger <- reason:
	default:
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return !w.shouldIgnore(event.Name)
}

func (w *Watcher) shouldIgnore(path string) bool {
	for _, ex := range w.opts.Exclude {
		if path == ex || strings.HasPrefix(path, ex+string(filepath.Separator)) {
			return true
		}
	}
	base := filepath.Base(path)
	rel := w.rel(path)
	for _, pattern := range w.opts.Ignore {
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
		if match, _ := doublestar.Match(pattern, base); match {
			return true
		}
	}
	return false
}

func (w *Watcher) rel(path string) string {
	if r, err := filepath.Rel(w.root, path); err == nil {
		return filepath.ToSlash(r)
	}
	return filepath.ToSlash(path)
}
