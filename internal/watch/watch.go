// Package watch rebuilds the site when its inputs change. File events and
// optional periodic ticks only request a rebuild; requests are debounced and
// coalesced, and builds run one at a time on the Run goroutine so two builds
// never write the same output tree concurrently.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// BuildFunc runs one build. Errors are logged; watching continues.
type BuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	Dirs         []string      // watched recursively; missing directories are picked up once created
	Files        []string      // single files, watched through their parent directory
	Ignore       []string      // events at or below these paths never trigger a build
	Debounce     time.Duration // quiet period before a requested build starts
	RebuildEvery time.Duration // 0 disables periodic rebuilds
}

// Watcher serialises rebuild requests coming from fsnotify and gocron.
type Watcher struct {
	opts    Options
	build   BuildFunc
	fsw     *fsnotify.Watcher
	sched   gocron.Scheduler
	trigger chan string

	mu      sync.Mutex
	files   map[string]map[string]bool // parent dir -> watched names, for parents not watched as trees
	pending map[string]bool            // missing Dirs waiting to be created
	dirs    []string                   // absolute Dirs
	ignore  []string
	builds  int
}

// New creates a Watcher. Call Run to start watching.
func New(opts Options, build BuildFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		opts:    opts,
		build:   build,
		fsw:     fsw,
		trigger: make(chan string, 1),
		files:   make(map[string]map[string]bool),
		pending: make(map[string]bool),
	}
	for _, d := range opts.Dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to resolve watched directory %s: %w", d, err)
		}
		w.dirs = append(w.dirs, abs)
	}
	for _, p := range opts.Ignore {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to resolve ignored path %s: %w", p, err)
		}
		w.ignore = append(w.ignore, abs)
	}

	if opts.RebuildEvery > 0 {
		s, err := gocron.NewScheduler()
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
		}
		if _, err := s.NewJob(
			gocron.DurationJob(opts.RebuildEvery),
			gocron.NewTask(w.Trigger, "schedule"),
			gocron.WithName("periodic-rebuild"),
		); err != nil {
			_ = s.Shutdown()
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
		}
		w.sched = s
	}
	return w, nil
}

// Trigger requests a rebuild. It never blocks; pending requests coalesce.
func (w *Watcher) Trigger(reason string) {
	select {
	case w.trigger <- reason:
	default:
	}
}

// Builds returns the number of builds started so far.
func (w *Watcher) Builds() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.builds
}

// Run performs an initial build, then rebuilds on changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	for _, dir := range w.dirs {
		if err := w.addTree(dir); err != nil {
			return err
		}
	}
	for _, file := range w.opts.Files {
		if err := w.addFile(file); err != nil {
			return err
		}
	}

	go w.eventLoop(ctx)

	w.runBuild(ctx, "initial")
	if ctx.Err() != nil {
		return nil
	}
	if w.sched != nil {
		w.sched.Start()
		slog.Info("Periodic rebuilds enabled", slog.Duration("interval", w.opts.RebuildEvery))
	}

	var debounce <-chan time.Time
	var reason string
	for {
		select {
		case <-ctx.Done():
			slog.Info("Watch stopped")
			return nil
		case r := <-w.trigger:
			reason = r
			debounce = time.After(w.opts.Debounce)
		case <-debounce:
			debounce = nil
			w.runBuild(ctx, reason)
		}
	}
}

func (w *Watcher) runBuild(ctx context.Context, reason string) {
	w.mu.Lock()
	w.builds++
	w.mu.Unlock()

	slog.Info("Rebuilding site", logfields.Event(reason))
	if err := w.build(ctx); err != nil {
		slog.Error("Build failed", logfields.Event(reason), logfields.Error(err))
	}
}

func (w *Watcher) close() {
	if w.sched != nil {
		if err := w.sched.Shutdown(); err != nil {
			slog.Warn("Failed to stop scheduler", logfields.Error(err))
		}
	}
	if err := w.fsw.Close(); err != nil {
		slog.Warn("Failed to close file watcher", logfields.Error(err))
	}
}

// addTree watches dir and every directory below it. A missing dir is
// awaited through its nearest existing ancestor.
func (w *Watcher) addTree(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return w.awaitDir(dir)
	}
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		slog.Debug("Watching directory", logfields.Path(p))
		return nil
	})
}

// awaitDir watches the nearest existing ancestor of the missing absolute
// path dir, filtered to the child on the way to dir.
func (w *Watcher) awaitDir(dir string) error {
	child, parent := dir, filepath.Dir(dir)
	for {
		if info, err := os.Stat(parent); err == nil && info.IsDir() {
			break
		}
		if filepath.Dir(parent) == parent {
			slog.Warn("Watched directory has no existing ancestor", logfields.Path(dir))
			return nil
		}
		child, parent = parent, filepath.Dir(parent)
	}
	if err := w.fsw.Add(parent); err != nil {
		return fmt.Errorf("failed to watch %s: %w", parent, err)
	}

	w.mu.Lock()
	w.pending[dir] = true
	if w.files[parent] == nil {
		w.files[parent] = make(map[string]bool)
	}
	w.files[parent][filepath.Base(child)] = true
	w.mu.Unlock()

	slog.Warn("Watched directory does not exist, waiting for it", logfields.Path(dir), slog.String("parent", parent))
	return nil
}

// addCreatedDir starts watching a directory that appeared after Run began.
// Awaited directories at or below it are resolved; otherwise it is a new
// subdirectory of a watched tree.
func (w *Watcher) addCreatedDir(name string) error {
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	var awaited []string
	w.mu.Lock()
	for dir := range w.pending {
		if within(abs, dir) {
			awaited = append(awaited, dir)
			delete(w.pending, dir)
		}
	}
	w.mu.Unlock()

	if len(awaited) == 0 {
		return w.addTree(name)
	}
	for _, dir := range awaited {
		if err := w.addTree(dir); err != nil {
			return err
		}
	}
	return nil
}

// addFile watches file through its parent directory and filters on its name.
func (w *Watcher) addFile(file string) error {
	parent := filepath.Dir(file)
	if _, err := os.Stat(parent); os.IsNotExist(err) {
		slog.Warn("Watched file directory does not exist", logfields.Path(file))
		return nil
	}
	if err := w.fsw.Add(parent); err != nil {
		return fmt.Errorf("failed to watch %s: %w", parent, err)
	}
	key, err := filepath.Abs(parent)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", parent, err)
	}
	w.mu.Lock()
	if w.files[key] == nil {
		w.files[key] = make(map[string]bool)
	}
	w.files[key][filepath.Base(file)] = true
	w.mu.Unlock()
	return nil
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod || w.ignored(event.Name) || !w.relevant(event.Name) {
		return
	}
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addCreatedDir(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
		}
	}
	slog.Debug("Change detected", logfields.Path(event.Name), logfields.Event(event.Op.String()))
	w.Trigger(event.Name)
}

// relevant filters events in directories that are only watched for single files.
func (w *Watcher) relevant(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	abs, err := filepath.Abs(name)
	if err != nil {
		return true
	}
	names, fileOnly := w.files[filepath.Dir(abs)]
	if !fileOnly {
		return true
	}
	if names[filepath.Base(abs)] {
		return true
	}
	for _, dir := range w.dirs {
		if within(dir, abs) {
			return true
		}
	}
	return false
}

func (w *Watcher) ignored(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	for _, root := range w.ignore {
		if within(root, abs) {
			return true
		}
	}
	return false
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
