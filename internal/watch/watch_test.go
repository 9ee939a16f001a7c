package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type harness struct {
	w      *Watcher
	builds atomic.Int32
	cancel context.CancelFunc
	done   chan error
}

func start(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{done: make(chan error, 1)}
	w, err := New(opts, func(context.Context) error {
		h.builds.Add(1)
		return nil
	})
	require.NoError(t, err)
	h.w = w

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	require.Eventually(t, func() bool { return h.builds.Load() == 1 }, 2*time.Second, 5*time.Millisecond, "initial build")
	return h
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	tasks := filepath.Join(root, "tasks")
	require.NoError(t, os.MkdirAll(tasks, 0o755))

	h := start(t, Options{Dirs: []string{tasks}, Debounce: 20 * time.Millisecond})

	write(t, filepath.Join(tasks, "01-intro.md"), "# Intro\n")
	require.Eventually(t, func() bool { return h.builds.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatch_NewSubdirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	assets := filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(assets, 0o755))

	h := start(t, Options{Dirs: []string{assets}, Debounce: 20 * time.Millisecond})

	require.NoError(t, os.MkdirAll(filepath.Join(assets, "img"), 0o755))
	require.Eventually(t, func() bool { return h.builds.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	// Let the directory-creation rebuild settle before counting again.
	time.Sleep(100 * time.Millisecond)
	before := h.builds.Load()

	write(t, filepath.Join(assets, "img", "logo.svg"), "<svg/>")
	require.Eventually(t, func() bool { return h.builds.Load() > before }, 3*time.Second, 10*time.Millisecond)
}

func TestWatch_TriggersCoalesce(t *testing.T) {
	h := start(t, Options{Debounce: 50 * time.Millisecond})

	for i := 0; i < 5; i++ {
		h.w.Trigger("manual")
	}
	require.Eventually(t, func() bool { return h.builds.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(2), h.builds.Load())
	require.Equal(t, 2, h.w.Builds())
}

func TestWatch_IgnoredOutputDoesNotTrigger(t *testing.T) {
	root := t.TempDir()
	tasks := filepath.Join(root, "tasks")
	out := filepath.Join(tasks, "dist")
	require.NoError(t, os.MkdirAll(out, 0o755))

	h := start(t, Options{Dirs: []string{tasks}, Ignore: []string{out}, Debounce: 10 * time.Millisecond})

	write(t, filepath.Join(out, "tasks.html"), "<html></html>")
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), h.builds.Load())
}

func TestWatch_SingleFileFiltersSiblings(t *testing.T) {
	root := t.TempDir()
	vendorDir := filepath.Join(root, "node_modules", "github-markdown-css")
	css := filepath.Join(vendorDir, "github-markdown-light.css")
	write(t, css, "a{}")

	h := start(t, Options{Files: []string{css}, Debounce: 10 * time.Millisecond})

	write(t, filepath.Join(vendorDir, "README.md"), "docs")
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), h.builds.Load())

	write(t, css, "b{}")
	require.Eventually(t, func() bool { return h.builds.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatch_PeriodicRebuild(t *testing.T) {
	h := start(t, Options{RebuildEvery: 30 * time.Millisecond, Debounce: time.Millisecond})
	require.Eventually(t, func() bool { return h.builds.Load() >= 3 }, 3*time.Second, 10*time.Millisecond)
}

func TestWatch_MissingDirectoryIsPickedUpWhenCreated(t *testing.T) {
	root := t.TempDir()
	tasks := filepath.Join(root, "tasks")

	h := start(t, Options{Dirs: []string{tasks}, Debounce: 20 * time.Millisecond})

	write(t, filepath.Join(root, "README.md"), "unrelated")
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), h.builds.Load(), "siblings of the awaited directory are ignored")

	require.NoError(t, os.Mkdir(tasks, 0o755))
	require.Eventually(t, func() bool { return h.builds.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	before := h.builds.Load()

	write(t, filepath.Join(tasks, "01-intro.md"), "# Intro\n")
	require.Eventually(t, func() bool { return h.builds.Load() > before }, 3*time.Second, 10*time.Millisecond)
}

func TestWatch_MissingNestedDirectoryIsPickedUp(t *testing.T) {
	root := t.TempDir()
	tasks := filepath.Join(root, "workshop", "tasks")

	h := start(t, Options{Dirs: []string{tasks}, Debounce: 20 * time.Millisecond})

	require.NoError(t, os.Mkdir(filepath.Join(root, "workshop"), 0o755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.Mkdir(tasks, 0o755))
	time.Sleep(200 * time.Millisecond)
	before := h.builds.Load()

	write(t, filepath.Join(tasks, "01-intro.md"), "# Intro\n")
	require.Eventually(t, func() bool { return h.builds.Load() > before }, 3*time.Second, 10*time.Millisecond)
}

func TestWatch_MissingDirectoryDoesNotFail(t *testing.T) {
	h := start(t, Options{Dirs: []string{filepath.Join(t.TempDir(), "absent")}})
	require.Equal(t, 1, h.w.Builds())

	h.cancel()
	select {
	case err := <-h.done:
		require.NoError(t, err)
		h.done <- err
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
