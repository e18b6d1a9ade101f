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

func TestNew_Validation(t *testing.T) {
	noop := func(context.Context, string) error { return nil }

	_, err := New([]string{"a.yaml"}, nil, Options{})
	require.Error(t, err)

	_, err = New(nil, noop, Options{})
	require.Error(t, err)

	_, err = New([]string{"a.yaml"}, noop, Options{Ignore: []string{"[unterminated"}})
	require.Error(t, err)
}

func TestNew_DeduplicatesDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "cards")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	w, err := New([]string{
		filepath.Join(dir, "page.yaml"),
		filepath.Join(dir, "metadata.json"),
		filepath.Join(sub, "simple.py"),
		sub,
	}, func(context.Context, string) error { return nil }, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{dir, sub}, w.Dirs())
	require.Equal(t, defaultDebounce, w.opts.Debounce)
}

func TestShouldIgnore(t *testing.T) {
	w := &Watcher{root: "/work", opts: Options{Ignore: []string{"*.swp", "out/**", "**/.git/**"}}}

	require.True(t, w.shouldIgnore("/work/pages/.cards.yaml.swp"))
	require.True(t, w.shouldIgnore("/work/out/cards.json"))
	require.True(t, w.shouldIgnore("/work/.git/index"))
	require.False(t, w.shouldIgnore("/work/pages/cards.yaml"))
	require.False(t, w.shouldIgnore("/work/metadata.json"))

	w.opts.Exclude = []string{"/work/site", "/work/metrics.prom"}
	require.True(t, w.shouldIgnore("/work/site/cards.json"))
	require.True(t, w.shouldIgnore("/work/metrics.prom"))
	require.False(t, w.shouldIgnore("/work/site-notes.md"))
}

func TestRun_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "page.yaml")
	require.NoError(t, os.WriteFile(target, []byte("name: a\n"), 0o600))

	var calls atomic.Int32
	w, err := New([]string{target}, func(context.Context, string) error {
		calls.Add(1)
		return nil
	}, Options{Debounce: 100 * time.Millisecond, Ignore: []string{"*.tmp"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("name: b\n"), 0o600))
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.tmp"), []byte("x"), 0o600))
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRun_RebuildErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "metadata.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o600))

	var calls atomic.Int32
	w, err := New([]string{target}, func(context.Context, string) error {
		calls.Add(1)
		return os.ErrNotExist
	}, Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(target, []byte(`{"a":1}`), 0o600))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(target, []byte(`{"a":2}`), 0o600))
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)
}

func TestRequestRebuild_DoesNotBlock(t *testing.T) {
	w := &Watcher{trigger: make(chan string, 1)}
	w.requestRebuild("interval")
	w.requestRebuild("interval")
	require.Equal(t, "interval", <-w.trigger)
}
