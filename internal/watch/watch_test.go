package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type buildLog struct {
	mu    sync.Mutex
	paths []string
	done  chan string
}

func newBuildLog() *buildLog {
	return &buildLog{done: make(chan string, 16)}
}

func (b *buildLog) build(_ context.Context, path string) error {
	b.mu.Lock()
	b.paths = append(b.paths, path)
	b.mu.Unlock()
	b.done <- path
	return nil
}

func (b *buildLog) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.paths)
}

// start runs w until the test ends.
func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errc)
	})
	// let fsnotify register the directories
	time.Sleep(100 * time.Millisecond)
}

func TestNewRequiresFiles(t *testing.T) {
	_, err := New(nil, func(context.Context, string) error { return nil }, Options{})
	assert.Error(t, err)
}

func TestRebuildIsDebounced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "power.board")
	require.NoError(t, os.WriteFile(path, []byte(`board "b"`), 0o644))

	builds := newBuildLog()
	w, err := New([]string{path}, builds.build, Options{Debounce: 150 * time.Millisecond})
	require.NoError(t, err)
	start(t, w)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`board "b" # edit`), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case got := <-builds.done:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after change")
	}

	// no second build from the same burst
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, 1, builds.count())
}

func TestIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "power.board")
	require.NoError(t, os.WriteFile(path, []byte(`board "b"`), 0o644))

	builds := newBuildLog()
	w, err := New([]string{path}, builds.build, Options{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	start(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.board"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 0, builds.count())
}

func TestBuildErrorsDoNotStopWatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "power.board")
	require.NoError(t, os.WriteFile(path, []byte(`board "b"`), 0o644))

	calls := make(chan struct{}, 4)
	w, err := New([]string{path}, func(context.Context, string) error {
		calls <- struct{}{}
		return errors.New("boom")
	}, Options{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	start(t, w)

	for i := 0; i < 2; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`board "b"`), 0o644))
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatalf("rebuild %d did not run", i+1)
		}
	}
}
