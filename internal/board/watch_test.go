package board

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFeedWatcherDebouncesWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	feed := filepath.Join(dir, "projects.json")
	writeTestFile(t, feed, "[]")

	var calls atomic.Int32
	changed := make(chan struct{}, 8)
	w := NewFeedWatcher(feed, func() {
		calls.Add(1)
		changed <- struct{}{}
	}, nil)
	w.debounce = 60 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Run adds the watch on its own goroutine; retry the burst until one lands.
	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		for i := 0; i < 3; i++ {
			require.NoError(t, os.WriteFile(feed, []byte(`[{"id":1}]`), 0o644))
		}
		select {
		case <-changed:
		case <-time.After(300 * time.Millisecond):
		}
	}
	require.Equal(t, int32(1), calls.Load(), "a burst of writes should trigger one reload")

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestFeedWatcherMissingDir(t *testing.T) {
	w := NewFeedWatcher(filepath.Join(t.TempDir(), "nope", "projects.json"), func() {}, nil)
	require.Error(t, w.Run(context.Background()))
}
