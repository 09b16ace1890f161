package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string) (<-chan struct{}, context.CancelFunc, <-chan error) {
	t.Helper()
	calls := make(chan struct{}, 16)
	done := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())

	w := NewFileWatcher(path, 20*time.Millisecond, nil)
	go func() {
		done <- w.Run(ctx, func() error {
			calls <- struct{}{}
			return nil
		})
	}()
	// Give the watcher time to register with the kernel.
	time.Sleep(100 * time.Millisecond)
	return calls, cancel, done
}

func TestFileWatcher_CallsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selector.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1.0.0\n"), 0o600))

	calls, cancel, done := startWatcher(t, path)
	defer cancel()

	// A burst of writes collapses into one call.
	for range 3 {
		require.NoError(t, os.WriteFile(path, []byte("version: 1.0.1\n"), 0o600))
	}

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not called after write")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selector.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1.0.0\n"), 0o600))

	calls, cancel, _ := startWatcher(t, path)
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o600))

	select {
	case <-calls:
		t.Fatal("callback called for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	w := NewFileWatcher(filepath.Join(t.TempDir(), "nope", "selector.yaml"), 0, nil)
	err := w.Run(context.Background(), func() error { return nil })
	assert.Error(t, err)
}
