package proxy

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "server.js")
	require.NoError(t, os.WriteFile(entry, []byte("// v1"), 0o644))

	fired := make(chan struct{}, 1)
	w, err := newWatcher(entry, 20*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(entry, []byte("// v2"), 0o644))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("onChange was not called after write")
	}
}

func TestWatcher_DebouncesBurstOfWrites(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "server.js")
	require.NoError(t, os.WriteFile(entry, []byte("// v1"), 0o644))

	var calls int
	done := make(chan struct{})
	w, err := newWatcher(entry, 100*time.Millisecond, func() {
		calls++
		select {
		case done <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(entry, []byte("// burst"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("onChange was never called")
	}

	// Give the debouncer's trailing edge time to settle, then make sure a
	// burst of five writes collapsed into a single restart.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, calls)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "server.js")
	other := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(entry, []byte("// v1"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("docs"), 0o644))

	fired := make(chan struct{}, 1)
	w, err := newWatcher(entry, 20*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("docs v2"), 0o644))

	select {
	case <-fired:
		t.Fatal("onChange fired for a write to an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}
