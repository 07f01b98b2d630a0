package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webcask/webcask/internal/options"
)

func TestSourcesForFileTarget(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(entry, []byte("<html></html>"), 0o644))

	opts, err := options.New(options.Raw{Target: entry, Platform: "linux"})
	require.NoError(t, err)

	dirs, files, err := Sources(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Dir(opts.TargetPath)}, dirs)
	assert.Empty(t, files)
}

func TestSourcesForURLTargetWithInject(t *testing.T) {
	script := filepath.Join(t.TempDir(), "tweak.js")
	require.NoError(t, os.WriteFile(script, []byte("//"), 0o644))

	opts, err := options.New(options.Raw{Target: "https://example.com", Platform: "linux", Inject: []string{script}})
	require.NoError(t, err)

	dirs, files, err := Sources(opts)
	require.NoError(t, err)
	assert.Empty(t, dirs)
	require.Len(t, files, 1)
	assert.True(t, filepath.IsAbs(files[0]))
}

func TestSourcesNothingToWatch(t *testing.T) {
	opts, err := options.New(options.Raw{Target: "https://example.com", Platform: "linux"})
	require.NoError(t, err)

	_, _, err = Sources(opts)
	assert.ErrorContains(t, err, "nothing to watch")
}

func TestWatcherFiresOnceForBurst(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(target, []byte("v0"), 0o644))

	var fired atomic.Int32
	w, err := New([]string{dir}, nil, func(ctx context.Context) { fired.Add(1) })
	require.NoError(t, err)
	w.Debounce = 100 * time.Millisecond
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// A burst of writes inside the debounce window.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("v1"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return fired.Load() == 1 }, 3*time.Second, 20*time.Millisecond)

	// Settle and confirm no extra callbacks arrive.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestWatcherTracksListedFile(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "tweak.js")
	unrelated := filepath.Join(dir, "ignore.txt")
	require.NoError(t, os.WriteFile(script, []byte("v0"), 0o644))
	require.NoError(t, os.WriteFile(unrelated, []byte("v0"), 0o644))

	var fired atomic.Int32
	w, err := New(nil, []string{script}, func(ctx context.Context) { fired.Add(1) })
	require.NoError(t, err)
	w.Debounce = 50 * time.Millisecond
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// Unrelated sibling changes must not fire; the parent dir is watched
	// but only the listed file is relevant.
	require.NoError(t, os.WriteFile(unrelated, []byte("v1"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	require.NoError(t, os.WriteFile(script, []byte("v1"), 0o644))
	require.Eventually(t, func() bool { return fired.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcherStopIdempotent(t *testing.T) {
	w, err := New([]string{t.TempDir()}, nil, func(ctx context.Context) {})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "tweak.js")
	require.NoError(t, os.WriteFile(file, []byte("//"), 0o644))

	w, err := New([]string{dir}, []string{file}, nil)
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.relevant(filepath.Join(dir, "anything.html")))
	assert.True(t, w.relevant(file))
	assert.False(t, w.relevant(filepath.Join(dir, "sub", "deep.html")), "nested dirs are not watched")
	assert.False(t, w.relevant(filepath.Join(filepath.Dir(file), "other.js")))
}
