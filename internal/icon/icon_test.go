package icon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webcask/webcask/internal/options"
	"github.com/webcask/webcask/internal/platform"
)

func writeTestPNG(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "source.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, testImage(64, 64)), 0o644))
	return path
}

func linuxPipeline(t *testing.T) *Pipeline {
	t.Helper()
	return NewPipeline(mustDescriptor(t, platform.Linux))
}

func TestResolveExplicitLocalIcon(t *testing.T) {
	dir := t.TempDir()
	opts := &options.Options{
		TargetKind: options.TargetFile,
		Icon:       writeTestPNG(t, dir),
		Platform:   platform.Linux,
	}

	res := linuxPipeline(t).Resolve(context.Background(), opts, t.TempDir())

	assert.Equal(t, SourceExplicitLocal, res.Source)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "icon.png", filepath.Base(res.Path))
	assert.FileExists(t, res.Path)
}

func TestResolveExplicitRemoteIcon(t *testing.T) {
	payload := encodePNG(t, testImage(64, 64))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	opts := &options.Options{
		TargetKind: options.TargetFile,
		Icon:       srv.URL + "/logo.png",
		Platform:   platform.Linux,
	}

	res := linuxPipeline(t).Resolve(context.Background(), opts, t.TempDir())

	assert.Equal(t, SourceExplicitRemote, res.Source)
	assert.FileExists(t, res.Path)
}

func TestResolveFaviconAfterLocalFailure(t *testing.T) {
	payload := encodePNG(t, testImage(32, 32))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Write([]byte(`<html><head><link rel="icon" href="/fav.png"></head></html>`))
		case "/fav.png":
			w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	opts := &options.Options{
		Target:     srv.URL,
		TargetKind: options.TargetURL,
		Icon:       filepath.Join(t.TempDir(), "missing.png"),
		Platform:   platform.Linux,
	}

	res := linuxPipeline(t).Resolve(context.Background(), opts, t.TempDir())

	assert.Equal(t, SourceAutoFavicon, res.Source)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "missing.png")
}

func TestResolveDefaultWhenNothingElse(t *testing.T) {
	opts := &options.Options{
		TargetKind: options.TargetFile,
		Platform:   platform.Linux,
	}

	res := linuxPipeline(t).Resolve(context.Background(), opts, t.TempDir())

	assert.Equal(t, SourceFallbackDefault, res.Source)
	assert.Empty(t, res.Warnings)
	assert.FileExists(t, res.Path)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, DetectFormat(data))
}

func TestResolveDefaultAfterEveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	opts := &options.Options{
		Target:     srv.URL,
		TargetKind: options.TargetURL,
		Icon:       filepath.Join(t.TempDir(), "missing.png"),
		Platform:   platform.Linux,
	}

	res := linuxPipeline(t).Resolve(context.Background(), opts, t.TempDir())

	assert.Equal(t, SourceFallbackDefault, res.Source, "resolution must not fail outright")
	assert.NotEmpty(t, res.Warnings)
	assert.FileExists(t, res.Path)
}

func TestResolveCorruptLocalIconFallsThrough(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("this is not a png"), 0o644))

	opts := &options.Options{
		TargetKind: options.TargetFile,
		Icon:       corrupt,
		Platform:   platform.Linux,
	}

	res := linuxPipeline(t).Resolve(context.Background(), opts, t.TempDir())

	assert.Equal(t, SourceFallbackDefault, res.Source)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "unusable")
}

func TestResolveConvertsForWindows(t *testing.T) {
	dir := t.TempDir()
	opts := &options.Options{
		TargetKind: options.TargetFile,
		Icon:       writeTestPNG(t, dir),
		Platform:   platform.Windows,
	}

	p := NewPipeline(mustDescriptor(t, platform.Windows))
	res := p.Resolve(context.Background(), opts, t.TempDir())

	assert.Equal(t, SourceExplicitLocal, res.Source)
	assert.Equal(t, "icon.ico", filepath.Base(res.Path))

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, FormatICO, DetectFormat(data))
}

func TestDefaultIconIsValidPNG(t *testing.T) {
	assert.Equal(t, FormatPNG, DetectFormat(defaultIcon))
}
