package stage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/webcask/webcask/internal/compose"
	"github.com/webcask/webcask/internal/errors"
	"github.com/webcask/webcask/internal/fsutil"
	"github.com/webcask/webcask/internal/logfields"
	"github.com/webcask/webcask/internal/options"
	"github.com/webcask/webcask/internal/template"
)

const (
	iconsDirName  = "icons"
	injectDirName = "inject"
	localEntryDir = "src/local"

	runtimeConfigName = "runtime.json"
	buildConfigName   = "build.json"
)

// Stager populates a staging tree for one build: template, icon, injection
// scripts, local entry files, and the generated config pair.
type Stager struct {
	opts *options.Options
}

func New(opts *options.Options) *Stager {
	return &Stager{opts: opts}
}

// MaterializeTemplate places the shell project into the app directory from
// whichever template source the options selected.
func (s *Stager) MaterializeTemplate(ctx context.Context, t *Tree) (template.SourceKind, error) {
	kind, err := template.Materialize(ctx, s.opts.Template, t.AppDir)
	if err != nil {
		return kind, err
	}
	slog.Info("Template materialized", logfields.Source(string(kind)), logfields.Path(t.AppDir))
	return kind, nil
}

// PlaceIcon copies the converted icon from the scratch area into the slot
// the build config points at, icons/<name> under the app directory.
func (s *Stager) PlaceIcon(t *Tree, iconPath string) (string, error) {
	d := s.opts.Descriptor()
	destDir := t.AppPath(iconsDirName)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errors.StagingFailed("create icons directory", err)
	}
	dest := filepath.Join(destDir, d.IconFile)
	if err := fsutil.CopyFile(iconPath, dest); err != nil {
		return "", errors.StagingFailed("place icon", err)
	}
	return dest, nil
}

// PlaceInject copies each injection script into the tree and returns the
// staged-relative paths in the original order, for writing back into the
// runtime config. Base name collisions between different source
// directories are resolved with an index prefix.
func (s *Stager) PlaceInject(t *Tree) ([]string, error) {
	if len(s.opts.Inject) == 0 {
		return nil, nil
	}
	destDir := t.AppPath(injectDirName)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, errors.StagingFailed("create inject directory", err)
	}

	staged := make([]string, 0, len(s.opts.Inject))
	used := make(map[string]bool)
	for i, src := range s.opts.Inject {
		name := filepath.Base(src)
		if used[name] {
			name = fmt.Sprintf("%d-%s", i, name)
		}
		used[name] = true
		if err := fsutil.CopyFile(src, filepath.Join(destDir, name)); err != nil {
			return nil, errors.StagingFailed("copy inject file", err)
		}
		staged = append(staged, injectDirName+"/"+name)
	}
	slog.Info("Staged injection scripts", "count", len(staged))
	return staged, nil
}

// PlaceLocalEntry copies the directory containing a local entry file into
// src/local under the app directory. The whole directory comes along so
// relative links to sibling assets keep resolving inside the bundle. URL
// targets stage nothing.
func (s *Stager) PlaceLocalEntry(t *Tree) error {
	if s.opts.TargetKind != options.TargetFile {
		return nil
	}
	dest := t.AppPath(filepath.FromSlash(localEntryDir))
	srcDir := filepath.Dir(s.opts.TargetPath)
	if err := fsutil.CopyDir(srcDir, dest); err != nil {
		return errors.StagingFailed("copy local entry files", err)
	}
	slog.Info("Staged local entry files", logfields.Source(srcDir), logfields.Path(dest))
	return nil
}

// WriteConfigs serializes the composed runtime and build configs into the
// app directory, where the toolchain expects them.
func (s *Stager) WriteConfigs(t *Tree, c *compose.Composed) error {
	runtimeJSON, err := c.RuntimeJSON()
	if err != nil {
		return errors.StagingFailed("encode runtime config", err)
	}
	buildJSON, err := c.BuildJSON()
	if err != nil {
		return errors.StagingFailed("encode build config", err)
	}
	if err := os.WriteFile(t.AppPath(runtimeConfigName), runtimeJSON, 0o644); err != nil {
		return errors.StagingFailed("write runtime config", err)
	}
	if err := os.WriteFile(t.AppPath(buildConfigName), buildJSON, 0o644); err != nil {
		return errors.StagingFailed("write build config", err)
	}
	slog.Debug("Wrote staged configs", logfields.Path(t.AppDir))
	return nil
}
