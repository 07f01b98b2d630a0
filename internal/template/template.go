// Package template materializes the shell template tree every build stages:
// the embedded default scaffold, a user-supplied local directory, or a
// shallow-cloned git repository.
package template

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"

	"github.com/webcask/webcask/internal/errors"
	"github.com/webcask/webcask/internal/fsutil"
	"github.com/webcask/webcask/internal/logfields"
)

//go:embed scaffold
var scaffoldFS embed.FS

// SourceKind records which template source a staging run used.
type SourceKind string

const (
	SourceEmbedded SourceKind = "embedded"
	SourceLocalDir SourceKind = "local-dir"
	SourceGit      SourceKind = "git"
)

// Manifest is the template's own metadata file, expected at the tree root.
const Manifest = "template.json"

// Materialize writes the template selected by templateOpt into destDir and
// returns the source kind used. An empty templateOpt selects the embedded
// scaffold; a directory path copies that tree; anything else is treated as a
// git URL and shallow-cloned.
func Materialize(ctx context.Context, templateOpt, destDir string) (SourceKind, error) {
	kind, err := materialize(ctx, templateOpt, destDir)
	if err != nil {
		return kind, err
	}
	if _, err := os.Stat(filepath.Join(destDir, Manifest)); err != nil {
		return kind, errors.TemplateError(string(kind), err).
			WithContext("missing", Manifest)
	}
	slog.Debug("Template materialized", logfields.Source(string(kind)), logfields.Path(destDir))
	return kind, nil
}

func materialize(ctx context.Context, templateOpt, destDir string) (SourceKind, error) {
	switch {
	case templateOpt == "":
		if err := copyScaffold(destDir); err != nil {
			return SourceEmbedded, errors.TemplateError(string(SourceEmbedded), err)
		}
		return SourceEmbedded, nil

	case isLocalDir(templateOpt):
		if err := fsutil.CopyDir(templateOpt, destDir); err != nil {
			return SourceLocalDir, errors.TemplateError(templateOpt, err)
		}
		return SourceLocalDir, nil

	default:
		if err := cloneTemplate(ctx, templateOpt, destDir); err != nil {
			return SourceGit, err
		}
		return SourceGit, nil
	}
}

func isLocalDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func copyScaffold(destDir string) error {
	return fs.WalkDir(scaffoldFS, "scaffold", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(path, "scaffold")
		rel = strings.TrimPrefix(rel, "/")
		target := filepath.Join(destDir, filepath.FromSlash(rel))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := scaffoldFS.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}

// cloneTemplate shallow-clones url into destDir and drops the .git directory
// so the toolchain sees a plain tree.
func cloneTemplate(ctx context.Context, url, destDir string) error {
	slog.Debug("Cloning template repository", logfields.URL(url), logfields.Path(destDir))

	cloneOptions := &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Progress:     os.Stdout,
	}
	if _, err := git.PlainCloneContext(ctx, destDir, false, cloneOptions); err != nil {
		return errors.TemplateError(url, err)
	}
	if err := os.RemoveAll(filepath.Join(destDir, ".git")); err != nil {
		return errors.TemplateError(url, err)
	}

	slog.Info("Template repository cloned", logfields.URL(url), logfields.Path(destDir))
	return nil
}
