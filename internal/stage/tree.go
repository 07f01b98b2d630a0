// Package stage builds the ephemeral workspace a bundle is produced in:
// a uniquely named directory under the system temp root holding the
// materialized shell template, the resolved icon, injection scripts, and
// the generated runtime and build configs. The tree never collides across
// concurrent builds and is always removed when the build ends.
package stage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	treePrefix   = "webcask-"
	iconWorkName = "icon-work"
	appName      = "app"
)

// Tree is one build's staging workspace.
//
//	<tmp>/webcask-<uuid>/
//	  icon-work/   scratch for icon fetch and conversion
//	  app/         shell project the toolchain builds
type Tree struct {
	Root     string
	IconWork string
	AppDir   string

	removed bool
}

// NewTree creates a fresh staging tree. The uuid component guarantees
// isolation between concurrent builds sharing a temp root.
func NewTree() (*Tree, error) {
	root := filepath.Join(os.TempDir(), treePrefix+uuid.NewString())
	t := &Tree{
		Root:     root,
		IconWork: filepath.Join(root, iconWorkName),
		AppDir:   filepath.Join(root, appName),
	}
	for _, dir := range []string{t.Root, t.IconWork, t.AppDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Remove()
			return nil, fmt.Errorf("create staging directory %s: %w", dir, err)
		}
	}
	slog.Debug("Created staging tree", "root", root)
	return t, nil
}

// AppPath joins path elements under the staged app directory.
func (t *Tree) AppPath(elem ...string) string {
	return filepath.Join(append([]string{t.AppDir}, elem...)...)
}

// Remove deletes the whole tree. Safe to call more than once and after
// partial creation; removal failures are logged, not returned, so cleanup
// never masks the build error.
func (t *Tree) Remove() {
	if t == nil || t.removed {
		return
	}
	t.removed = true
	if err := os.RemoveAll(t.Root); err != nil {
		slog.Warn("Failed to remove staging tree", "root", t.Root, "error", err)
		return
	}
	slog.Debug("Removed staging tree", "root", t.Root)
}
