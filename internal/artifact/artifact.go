// Package artifact locates the bundles the toolchain produced inside the
// staging tree and moves them into the requested output directory. The
// staging tree itself is removed by the caller regardless of what is
// found here.
package artifact

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/webcask/webcask/internal/errors"
	"github.com/webcask/webcask/internal/fsutil"
	"github.com/webcask/webcask/internal/logfields"
	"github.com/webcask/webcask/internal/options"
	"github.com/webcask/webcask/internal/platform"
	"github.com/webcask/webcask/internal/stage"
)

// Collector moves finished bundles out of a staging tree.
type Collector struct {
	opts *options.Options
}

func NewCollector(opts *options.Options) *Collector {
	return &Collector{opts: opts}
}

// Collect searches every artifact class of the target platform under the
// bundle root and moves each match into the output directory. A lone
// match in a class is renamed after the product; multiple matches keep
// their toolchain names. Finding nothing at all is an error naming every
// searched pattern.
func (c *Collector) Collect(tree *stage.Tree) ([]string, error) {
	d := c.opts.Descriptor()
	bundleRoot := tree.AppPath(filepath.FromSlash(platform.BundleRoot))

	if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "create output directory")
	}

	var collected []string
	var searched []string
	for _, class := range d.Artifacts {
		searched = append(searched, path.Join(platform.BundleRoot, class.Dir, class.Pattern))

		matches, err := filepath.Glob(filepath.Join(bundleRoot, class.Dir, class.Pattern))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryInternal, "bad artifact pattern "+class.Pattern)
		}
		sort.Strings(matches)

		for _, match := range matches {
			dest := filepath.Join(c.opts.OutputDir, c.destName(match, len(matches)))
			if err := fsutil.MoveFile(match, dest); err != nil {
				return nil, errors.WrapError(err, errors.CategoryFileSystem, "move artifact "+filepath.Base(match))
			}
			slog.Info("Collected artifact", logfields.Artifact(dest))
			collected = append(collected, dest)
		}
	}

	if len(collected) == 0 {
		return nil, errors.ArtifactNotFound(
			fmt.Sprintf("no %s artifacts produced under %s", d.Name, platform.BundleRoot), searched)
	}
	return collected, nil
}

// destName picks the output file name: the product name when the class
// matched exactly once, the toolchain's own name otherwise.
func (c *Collector) destName(match string, matchCount int) string {
	if matchCount == 1 {
		return c.opts.Name + filepath.Ext(match)
	}
	return filepath.Base(match)
}
