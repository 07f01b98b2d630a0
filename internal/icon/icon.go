// Package icon resolves the application icon for a build through an
// ordered fallback chain. A user-supplied icon (local path or URL) is
// preferred, then icons discovered on the target page, then the bundled
// default. Resolution never fails: the default icon backstops every path.
package icon

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/webcask/webcask/internal/logfields"
	"github.com/webcask/webcask/internal/options"
	"github.com/webcask/webcask/internal/platform"
)

//go:embed assets/default.png
var defaultIcon []byte

// Source identifies which rung of the fallback chain produced the icon.
type Source string

const (
	SourceExplicitLocal   Source = "explicit-local"
	SourceExplicitRemote  Source = "explicit-remote"
	SourceAutoFavicon     Source = "auto-favicon"
	SourceFallbackDefault Source = "fallback-default"
)

// Resolved is the outcome of icon resolution: a converted icon file on
// disk plus where it came from and any warnings hit along the way.
type Resolved struct {
	// Path is the converted icon file, named per the platform descriptor.
	Path string
	// Source is the chain rung that produced the icon.
	Source Source
	// Warnings lists the failures that demoted resolution to lower rungs.
	Warnings []string
}

// candidate is one acquired payload awaiting conversion.
type candidate struct {
	data   []byte
	source Source
	origin string
}

// strategy acquires an icon payload from one rung of the chain.
type strategy func(ctx context.Context) (candidate, error)

// Pipeline acquires and converts icons for one build.
type Pipeline struct {
	fetch *fetcher
}

func NewPipeline(d platform.Descriptor) *Pipeline {
	return &Pipeline{fetch: newFetcher(d.UserAgent)}
}

// Resolve runs the fallback chain and writes the converted icon into
// workDir. It never returns an error: every acquisition or conversion
// failure demotes to the next rung, and the embedded default always
// succeeds.
func (p *Pipeline) Resolve(ctx context.Context, opts *options.Options, workDir string) Resolved {
	d := opts.Descriptor()
	destPath := filepath.Join(workDir, d.IconFile)

	var warnings []string
	for _, acquire := range p.chain(opts) {
		c, err := acquire(ctx)
		if err != nil {
			warnings = append(warnings, err.Error())
			slog.Warn("Icon source unavailable, trying next", "error", err)
			continue
		}
		if err := Convert(c.data, d, destPath); err != nil {
			warnings = append(warnings, fmt.Sprintf("icon from %s unusable: %v", c.origin, err))
			slog.Warn("Icon conversion failed, trying next source",
				logfields.Source(string(c.source)), "origin", c.origin, "error", err)
			continue
		}
		slog.Info("Icon resolved", logfields.Source(string(c.source)), logfields.Path(destPath))
		return Resolved{Path: destPath, Source: c.source, Warnings: warnings}
	}

	// Unreachable in practice: the last rung converts an embedded PNG.
	// Guard the contract anyway.
	fallback := filepath.Join(workDir, "icon.png")
	if err := os.WriteFile(fallback, defaultIcon, 0o644); err != nil {
		slog.Warn("Failed to write default icon", "error", err)
	}
	return Resolved{Path: fallback, Source: SourceFallbackDefault, Warnings: warnings}
}

// chain builds the ordered strategy list for one build. Explicit icons
// outrank discovered favicons, and the embedded default closes the chain.
func (p *Pipeline) chain(opts *options.Options) []strategy {
	var chain []strategy
	if opts.Icon != "" {
		if opts.IconIsRemote() {
			chain = append(chain, p.remoteIcon(opts.Icon))
		} else {
			chain = append(chain, p.localIcon(opts.Icon))
		}
	}
	if opts.TargetKind == options.TargetURL {
		chain = append(chain, p.pageFavicon(opts.Target))
	}
	chain = append(chain, embeddedDefault)
	return chain
}

func (p *Pipeline) localIcon(path string) strategy {
	return func(ctx context.Context) (candidate, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return candidate{}, fmt.Errorf("local icon %s: %w", path, err)
		}
		return candidate{data: data, source: SourceExplicitLocal, origin: path}, nil
	}
}

func (p *Pipeline) remoteIcon(iconURL string) strategy {
	return func(ctx context.Context) (candidate, error) {
		data, err := p.fetch.Fetch(ctx, iconURL)
		if err != nil {
			return candidate{}, fmt.Errorf("remote icon: %w", err)
		}
		return candidate{data: data, source: SourceExplicitRemote, origin: iconURL}, nil
	}
}

// pageFavicon probes the candidate URLs for the target page and returns
// the first payload that looks like an image.
func (p *Pipeline) pageFavicon(pageURL string) strategy {
	return func(ctx context.Context) (candidate, error) {
		for _, iconURL := range p.fetch.DiscoverFavicons(ctx, pageURL) {
			data, err := p.fetch.Fetch(ctx, iconURL)
			if err != nil {
				slog.Debug("Favicon candidate failed", logfields.URL(iconURL), "error", err)
				continue
			}
			if DetectFormat(data) == FormatUnknown {
				slog.Debug("Favicon candidate not an image", logfields.URL(iconURL))
				continue
			}
			return candidate{data: data, source: SourceAutoFavicon, origin: iconURL}, nil
		}
		return candidate{}, fmt.Errorf("no favicon found for %s", pageURL)
	}
}

func embeddedDefault(ctx context.Context) (candidate, error) {
	return candidate{data: defaultIcon, source: SourceFallbackDefault, origin: "embedded default"}, nil
}
