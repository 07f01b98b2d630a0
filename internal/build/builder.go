// Package build orchestrates a bundle build end to end: staging tree,
// template, icon, config composition, toolchain run, artifact collection.
// Stages run in a fixed order over shared state; the staging tree is
// cleaned up whichever way the run ends.
package build

import (
	"context"
	"log/slog"

	"github.com/webcask/webcask/internal/artifact"
	"github.com/webcask/webcask/internal/compose"
	"github.com/webcask/webcask/internal/errors"
	"github.com/webcask/webcask/internal/icon"
	"github.com/webcask/webcask/internal/logfields"
	"github.com/webcask/webcask/internal/options"
	"github.com/webcask/webcask/internal/platform"
	"github.com/webcask/webcask/internal/stage"
	"github.com/webcask/webcask/internal/toolchain"
)

// Builder runs one build for one validated option set.
type Builder struct {
	opts    *options.Options
	invoker toolchain.Invoker
}

func New(opts *options.Options) *Builder {
	return &Builder{opts: opts}
}

// WithInvoker swaps the toolchain invoker. Tests use this to avoid a real
// bundler on PATH.
func (b *Builder) WithInvoker(inv toolchain.Invoker) *Builder {
	if inv != nil {
		b.invoker = inv
	}
	return b
}

// Build executes the full pipeline and returns the report alongside the
// first fatal error, if any. The report is always non-nil.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	s := NewState(b.opts)

	if host := platform.Detect(); b.opts.Platform != host {
		slog.Warn("Target platform differs from host; the toolchain must be cross-capable",
			logfields.Platform(string(b.opts.Platform)), "host", string(host))
	}

	defer func() {
		if s.Tree == nil {
			return
		}
		if b.opts.Debug {
			slog.Info("Debug mode: staging tree preserved for inspection", logfields.Path(s.Tree.Root))
			return
		}
		s.Tree.Remove()
	}()

	err := runStages(ctx, s, b.pipeline().Build())
	s.Report.Finish(err)
	return s.Report, err
}

func (b *Builder) pipeline() *Pipeline {
	return NewPipeline().
		Add(StageCreateTree, b.createTree).
		Add(StageTemplate, b.materializeTemplate).
		Add(StageIcon, b.resolveIcon).
		Add(StageCompose, b.composeConfig).
		Add(StageAssets, b.stageAssets).
		Add(StageWriteConfigs, b.writeConfigs).
		Add(StageToolchain, b.runToolchain).
		Add(StageCollect, b.collectArtifacts)
}

func (b *Builder) createTree(ctx context.Context, s *State) error {
	tree, err := stage.NewTree()
	if err != nil {
		return errors.Staging(err, "create staging tree")
	}
	s.Tree = tree
	return nil
}

func (b *Builder) materializeTemplate(ctx context.Context, s *State) error {
	kind, err := stage.New(b.opts).MaterializeTemplate(ctx, s.Tree)
	if err != nil {
		return err
	}
	s.TemplateSource = kind
	return nil
}

func (b *Builder) resolveIcon(ctx context.Context, s *State) error {
	res := icon.NewPipeline(b.opts.Descriptor()).Resolve(ctx, b.opts, s.Tree.IconWork)
	s.Icon = res
	s.Report.IconSource = string(res.Source)
	for _, w := range res.Warnings {
		s.Report.AddWarning(w)
	}
	return nil
}

func (b *Builder) composeConfig(ctx context.Context, s *State) error {
	c, err := compose.ForPlatform(b.opts)
	if err != nil {
		return err
	}
	s.Composed = c
	return nil
}

func (b *Builder) stageAssets(ctx context.Context, s *State) error {
	stager := stage.New(b.opts)
	if _, err := stager.PlaceIcon(s.Tree, s.Icon.Path); err != nil {
		return err
	}
	staged, err := stager.PlaceInject(s.Tree)
	if err != nil {
		return err
	}
	if staged != nil {
		s.Composed.SetInjectList(staged)
	}
	return stager.PlaceLocalEntry(s.Tree)
}

func (b *Builder) writeConfigs(ctx context.Context, s *State) error {
	return stage.New(b.opts).WriteConfigs(s.Tree, s.Composed)
}

func (b *Builder) runToolchain(ctx context.Context, s *State) error {
	inv := b.invoker
	if inv == nil {
		inv = toolchain.NewInvoker(s.Composed)
	}
	outcome, err := inv.Invoke(ctx, s.Tree.AppDir)
	s.Outcome = outcome
	if err != nil {
		return err
	}
	if !outcome.BundleMarkerSeen {
		msg := "toolchain finished without reporting a bundling step; check the build config"
		slog.Warn("No bundling marker in toolchain output")
		s.Report.AddWarning(msg)
	}
	return nil
}

func (b *Builder) collectArtifacts(ctx context.Context, s *State) error {
	artifacts, err := artifact.NewCollector(b.opts).Collect(s.Tree)
	if err != nil {
		return err
	}
	s.Artifacts = artifacts
	s.Report.Artifacts = artifacts
	return nil
}
