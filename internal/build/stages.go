package build

import (
	"context"
)

// Stage is a discrete unit of work in the bundle build.
type Stage func(ctx context.Context, s *State) error

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StageCreateTree   StageName = "create_tree"
	StageTemplate     StageName = "materialize_template"
	StageIcon         StageName = "resolve_icon"
	StageCompose      StageName = "compose_config"
	StageAssets       StageName = "stage_assets"
	StageWriteConfigs StageName = "write_configs"
	StageToolchain    StageName = "run_toolchain"
	StageCollect      StageName = "collect_artifacts"
)

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ Defs []StageDef }

func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StageDef, 0, 8)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.Defs = append(p.Defs, StageDef{Name: name, Fn: fn})
	return p
}

// AddIf appends a stage only if cond is true.
func (p *Pipeline) AddIf(cond bool, name StageName, fn Stage) *Pipeline {
	if cond {
		p.Add(name, fn)
	}
	return p
}

// Build returns a copy of the stage definitions; later Pipeline mutations
// do not affect a running build.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.Defs))
	copy(out, p.Defs)
	return out
}
