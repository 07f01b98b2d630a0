package build

import (
	"github.com/webcask/webcask/internal/compose"
	"github.com/webcask/webcask/internal/icon"
	"github.com/webcask/webcask/internal/options"
	"github.com/webcask/webcask/internal/stage"
	"github.com/webcask/webcask/internal/template"
	"github.com/webcask/webcask/internal/toolchain"
)

// State is the shared context flowing through the build stages. Each stage
// reads what earlier stages produced and fills in its own slot.
type State struct {
	Opts *options.Options

	Tree           *stage.Tree
	TemplateSource template.SourceKind
	Icon           icon.Resolved
	Composed       *compose.Composed
	Outcome        *toolchain.ExitOutcome
	Artifacts      []string

	Report *Report
}

func NewState(opts *options.Options) *State {
	r := NewReport()
	r.Target = opts.Target
	r.Platform = string(opts.Platform)
	return &State{Opts: opts, Report: r}
}
