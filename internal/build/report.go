package build

import (
	"time"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report captures what one build run did: per-stage timings, the icon
// provenance, produced artifacts, and the failure if there was one.
type Report struct {
	Start time.Time
	End   time.Time

	StageDurations map[StageName]time.Duration
	StageOrder     []StageName

	Outcome  Outcome
	Err      error
	Warnings []string

	Target     string
	Platform   string
	IconSource string
	Artifacts  []string
}

func NewReport() *Report {
	return &Report{
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
	}
}

// RecordStage stores a stage duration and remembers execution order.
func (r *Report) RecordStage(name StageName, d time.Duration) {
	if _, seen := r.StageDurations[name]; !seen {
		r.StageOrder = append(r.StageOrder, name)
	}
	r.StageDurations[name] = d
}

func (r *Report) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Finish stamps the end time and derives the outcome from the recorded
// error and warnings, unless a more specific outcome was already set.
func (r *Report) Finish(err error) {
	r.End = time.Now()
	r.Err = err
	if r.Outcome != "" {
		return
	}
	switch {
	case err != nil:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Duration is the wall time of the whole run.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}
