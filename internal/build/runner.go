package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/webcask/webcask/internal/errors"
	"github.com/webcask/webcask/internal/logfields"
)

// runStages executes stages in order, recording timing and stopping on the
// first error. Context cancellation between stages aborts before the next
// stage starts and marks the report canceled.
func runStages(ctx context.Context, s *State, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			s.Report.Outcome = OutcomeCanceled
			return errors.WrapError(ctx.Err(), errors.CategoryInternal, "build canceled before stage "+string(st.Name))
		default:
		}

		slog.Debug("Starting stage", logfields.Stage(string(st.Name)))
		t0 := time.Now()
		err := st.Fn(ctx, s)
		dur := time.Since(t0)
		s.Report.RecordStage(st.Name, dur)

		if err != nil {
			if ctx.Err() != nil {
				s.Report.Outcome = OutcomeCanceled
			}
			slog.Error("Stage failed", logfields.Stage(string(st.Name)), logfields.DurationMS(float64(dur.Milliseconds())), "error", err)
			return err
		}
		slog.Debug("Stage completed", logfields.Stage(string(st.Name)), logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}
