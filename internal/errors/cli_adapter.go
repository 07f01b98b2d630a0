package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for
// the command line frontend.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	var be *BuildError
	if stderrors.As(err, &be) {
		return a.exitCodeFromBuildError(be)
	}

	return 1
}

// exitCodeFromBuildError maps BuildError categories to exit codes.
func (a *CLIErrorAdapter) exitCodeFromBuildError(err *BuildError) int {
	switch err.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryNetwork, CategoryIcon:
		return 8 // External resource error
	case CategoryStaging, CategoryFileSystem:
		return 11 // Staging error
	case CategoryToolchain:
		return 12 // Toolchain error
	case CategoryArtifact:
		return 13 // Artifact error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	var be *BuildError
	if stderrors.As(err, &be) {
		return a.formatBuildError(be)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatBuildError formats a BuildError for display. Toolchain errors append
// the captured stderr tail so the underlying build failure is visible without
// rerunning.
func (a *CLIErrorAdapter) formatBuildError(err *BuildError) string {
	base := err.Message
	if a.verbose {
		base = err.Error()
	} else {
		switch err.Category {
		case CategoryValidation, CategoryConfig:
			// Message alone; these are actionable as-is.
		default:
			base = fmt.Sprintf("%s: %s", err.Category, err.Message)
		}
	}

	if tail, ok := err.Context["stderr_tail"].([]string); ok && len(tail) > 0 {
		base += "\n--- toolchain stderr (last lines) ---"
		for _, line := range tail {
			base += "\n  " + line
		}
	}
	if searched, ok := err.Context["searched"].([]string); ok && len(searched) > 0 {
		base += "\nsearched:"
		for _, dir := range searched {
			base += "\n  " + dir
		}
	}
	return base
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(exitCode)
}

// shouldLog determines if an error should be logged in addition to being
// printed.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	var be *BuildError
	if stderrors.As(err, &be) {
		return be.Category == CategoryInternal || be.Severity == SeverityFatal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	var be *BuildError
	if stderrors.As(err, &be) {
		level := a.slogLevelFromSeverity(be.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(be.Category)),
		}
		a.logger.LogAttrs(nil, level, be.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts BuildError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityFatal:
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
