package output

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/webcask/webcask/internal/build"
)

// Color palette — named constants for the ANSI 256 colors used in the CLI.
var (
	// ColorCyan is used for identifiable nouns: targets, paths, artifact names.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for success markers.
	ColorGreen = lipgloss.Color("10")

	// ColorYellow is used for warnings carried into the summary.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for failure markers.
	ColorRed = lipgloss.Color("204")

	// ColorDimGray is used for structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles — map domain concepts to visual presentation.
var (
	// StyleNoun styles identifiable nouns (targets, platforms, artifact paths).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleSummary styles the headline of the build summary.
	StyleSummary = lipgloss.NewStyle().Bold(true)

	// StyleDim styles labels and separators.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleWarn styles warning lines.
	StyleWarn = lipgloss.NewStyle().Foreground(ColorYellow)

	// StyleFail styles failure headlines.
	StyleFail = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
)

// FormatCheckmark renders a green checkmark with a message.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreen).Render("✔")
	return check + " " + msg
}

// FormatCross renders a red cross with a message.
func FormatCross(msg string) string {
	cross := StyleFail.Render("✘")
	return cross + " " + msg
}

// summaryLabelWidth aligns the value column of summary detail lines.
const summaryLabelWidth = 10

func detailLine(label, value string) string {
	padding := summaryLabelWidth - len(label)
	if padding < 1 {
		padding = 1
	}
	return "  " + StyleDim.Render(label) + strings.Repeat(" ", padding) + StyleNoun.Render(value)
}

// RenderReport renders the end-of-build summary block for one report.
func RenderReport(r *build.Report) string {
	var b strings.Builder

	elapsed := r.Duration().Round(100 * time.Millisecond)
	switch r.Outcome {
	case build.OutcomeSuccess:
		b.WriteString(FormatCheckmark(StyleSummary.Render(fmt.Sprintf("Build succeeded in %s", elapsed))))
	case build.OutcomeWarning:
		b.WriteString(FormatCheckmark(StyleSummary.Render(fmt.Sprintf("Build succeeded with warnings in %s", elapsed))))
	case build.OutcomeCanceled:
		b.WriteString(FormatCross(StyleSummary.Render(fmt.Sprintf("Build canceled after %s", elapsed))))
	default:
		b.WriteString(FormatCross(StyleSummary.Render(fmt.Sprintf("Build failed after %s", elapsed))))
	}
	b.WriteString("\n")

	if r.Target != "" {
		b.WriteString(detailLine("target", r.Target) + "\n")
	}
	if r.Platform != "" {
		b.WriteString(detailLine("platform", r.Platform) + "\n")
	}
	if r.IconSource != "" {
		b.WriteString(detailLine("icon", r.IconSource) + "\n")
	}

	if len(r.Artifacts) > 0 {
		b.WriteString("  " + StyleDim.Render("artifacts") + "\n")
		for _, a := range r.Artifacts {
			b.WriteString("    " + StyleNoun.Render(filepath.Base(a)) + StyleDim.Render("  "+filepath.Dir(a)) + "\n")
		}
	}

	for _, w := range r.Warnings {
		b.WriteString("  " + StyleWarn.Render("warning: "+w) + "\n")
	}

	return b.String()
}
