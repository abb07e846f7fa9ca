package reporter

import (
	"fmt"
	"strings"

	"github.com/gookit/color"

	"github.com/ethanolivertroy/pacprune/internal/models"
)

// TerminalReporter outputs the outcome in a human-readable terminal format
type TerminalReporter struct{}

const separator = "\n------------\n"

// Report generates terminal output for the given outcome
func (r *TerminalReporter) Report(outcome *models.Outcome) ([]byte, error) {
	var sb strings.Builder

	if len(outcome.Anomalies) > 0 {
		sb.WriteString(separator)
		sb.WriteString(color.Warn.Sprintf("%d order anomalies, left for manual review:", len(outcome.Anomalies)))
		sb.WriteString("\n\n")
		for _, a := range outcome.Anomalies {
			sb.WriteString(fmt.Sprintf("%s: %s outranks newer %s (%s)\n", a.Name, a.Alternate, a.Best, a.Path))
		}
	}

	sb.WriteString(separator)
	sb.WriteString(fmt.Sprintf("%d files about to be removed...\n\n", len(outcome.Removed)))
	for _, p := range outcome.Removed {
		sb.WriteString(color.Error.Sprint(p))
		sb.WriteString("\n")
	}

	sb.WriteString(FormatIgnored(outcome.Ignored))

	sb.WriteString(separator)
	sb.WriteString(color.Info.Sprintf("%d packages kept.", len(outcome.Kept)))
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}

// FormatIgnored renders the ignored-files section
func FormatIgnored(ignored []models.IgnoredFile) string {
	var sb strings.Builder
	sb.WriteString(separator)
	sb.WriteString(fmt.Sprintf("%d files ignored...\n\n", len(ignored)))
	for _, f := range ignored {
		sb.WriteString(f.Path)
		if f.Reason != "" {
			sb.WriteString("\t")
			sb.WriteString(color.Gray.Sprintf("(%s)", f.Reason))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
