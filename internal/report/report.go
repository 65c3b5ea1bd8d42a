// pattern: Functional Core
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"vmapps/internal/scaffold"
)

// Render formats a sync report for the terminal, entries in manifest order.
// Plain mode strips styling for non-TTY output and logs.
func Render(r *scaffold.Report, themeName string, plain bool) string {
	styles := NewStyles(themeName)

	var b strings.Builder
	for _, res := range r.Results {
		switch res.Outcome {
		case scaffold.OutcomeCreated:
			fmt.Fprintf(&b, "%s %s\n", styles.CreatedStyle().Render("created"), res.AppName)
		case scaffold.OutcomeSkipped:
			fmt.Fprintf(&b, "%s %s -- already created\n", styles.SkippedStyle().Render("skipped"), res.AppName)
		case scaffold.OutcomeFailed:
			fmt.Fprintf(&b, "%s %s: %v\n", styles.FailedStyle().Render("failed"), res.AppName, res.Err)
		}
	}

	created := len(r.Created())
	skipped := len(r.Skipped())
	failed := len(r.Failed())
	summary := fmt.Sprintf("%d created, %d skipped, %d failed", created, skipped, failed)
	if failed > 0 {
		b.WriteString(styles.FailedStyle().Render(summary))
	} else {
		b.WriteString(styles.CountStyle().Render(summary))
	}
	b.WriteString("\n")

	out := b.String()
	if plain {
		return ansi.Strip(out)
	}
	return out
}
