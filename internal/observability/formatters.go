// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talent-pool/internal/recompute"
	"github.com/jonathan/talent-pool/internal/scoring"
	"github.com/jonathan/talent-pool/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// barWidth is the width of a component's score bar
	barWidth = 20
	// maxIDsToShow bounds the failed-ID list in batch summaries
	maxIDsToShow = 5
)

// Printer handles formatted output for CLI commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// bar renders value out of limit as a fixed-width ASCII bar.
func bar(value, limit int) string {
	if limit <= 0 {
		return strings.Repeat(".", barWidth)
	}
	filled := min(max(value*barWidth/limit, 0), barWidth)
	return strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
}

// PrintBreakdown outputs each score component against its cap.
func (p *Printer) PrintBreakdown(c *types.Candidate, b types.ScoreBreakdown, w scoring.WeightScheme) {
	if c == nil {
		return
	}

	rows := []struct {
		label string
		value int
		limit int
	}{
		{"Projects", b.Projects, w.Projects},
		{"Experience", b.Experience, w.Experience},
		{"Skills", b.Skills, w.Skills},
		{"Coding", b.Coding, w.Coding},
		{"Achievements", b.Achievements, w.Achievements},
		{"Completeness", b.Completeness, w.Completeness},
		{"Recency", b.Recency, w.Recency},
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate: %s\n", c.Name))
	sb.WriteString(fmt.Sprintf("ID:        %s\n", c.ID))
	sb.WriteString(fmt.Sprintf("Version:   v%d\n\n", w.Version))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-13s %3d/%-3d %s\n", r.label, r.value, r.limit, bar(r.value, r.limit)))
	}
	sb.WriteString(fmt.Sprintf("\n%-13s %3d/%-3d", "TOTAL", b.Total, scoring.MaxTotal))

	p.printBox("PROFILE SCORE", sb.String())
}

// PrintRecomputeResult outputs a batch summary.
func (p *Printer) PrintRecomputeResult(r *recompute.Result) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Selected:  %d\n", r.Selected))
	sb.WriteString(fmt.Sprintf("Updated:   %d\n", r.UpdatedCount))
	sb.WriteString(fmt.Sprintf("Failed:    %d", len(r.FailedIDs)))
	if r.Truncated {
		sb.WriteString("\nTruncated: deadline reached before all candidates were scored")
	}
	if len(r.FailedIDs) > 0 {
		sb.WriteString("\n\nFailed candidates:")
		count := min(len(r.FailedIDs), maxIDsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("\n  - %s", r.FailedIDs[i]))
		}
		if len(r.FailedIDs) > maxIDsToShow {
			sb.WriteString(fmt.Sprintf("\n  ... and %d more", len(r.FailedIDs)-maxIDsToShow))
		}
	}

	p.printBox("RECOMPUTE", sb.String())
}
