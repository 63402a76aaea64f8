package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"clausegen/internal/clauses"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func printHeading(w io.Writer, text string) {
	fmt.Fprintln(w, headingStyle.Render(text))
}

// printClauses writes one clause per line, optionally tagged with its
// category.
func printClauses(w io.Writer, set clauses.ClauseSet, categories bool) {
	if set.Floundered {
		fmt.Fprintln(w, errorStyle.Render("  (floundered: self type unknown)"))
		return
	}
	if set.Len() == 0 {
		fmt.Fprintln(w, labelStyle.Render("  (no clauses)"))
		return
	}
	for _, c := range set.Clauses {
		if categories {
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-18s", "["+c.Category.String()+"]")), c)
			continue
		}
		fmt.Fprintf(w, "  %s\n", c)
	}
}
