package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

// HeaderStyle formats table column headers.
var HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)

// PrintTable writes rows as aligned columns under a styled header and a
// dashed rule sized to each header.
func PrintTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
		rules[i] = strings.Repeat("-", max(lipgloss.Width(h), 4))
	}
	fmt.Fprintln(tw, strings.Join(styled, "\t"))
	fmt.Fprintln(tw, strings.Join(rules, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Empty renders the placeholder shown instead of an empty table.
func Empty(what, hint string) string {
	msg := "No " + what + " found."
	if hint != "" {
		msg += " " + hint
	}
	return InfoStyle.Render(msg)
}
