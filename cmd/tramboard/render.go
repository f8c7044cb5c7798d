package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tramboard/internal/departure"
	"tramboard/internal/messages"
	"tramboard/internal/query"
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true).Padding(1, 0, 0, 0)
	lineStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	minutesStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(8).Align(lipgloss.Right)
	onTimeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	delayedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	cancelledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Strikethrough(true)
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func renderResult(w io.Writer, res query.Result, msgs *messages.Printer) {
	if res.Message != "" {
		style := infoStyle
		if res.Failed() {
			style = errorStyle
		}
		fmt.Fprintln(w, style.Render(res.Message))
	}

	if res.Kind == query.InvalidSelection && len(res.Candidates) > 0 {
		for _, c := range res.Candidates {
			fmt.Fprintf(w, "  • %s\n", c)
		}
		fmt.Fprintln(w, infoStyle.Render(`--pick "<name>"`))
	}

	if len(res.Departures) == 0 {
		return
	}

	fmt.Fprintln(w, titleStyle.Render(msgs.DeparturesAt(res.Stop.Name)))
	for _, g := range departure.GroupByLine(res.Departures) {
		fmt.Fprintf(w, "\n%s\n", lineStyle.Render(g.Line))
		for _, d := range g.Departures {
			fmt.Fprintf(w, "  %s %s  %s  %s\n",
				timeStyle.Render(d.Time),
				minutesStyle.Render(msgs.Minutes(d.MinutesUntil)),
				d.Destination,
				statusStyle(d.Status).Render(d.Status.String()),
			)
		}
	}
	fmt.Fprintln(w)
}

func statusStyle(s departure.Status) lipgloss.Style {
	switch s.Kind {
	case departure.Cancelled:
		return cancelledStyle
	case departure.Delayed:
		return delayedStyle
	default:
		return onTimeStyle
	}
}

func renderList(w io.Writer, title string, names []string, mark func(string) string) {
	fmt.Fprintln(w, lineStyle.Render(title))
	if len(names) == 0 {
		fmt.Fprintln(w, infoStyle.Render("  (empty)"))
		return
	}
	for i, n := range names {
		fmt.Fprintf(w, "  %d. %s%s\n", i+1, n, mark(n))
	}
}

func noMark(string) string { return "" }

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
