package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/hostbench/hostbench/internal/bench"
	"github.com/hostbench/hostbench/internal/compare"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	s.Selected = s.Selected.
		Foreground(ColorPrimary).
		Background(ColorMuted).
		Bold(false)

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string for CLI output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// RenderResultsTable renders the stored results as a listing: one row per
// host with its identity, when it ran, and how many metrics it captured.
func RenderResultsTable(results []*bench.HostResult) string {
	if len(results) == 0 {
		return "No results stored yet. Run 'hostbench run' first."
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.HostID,
			r.Name(),
			r.SystemInfo.CPUModel,
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(len(r.Metrics)),
		})
	}

	return RenderSimpleTable([]TableColumn{
		{Title: "HOST", Width: 18},
		{Title: "NAME", Width: 18},
		{Title: "CPU", Width: 32},
		{Title: "WHEN", Width: 17},
		{Title: "METRICS", Width: 8},
	}, rows)
}

// RenderCompareTable renders the cross-host comparison: one row per metric,
// one column per host, the best value in each row highlighted. Hosts
// missing a metric show a muted dash.
func RenderCompareTable(results []*bench.HostResult, rankings []compare.MetricRanking) string {
	if len(results) == 0 {
		return "No results to compare. Run 'hostbench run' on at least one host."
	}

	winnerStyle := lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	const labelWidth = 20
	colWidth := 12
	for _, r := range results {
		if w := lipgloss.Width(r.Name()) + 3; w > colWidth {
			colWidth = w
		}
	}

	var b strings.Builder

	header := padRight("METRIC", labelWidth)
	for _, r := range results {
		header += padRight(r.Name(), colWidth)
	}
	b.WriteString(headerStyle.Render(header) + "\n")

	for _, ranking := range rankings {
		if len(ranking.Values) == 0 {
			continue
		}

		line := padRight(compare.MetricLabel(ranking.Metric), labelWidth)
		for _, r := range results {
			v, ok := ranking.Values[r.HostID]
			if !ok {
				line += padRight(mutedStyle.Render("-"), colWidth)
				continue
			}
			cell := formatMetricValue(v)
			if isWinner(ranking.Winners, r.HostID) {
				cell = winnerStyle.Render(SymbolWinner + " " + cell)
			}
			line += padRight(cell, colWidth)
		}
		b.WriteString(line + "\n")
	}

	counts := compare.WinCounts(rankings)
	footer := padRight("Wins", labelWidth)
	for _, r := range results {
		footer += padRight(strconv.Itoa(counts[r.HostID]), colWidth)
	}
	b.WriteString(mutedStyle.Render(footer) + "\n")

	return b.String()
}

func isWinner(winners []string, hostID string) bool {
	for _, id := range winners {
		if id == hostID {
			return true
		}
	}
	return false
}

// formatMetricValue keeps big throughput numbers readable and small
// latency numbers precise.
func formatMetricValue(v float64) string {
	switch {
	case v >= 1000:
		return fmt.Sprintf("%.0f", v)
	case v >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// DoctorCheckRow represents a row in the doctor diagnostic table.
type DoctorCheckRow struct {
	Status     string // "pass", "warn", "fail"
	Category   string // Check category
	Message    string // Check result message
	Suggestion string // Suggestion for fixing (if failed)
}

// RenderDoctorTable renders doctor check results grouped by category.
func RenderDoctorTable(rows []DoctorCheckRow) string {
	if len(rows) == 0 {
		return "No checks to display"
	}

	successStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	categories := make(map[string][]DoctorCheckRow)
	categoryOrder := []string{}
	for _, row := range rows {
		if _, exists := categories[row.Category]; !exists {
			categoryOrder = append(categoryOrder, row.Category)
		}
		categories[row.Category] = append(categories[row.Category], row)
	}

	var output string
	for _, cat := range categoryOrder {
		output += headerStyle.Render(cat) + "\n"

		for _, row := range categories[cat] {
			var statusIcon string
			switch row.Status {
			case "pass":
				statusIcon = successStyle.Render(SymbolComplete)
			case "warn":
				statusIcon = warnStyle.Render(SymbolComplete)
			case "fail":
				statusIcon = errorStyle.Render(SymbolFail)
			default:
				statusIcon = mutedStyle.Render(SymbolPending)
			}

			output += "  " + statusIcon + " " + row.Message + "\n"

			if row.Suggestion != "" && row.Status != "pass" {
				output += "    " + mutedStyle.Render(row.Suggestion) + "\n"
			}
		}
		output += "\n"
	}

	return output
}

// padRight pads a string to the specified width, accounting for ANSI codes
// when calculating visible length.
func padRight(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
