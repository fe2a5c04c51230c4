package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DividerWidth is the default width for divider lines.
const DividerWidth = 64

// PhaseDisplay renders probe progress to an output writer.
type PhaseDisplay struct {
	w io.Writer
}

// NewPhaseDisplay creates a new phase display writing to w.
func NewPhaseDisplay(w io.Writer) *PhaseDisplay {
	return &PhaseDisplay{w: w}
}

// RenderProgress renders a probe in progress.
// Shows: ◐ [2/5] Running cpu probe...
func (pd *PhaseDisplay) RenderProgress(step, total int, name string) {
	style := lipgloss.NewStyle().Foreground(ColorSecondary)
	fmt.Fprintf(pd.w, "\r%s [%d/%d] %s...", style.Render(SymbolProgress), step, total, name)
}

// RenderSuccess renders a completed probe. A zero duration omits the
// timing suffix.
// Shows: ● cpu probe 10.2s
func (pd *PhaseDisplay) RenderSuccess(name string, duration time.Duration) {
	pd.clearLine()

	symbolStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	if duration == 0 {
		fmt.Fprintf(pd.w, "%s %s\n", symbolStyle.Render(SymbolComplete), name)
		return
	}

	timingStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	fmt.Fprintf(pd.w, "%s %s %s\n",
		symbolStyle.Render(SymbolComplete),
		name,
		timingStyle.Render(formatDuration(duration)),
	)
}

// RenderFailed renders a failed probe.
// Shows: ✗ disk probe (timed out)
func (pd *PhaseDisplay) RenderFailed(name string, reason string) {
	pd.clearLine()

	symbolStyle := lipgloss.NewStyle().Foreground(ColorError)
	reasonStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	if reason != "" {
		fmt.Fprintf(pd.w, "%s %s %s\n",
			symbolStyle.Render(SymbolFail), name, reasonStyle.Render("("+reason+")"))
		return
	}
	fmt.Fprintf(pd.w, "%s %s\n", symbolStyle.Render(SymbolFail), name)
}

// RenderSkipped renders a skipped probe.
// Shows: ⊘ network probe (no tools)
func (pd *PhaseDisplay) RenderSkipped(name string, reason string) {
	pd.clearLine()

	symbolStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	reasonStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	if reason != "" {
		fmt.Fprintf(pd.w, "%s %s %s\n",
			symbolStyle.Render(SymbolSkipped), name, reasonStyle.Render("("+reason+")"))
		return
	}
	fmt.Fprintf(pd.w, "%s %s\n", symbolStyle.Render(SymbolSkipped), name)
}

// Divider renders a horizontal line separating probe progress from results.
func (pd *PhaseDisplay) Divider() {
	style := lipgloss.NewStyle().Foreground(ColorMuted)
	fmt.Fprintf(pd.w, "\n%s\n\n", style.Render(strings.Repeat("━", DividerWidth)))
}

// Newline writes an empty line.
func (pd *PhaseDisplay) Newline() {
	fmt.Fprintln(pd.w)
}

// clearLine clears the current line so a finished probe overwrites its
// in-progress spinner.
func (pd *PhaseDisplay) clearLine() {
	fmt.Fprint(pd.w, "\r"+strings.Repeat(" ", 80)+"\r")
}

// formatDuration renders durations compactly: 340ms, 2.3s, 1m12s.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		m := int(d.Minutes())
		s := int(d.Seconds()) - m*60
		return fmt.Sprintf("%dm%ds", m, s)
	}
}
