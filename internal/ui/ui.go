// Package ui provides styled terminal output for the datagen CLI.
// Output is styled with lipgloss on a terminal and falls back to plain
// text when stdout is redirected or NO_COLOR is set.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// UI holds the terminal state and provides styled output methods.
type UI struct {
	Out     io.Writer
	IsTTY   bool
	Width   int
	NoColor bool
}

// KV represents a key-value pair for summary displays.
type KV struct {
	Key   string
	Value string
}

// noColorEnv is the standard environment variable to disable colors.
var noColorEnv = os.Getenv("NO_COLOR") != ""

// New creates a UI writing to stdout with TTY detection.
func New() *UI {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	width := 80
	if isTTY {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	return &UI{
		Out:     os.Stdout,
		IsTTY:   isTTY,
		Width:   width,
		NoColor: noColorEnv,
	}
}

// NewPlain creates an unstyled UI writing to w.
func NewPlain(w io.Writer) *UI {
	return &UI{Out: w, Width: 80, NoColor: true}
}

// SetNoColor disables colors and animations.
func (u *UI) SetNoColor(noColor bool) {
	u.NoColor = noColor
}

// shouldStyle returns true if we should use styled output.
func (u *UI) shouldStyle() bool {
	return u.IsTTY && !u.NoColor
}

func (u *UI) printf(format string, args ...any) {
	fmt.Fprintf(u.Out, format, args...)
}

// Header renders a bordered header box.
func (u *UI) Header(title string) string {
	if !u.shouldStyle() {
		return fmt.Sprintf("=== %s ===", title)
	}

	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 2)

	return style.Render(title)
}

// KeyValue renders a styled key-value pair.
func (u *UI) KeyValue(key, value string) string {
	if !u.shouldStyle() {
		return fmt.Sprintf("%-12s %s", key+":", value)
	}

	keyStyle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(14)
	valueStyle := lipgloss.NewStyle().
		Bold(true)

	return "  " + keyStyle.Render(key) + " " + valueStyle.Render(value)
}

// Success renders a success message with a green checkmark.
func (u *UI) Success(msg string) string {
	if !u.shouldStyle() {
		return "[OK] " + msg
	}

	return StyleSuccess.Render(SymbolSuccess+" ") + msg
}

// Error renders an error message with a red X.
func (u *UI) Error(msg string) string {
	if !u.shouldStyle() {
		return "[FAILED] " + msg
	}

	return StyleError.Render(SymbolError + " " + msg)
}

// Warning renders a warning message.
func (u *UI) Warning(msg string) string {
	if !u.shouldStyle() {
		return "[WARN] " + msg
	}

	return StyleWarning.Render(SymbolWarning + " " + msg)
}

// Muted renders muted/dim text.
func (u *UI) Muted(msg string) string {
	if !u.shouldStyle() {
		return msg
	}

	return StyleMuted.Render(msg)
}

// Bold renders bold text.
func (u *UI) Bold(msg string) string {
	if !u.shouldStyle() {
		return msg
	}

	return lipgloss.NewStyle().Bold(true).Render(msg)
}

// SummaryBox renders a bordered summary section. A "Status" or "IDs"
// value is coloured by whether it reads as success or failure.
func (u *UI) SummaryBox(title string, items []KV) string {
	if !u.shouldStyle() {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("\n=== %s ===\n", title))
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("%-16s %s\n", item.Key+":", item.Value))
		}
		return sb.String()
	}

	maxKeyWidth := 0
	for _, item := range items {
		if len(item.Key) > maxKeyWidth {
			maxKeyWidth = len(item.Key)
		}
	}

	var lines []string
	for _, item := range items {
		keyStyle := lipgloss.NewStyle().Foreground(ColorMuted).Width(maxKeyWidth + 2)
		valueStyle := lipgloss.NewStyle().Bold(true)

		value := item.Value
		lower := strings.ToLower(value)
		switch {
		case item.Key == "Status" && strings.Contains(lower, "success"):
			value = StyleSuccess.Render(SymbolSuccess + " " + value)
		case item.Key == "Status" && strings.Contains(lower, "fail"):
			value = StyleError.Render(SymbolError + " " + value)
		default:
			value = valueStyle.Render(value)
		}

		lines = append(lines, "  "+keyStyle.Render(item.Key)+" "+value)
	}
	content := strings.Join(lines, "\n")

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSuccess)

	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorSuccess).
		Padding(0, 1)

	return "\n" + titleStyle.Render("  "+title) + "\n" + boxStyle.Render(content)
}

// Section prints a section header.
func (u *UI) Section(title string) {
	if !u.shouldStyle() {
		u.printf("\n%s\n", title)
		return
	}

	u.printf("\n%s\n", lipgloss.NewStyle().Bold(true).Render(title))
}

// Print prints a regular message.
func (u *UI) Print(msg string) {
	fmt.Fprintln(u.Out, msg)
}

// PrintLoadResult prints one line of a table import summary.
func (u *UI) PrintLoadResult(name string, rows int64, duration time.Duration, err error) {
	if !u.shouldStyle() {
		if err != nil {
			u.printf("  %-28s FAILED\n", name+":")
			u.printf("    Error: %v\n", err)
		} else {
			u.printf("  %-28s %s rows in %s\n", name+":", formatRowCount(rows), formatDuration(duration))
		}
		return
	}

	nameStyle := lipgloss.NewStyle().Width(28)
	if err != nil {
		u.printf("  %s %s %s\n",
			StyleError.Render(SymbolError),
			nameStyle.Render(name),
			StyleError.Render("FAILED"),
		)
		u.printf("    %s\n", StyleError.Render(err.Error()))
		return
	}
	u.printf("  %s %s %s\n",
		StyleSuccess.Render(SymbolSuccess),
		nameStyle.Render(name),
		fmt.Sprintf("%s rows in %s", formatRowCount(rows), formatDuration(duration)),
	)
}

// PrintSkipped prints a skipped message.
func (u *UI) PrintSkipped(name string, reason string) {
	if !u.shouldStyle() {
		u.printf("  %-28s SKIPPED (%s)\n", name+":", reason)
		return
	}

	nameStyle := lipgloss.NewStyle().Width(28)
	u.printf("  %s %s %s\n",
		StyleWarning.Render(SymbolWarning),
		nameStyle.Render(name),
		StyleMuted.Render("skipped: "+reason),
	)
}

// DurationSince returns formatted duration since a time.
func DurationSince(t time.Time) string {
	return formatDuration(time.Since(t))
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", mins, secs)
	}
	hrs := int(d.Hours())
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hrs, mins)
}

// formatRowCount formats a row count with K/M suffix.
func formatRowCount(rows int64) string {
	if rows >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(rows)/1_000_000)
	}
	if rows >= 1_000 {
		return fmt.Sprintf("%.1fK", float64(rows)/1_000)
	}
	return fmt.Sprintf("%d", rows)
}
