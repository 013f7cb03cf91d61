package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar draws row progress for one day table.
type ProgressBar struct {
	ui      *UI
	bar     progress.Model
	label   string
	total   int64
	current int64
	start   time.Time
	mu      sync.Mutex

	// plain output prints one line per quarter
	quarter int
}

// NewProgressBar creates a new progress bar.
func (u *UI) NewProgressBar(label string, total int64) *ProgressBar {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	return &ProgressBar{
		ui:    u,
		bar:   bar,
		label: label,
		total: total,
		start: time.Now(),
	}
}

// Update sets the current progress value.
func (p *ProgressBar) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render()
}

func (p *ProgressBar) fraction() float64 {
	if p.total <= 0 {
		return 1
	}
	pct := float64(p.current) / float64(p.total)
	if pct > 1 {
		pct = 1
	}
	return pct
}

// render draws the bar; callers hold p.mu.
func (p *ProgressBar) render() {
	pct := p.fraction()

	if !p.ui.shouldStyle() {
		q := int(pct * 4)
		if q > p.quarter && q < 4 {
			p.quarter = q
			p.ui.printf("  %s: %d%% (%d/%d)\n", p.label, q*25, p.current, p.total)
		}
		return
	}

	labelStyle := lipgloss.NewStyle().Width(10)
	countStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	p.ui.printf("\r\033[K  %s %s %s",
		labelStyle.Render(p.label),
		p.bar.ViewAs(pct),
		countStyle.Render(fmt.Sprintf("%d/%d", p.current, p.total)),
	)
}

// Complete finishes the progress bar with a success indicator.
func (p *ProgressBar) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := formatDuration(time.Since(p.start))
	if !p.ui.shouldStyle() {
		p.ui.printf("  %s: %d rows done in %s\n", p.label, p.total, elapsed)
		return
	}

	labelStyle := lipgloss.NewStyle().Width(10)

	p.ui.printf("\r\033[K  %s %s %s %s\n",
		StyleSuccess.Render(SymbolSuccess),
		labelStyle.Render(p.label),
		StyleSuccess.Render(fmt.Sprintf("%d rows", p.total)),
		StyleMuted.Render(elapsed),
	)
}

// Fail finishes the progress bar with an error indicator.
func (p *ProgressBar) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ui.shouldStyle() {
		p.ui.printf("  %s: FAILED: %v\n", p.label, err)
		return
	}

	labelStyle := lipgloss.NewStyle().Width(10)

	p.ui.printf("\r\033[K  %s %s %s\n",
		StyleError.Render(SymbolError),
		labelStyle.Render(p.label),
		StyleError.Render(err.Error()),
	)
}
