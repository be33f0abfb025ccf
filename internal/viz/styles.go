package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles derived from one theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Unit   lipgloss.Style
	Warn   lipgloss.Style
	Muted  lipgloss.Style
	Good   lipgloss.Style
	Bad    lipgloss.Style
	Panel  lipgloss.Style
	Header lipgloss.Style

	sparkHigh lipgloss.Style
	sparkMid  lipgloss.Style
	sparkLow  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label: lipgloss.NewStyle().Foreground(t.Secondary),
		Value: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Unit:  lipgloss.NewStyle().Foreground(t.Muted),
		Warn:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Muted: lipgloss.NewStyle().Foreground(t.Muted),
		Good:  lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Bad:   lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),

		sparkHigh: lipgloss.NewStyle().Foreground(t.Success),
		sparkMid:  lipgloss.NewStyle().Foreground(t.Accent),
		sparkLow:  lipgloss.NewStyle().Foreground(t.Error),
	}
}

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders a bar for a fraction in [0, 1].
func (s Styles) ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if fraction > 0.8 {
		return s.sparkHigh.Render(bar)
	} else if fraction > 0.4 {
		return s.sparkMid.Render(bar)
	}
	return s.sparkLow.Render(bar)
}

// Sparkline renders a one-line chart of the last width values.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			b.WriteString(s.sparkHigh.Render(c))
		case norm > 0.3:
			b.WriteString(s.sparkMid.Render(c))
		default:
			b.WriteString(s.sparkLow.Render(c))
		}
	}
	return b.String()
}

// Separator is a muted horizontal rule.
func (s Styles) Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return s.Muted.Render(left + " ◆ " + right)
}
