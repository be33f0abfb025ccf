package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ibsim/internal/viz"
)

// Console writes labelled values and warnings to a terminal. It is safe for
// concurrent use.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	styles viz.Styles
}

func NewConsole(w io.Writer, theme viz.Theme) *Console {
	return &Console{w: w, styles: viz.NewStyles(theme)}
}

func (c *Console) Line(label string, value float64, unit string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.w, "%s %s %s\n",
		c.styles.Label.Render(fmt.Sprintf("%-28s", label)),
		c.styles.Value.Render(fmt.Sprintf("%14.6e", value)),
		c.styles.Unit.Render(unit))
}

func (c *Console) Warn(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.w, c.styles.Warn.Render("warning: "+msg))
}

// Title prints a section heading.
func (c *Console) Title(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.w, c.styles.Title.Render(text))
}

// Text prints pre-rendered text unchanged.
func (c *Console) Text(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(c.w, lipgloss.NewStyle().Render(s))
}

// Discard drops everything.
type Discard struct{}

func (Discard) Line(string, float64, string) {}
func (Discard) Warn(string)                  {}
