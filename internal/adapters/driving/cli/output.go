package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// painter renders styles only when writing to a terminal.
type painter struct {
	styled bool
}

func newPainter(w io.Writer) painter {
	return painter{styled: isTerminal(w)}
}

func (p painter) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p painter) ok(text string) string     { return p.render(okStyle, text) }
func (p painter) fail(text string) string   { return p.render(failStyle, text) }
func (p painter) dim(text string) string    { return p.render(dimStyle, text) }
func (p painter) header(text string) string { return p.render(headerStyle, text) }
