package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	primaryColor   = lipgloss.Color("#A78BFA") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	mutedColor     = lipgloss.Color("#9CA3AF") // Gray
	warningColor   = lipgloss.Color("#F59E0B") // Amber

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	okStyle    = lipgloss.NewStyle().Foreground(secondaryColor)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	warnStyle  = lipgloss.NewStyle().Foreground(warningColor)
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// render styles text only when w is a terminal so piped output stays plain.
func render(w io.Writer, style lipgloss.Style, text string) string {
	if !isTerminal(w) {
		return text
	}
	return style.Render(text)
}
