package tui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorAccent = lipgloss.Color("#5B8DEF")
	colorTitle  = lipgloss.Color("#FF6B6B")
	colorMuted  = lipgloss.Color("#AAAAAA")
	colorBorder = lipgloss.Color("#444444")
)

// Banner frames name with '#':
//
//	########
//	# name #
//	########
//
// Color is only emitted when w is a terminal.
func Banner(w io.Writer, name string) string {
	rule := strings.Repeat("#", len(name)+4)
	style := lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(colorAccent)
	lines := []string{rule, "# " + name + " #", rule}
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}
