// internal/tui/picker.go
//
// Interactive action picker. It follows The Elm Architecture used by
// bubbletea: Update folds key presses into the list model, View renders it,
// and the program quits once an entry is chosen or the user backs out.

package tui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/gobi/internal/logging"
)

const logPanelLines = 6

// Choice is one pickable entry.
type Choice struct {
	Name string
	Help string
}

// menuItem implements list.Item for a Choice.
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// Picker lists choices and records the one selected with enter.
type Picker struct {
	list   list.Model
	log    *logging.Logger
	chosen string
	done   bool
	width  int
	height int
}

// NewPicker builds a picker. log may be nil; when set, its latest lines are
// shown below the list.
func NewPicker(title string, choices []Choice, log *logging.Logger) *Picker {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = menuItem{title: c.Name, desc: summary(c.Help)}
	}
	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = title
	menu.SetShowStatusBar(false)
	return &Picker{list: menu, log: log}
}

// summary keeps the first non-empty line of a help text.
func summary(help string) string {
	for _, line := range strings.Split(help, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// Chosen returns the selected name, if any.
func (p *Picker) Chosen() (string, bool) {
	return p.chosen, p.chosen != ""
}

func (p *Picker) Init() tea.Cmd { return nil }

// Update is called when a message is received.
func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.list.SetSize(max(0, msg.Width-4), max(0, msg.Height-logPanelLines-4))
		return p, nil
	case tea.KeyMsg:
		if p.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			p.done = true
			return p, tea.Quit
		case "enter":
			if item, ok := p.list.SelectedItem().(menuItem); ok {
				p.chosen = item.title
			}
			p.done = true
			return p, tea.Quit
		}
	}
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

// View renders the list and the log panel.
func (p *Picker) View() string {
	if p.done {
		return ""
	}
	panel := p.renderLogPanel()
	if panel == "" {
		return p.list.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, p.list.View(), panel)
}

func (p *Picker) renderLogPanel() string {
	if p.log == nil {
		return ""
	}
	lines := p.log.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAccent).
		Render(fmt.Sprintf("LOG · %s", filepath.Base(p.log.Path())))
	body := lipgloss.NewStyle().
		Foreground(colorMuted).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

// Pick runs a picker on the given streams and returns the chosen name.
// The boolean is false when the user quit without choosing.
func Pick(in io.Reader, out io.Writer, title string, choices []Choice, log *logging.Logger) (string, bool, error) {
	picker := NewPicker(title, choices, log)
	program := tea.NewProgram(picker, tea.WithInput(in), tea.WithOutput(out))
	final, err := program.Run()
	if err != nil {
		return "", false, err
	}
	name, ok := final.(*Picker).Chosen()
	return name, ok, nil
}

// Title renders a heading in the picker's title color.
func Title(w io.Writer, text string) string {
	return lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(colorTitle).Render(text)
}
