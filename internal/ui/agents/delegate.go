package agents

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	selectedNameStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7D56F4"))

	activeMarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#32CD32"))
)

// AgentItem wraps an agent name for the bubbles list.
type AgentItem struct {
	Name   string
	Active bool
}

func (a AgentItem) FilterValue() string { return a.Name }

type Delegate struct{}

func (d Delegate) Height() int                             { return 1 }
func (d Delegate) Spacing() int                            { return 0 }
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d Delegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(AgentItem)
	if !ok {
		return
	}

	cursor := "  "
	style := nameStyle
	if index == m.Index() {
		cursor = "> "
		style = selectedNameStyle
	}

	name := style.Render(item.Name)
	if item.Active {
		name += activeMarkStyle.Render(" ●")
	}

	fmt.Fprintf(w, "%s%s", cursor, name)
}
