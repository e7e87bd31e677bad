package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type KeyMap struct {
	Quit       key.Binding
	Back       key.Binding
	Help       key.Binding
	Send       key.Binding
	Refresh    key.Binding
	Login      key.Binding
	Logout     key.Binding
	Agents     key.Binding
	Profile    key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	ChatTab    key.Binding
	UploadTab  key.Binding
	HistoryTab key.Binding
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Home       key.Binding
	End        key.Binding
	Filter     key.Binding
}

var Keys = KeyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send / select")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Login:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "login")),
	Logout:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "logout (account view)")),
	Agents:     key.NewBinding(key.WithKeys("a", "ctrl+g"), key.WithHelp("a/ctrl+g", "switch agent")),
	Profile:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "account")),
	NextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
	PrevTab:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous panel")),
	ChatTab:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "chat")),
	UploadTab:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "upload")),
	HistoryTab: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "history")),
	Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "up")),
	Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "down")),
	PageUp:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	PageDown:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
	Home:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	End:        key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
}

// renderHelp lays out the key bindings as a centered sheet.
func renderHelp(width, height int) string {
	bindings := []key.Binding{
		Keys.NextTab, Keys.PrevTab, Keys.ChatTab, Keys.UploadTab, Keys.HistoryTab,
		Keys.Agents, Keys.Login, Keys.Profile, Keys.Logout,
		Keys.Send, Keys.Refresh, Keys.Filter,
		Keys.Up, Keys.Down, Keys.PageUp, Keys.PageDown, Keys.Home, Keys.End,
		Keys.Back, Keys.Help, Keys.Quit,
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Keys"))
	sb.WriteString("\n\n")
	for _, b := range bindings {
		h := b.Help()
		sb.WriteString(KeyStyle.Width(12).Render(h.Key))
		sb.WriteString(" ")
		sb.WriteString(MetaStyle.Render(h.Desc))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(DimStyle.Render("esc to close"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, sb.String())
}
