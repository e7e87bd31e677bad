package profile

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/parley/internal/auth"
	"github.com/fragmede/parley/internal/ui/messages"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true).Padding(1, 0)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Bold(true)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Padding(1, 0)
)

// Model is the account view for the signed-in user.
type Model struct {
	session *auth.Session
	width   int
	height  int
}

// New creates a new account view.
func New(session *auth.Session) Model {
	return Model{session: session}
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "x" {
			session := m.session
			return m, func() tea.Msg {
				session.Logout()
				return messages.StatusMsg{Text: "Logged out"}
			}
		}
	}
	return m, nil
}

// View renders the account details.
func (m Model) View() string {
	snap := m.session.Snapshot()

	var sb strings.Builder
	if snap.State != auth.StateLoggedIn || snap.Identity == nil {
		sb.WriteString(titleStyle.Render("Account"))
		sb.WriteString("\n")
		sb.WriteString(valueStyle.Render("Not signed in."))
		sb.WriteString("\n")
		sb.WriteString(hintStyle.Render("L:login  esc:back"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
	}

	id := snap.Identity
	sb.WriteString(titleStyle.Render(id.Username))
	sb.WriteString("\n")
	if id.Name != "" {
		sb.WriteString(labelStyle.Render("Name:  ") + valueStyle.Render(id.Name))
		sb.WriteString("\n")
	}
	if id.Email != "" {
		sb.WriteString(labelStyle.Render("Email: ") + valueStyle.Render(id.Email))
		sb.WriteString("\n")
	}
	if id.Role != "" {
		sb.WriteString(labelStyle.Render("Role:  ") + valueStyle.Render(id.Role))
		sb.WriteString("\n")
	}
	if exp, ok := auth.TokenExpiry(snap.Token); ok {
		sb.WriteString(labelStyle.Render("Token: ") + valueStyle.Render("expires "+exp.Format("2006-01-02 15:04")))
		sb.WriteString("\n")
	}
	sb.WriteString(hintStyle.Render("x:logout  esc:back"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
