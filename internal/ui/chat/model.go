package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/parley/internal/api"
	"github.com/fragmede/parley/internal/auth"
	"github.com/fragmede/parley/internal/cache"
	"github.com/fragmede/parley/internal/config"
	"github.com/fragmede/parley/internal/render"
	"github.com/fragmede/parley/internal/ui/messages"
)

var (
	youStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#00BFFF")).Bold(true)
	agentNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	citationStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Italic(true)
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// entry is one transcript item as displayed, including transient ones
// (the pending marker and ask errors) that are never persisted.
type entry struct {
	role      string
	content   string
	citations []string
	errText   string
	at        time.Time
	pending   bool
}

type transcriptLoadedMsg struct {
	agent   string
	convID  string
	entries []entry
	err     error
}

// Model is the chat panel: the transcript viewport plus the question input.
type Model struct {
	viewport viewport.Model
	input    textinput.Model
	entries  []entry
	agent    string
	convID   string
	client   *api.Client
	cache    *cache.DB
	cfg      config.Config
	session  *auth.Session
	waiting  bool
	loading  bool
	width    int
	height   int
}

// New creates the chat panel for the configured agent.
func New(cfg config.Config, client *api.Client, db *cache.DB, session *auth.Session) Model {
	vp := viewport.New(0, 0)
	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.CharLimit = 2000
	ti.Focus()

	return Model{
		viewport: vp,
		input:    ti,
		agent:    cfg.Agent,
		client:   client,
		cache:    db,
		cfg:      cfg,
		session:  session,
		loading:  true,
	}
}

// Init loads the cached transcript for the active agent.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadTranscript())
}

// SetAgent switches the panel to another agent and reloads its transcript.
func (m Model) SetAgent(agent string) (Model, tea.Cmd) {
	if agent == m.agent {
		return m, nil
	}
	m.agent = agent
	m.entries = nil
	m.convID = ""
	m.waiting = false
	m.loading = true
	m.rebuildContent()
	return m, m.loadTranscript()
}

// SetSize updates viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.input.Width = w - 4
	m.resizeViewport()
	m.rebuildContent()
}

func (m *Model) resizeViewport() {
	header := m.renderHeader()
	headerLines := strings.Count(header, "\n") + 1
	// Reserve one line for the input below the viewport.
	m.viewport.Height = m.height - headerLines - 1
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case transcriptLoadedMsg:
		if msg.agent != m.agent {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.viewport.SetContent("  Error loading transcript: " + msg.err.Error())
			return m, nil
		}
		m.convID = msg.convID
		m.entries = msg.entries
		m.rebuildContent()
		m.viewport.GotoBottom()
		return m, nil

	case messages.AnswerMsg:
		if msg.Agent != m.agent {
			return m, nil
		}
		m.waiting = false
		if n := len(m.entries); n > 0 && m.entries[n-1].pending {
			m.entries = m.entries[:n-1]
		}
		if msg.Err != nil {
			m.entries = append(m.entries, entry{errText: msg.Err.Error(), at: time.Now()})
		} else {
			if msg.ConversationID != "" {
				m.convID = msg.ConversationID
			}
			m.entries = append(m.entries, entry{
				role:      cache.RoleAssistant,
				content:   msg.Answer.Answer,
				citations: msg.Answer.Citations,
				at:        time.Now(),
			})
		}
		m.rebuildContent()
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			if m.agent == "" {
				return m, func() tea.Msg { return messages.OpenAgentsMsg{} }
			}
			if !m.session.LoggedIn() {
				return m, func() tea.Msg { return messages.OpenLoginMsg{} }
			}
			m.input.Reset()
			m.waiting = true
			m.entries = append(m.entries, entry{role: cache.RoleUser, content: question, at: time.Now()})
			m.entries = append(m.entries, entry{pending: true})
			m.rebuildContent()
			m.viewport.GotoBottom()
			return m, m.ask(question)
		case "ctrl+g":
			return m, func() tea.Msg { return messages.OpenAgentsMsg{} }
		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		case "esc":
			m.input.Reset()
			return m, nil
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat panel.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View(), m.input.View())
}

// Agent returns the agent the panel currently talks to.
func (m Model) Agent() string {
	return m.agent
}

func (m Model) loadTranscript() tea.Cmd {
	agent := m.agent
	db := m.cache
	cfg := m.cfg
	return func() tea.Msg {
		if agent == "" {
			return transcriptLoadedMsg{agent: agent}
		}
		msgs, err := db.RecentMessages(agent, cfg.TranscriptLimit)
		if err != nil {
			return transcriptLoadedMsg{agent: agent, err: err}
		}
		var convID string
		if conv, err := db.LatestConversation(agent); err == nil && conv != nil {
			convID = conv.ID
		}
		entries := make([]entry, 0, len(msgs))
		for _, msg := range msgs {
			entries = append(entries, entry{
				role:      msg.Role,
				content:   msg.Content,
				citations: msg.Citations,
				at:        msg.CreatedAt,
			})
		}
		return transcriptLoadedMsg{agent: agent, convID: convID, entries: entries}
	}
}

func (m Model) ask(question string) tea.Cmd {
	agent := m.agent
	convID := m.convID
	client := m.client
	db := m.cache
	return func() tea.Msg {
		ctx := context.Background()
		if convID == "" {
			if conv, err := db.StartConversation(agent); err == nil {
				convID = conv.ID
			}
		}
		db.AppendMessage(&cache.Message{
			ConversationID: convID,
			Agent:          agent,
			Role:           cache.RoleUser,
			Content:        question,
		})
		answer, err := client.Ask(ctx, agent, question)
		if err != nil {
			return messages.AnswerMsg{Agent: agent, Question: question, ConversationID: convID, Err: err}
		}
		db.AppendMessage(&cache.Message{
			ConversationID: convID,
			Agent:          agent,
			Role:           cache.RoleAssistant,
			Content:        answer.Answer,
			Citations:      answer.Citations,
		})
		return messages.AnswerMsg{Agent: agent, Question: question, ConversationID: convID, Answer: answer}
	}
}

func (m *Model) rebuildContent() {
	if len(m.entries) == 0 {
		switch {
		case m.loading:
			m.viewport.SetContent("  Loading transcript...")
		case m.agent == "":
			m.viewport.SetContent("  No agent selected. Press ctrl+g to pick one.")
		default:
			m.viewport.SetContent("  No messages yet. Type a question and press enter.")
		}
		return
	}

	bodyWidth := m.width - 4
	if bodyWidth < 20 {
		bodyWidth = 20
	}

	var sb strings.Builder
	for _, e := range m.entries {
		switch {
		case e.pending:
			sb.WriteString("  " + pendingStyle.Render("thinking...") + "\n")
		case e.errText != "":
			sb.WriteString("  " + errorStyle.Render(e.errText) + "\n")
		default:
			name := youStyle.Render("you")
			if e.role == cache.RoleAssistant {
				name = agentNameStyle.Render(m.agent)
			}
			sb.WriteString("  " + name + " " + metaStyle.Render(render.TimeAgo(e.at)) + "\n")
			body := render.MarkdownToText(e.content, bodyWidth)
			for _, line := range strings.Split(body, "\n") {
				sb.WriteString("  " + line + "\n")
			}
			if len(e.citations) > 0 {
				sb.WriteString("  " + citationStyle.Render("sources: "+strings.Join(e.citations, ", ")) + "\n")
			}
		}
		sb.WriteString("\n")
	}
	m.viewport.SetContent(sb.String())
}

func (m Model) renderHeader() string {
	title := "Chat"
	if m.agent != "" {
		title = "Chat with " + m.agent
	}
	if m.waiting {
		title += " (thinking...)"
	}

	parts := []string{
		headerStyle.Render(title),
		separatorStyle.Render(strings.Repeat("─", m.width)),
		metaStyle.Render("enter:send  ctrl+g:agents  pgup/pgdn:scroll  tab:panels"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
