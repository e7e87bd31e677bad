package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/parley/internal/api"
	"github.com/fragmede/parley/internal/auth"
	"github.com/fragmede/parley/internal/cache"
	"github.com/fragmede/parley/internal/config"
	"github.com/fragmede/parley/internal/ui/messages"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#32CD32"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	busyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Italic(true)
)

// Model is the upload panel: a file picker feeding the active agent's
// vector store.
type Model struct {
	picker    filepicker.Model
	client    *api.Client
	cache     *cache.DB
	session   *auth.Session
	agent     string
	uploading bool
	lastFile  string
	result    *api.UploadResult
	errText   string
	width     int
	height    int
}

// New creates the upload panel rooted at the user's home directory.
func New(cfg config.Config, client *api.Client, db *cache.DB, session *auth.Session) Model {
	fp := filepicker.New()
	fp.AllowedTypes = api.AllowedExtensions
	fp.AutoHeight = false
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	return Model{
		picker:  fp,
		client:  client,
		cache:   db,
		session: session,
		agent:   cfg.Agent,
	}
}

// Init starts reading the picker's current directory.
func (m Model) Init() tea.Cmd {
	return m.picker.Init()
}

// SetAgent points subsequent uploads at another agent.
func (m *Model) SetAgent(agent string) {
	m.agent = agent
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Two header lines above the picker, one status line below.
	m.picker.Height = h - 3
	if m.picker.Height < 3 {
		m.picker.Height = 3
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.UploadResultMsg:
		m.uploading = false
		m.lastFile = filepath.Base(msg.Path)
		if msg.Err != nil {
			m.errText = msg.Err.Error()
			m.result = nil
		} else {
			m.result = msg.Result
			m.errText = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		if m.uploading {
			return m, cmd
		}
		if m.agent == "" {
			m.errText = "No agent selected. Press a to pick one."
			return m, cmd
		}
		if !m.session.LoggedIn() {
			return m, tea.Batch(cmd, func() tea.Msg { return messages.OpenLoginMsg{} })
		}
		m.uploading = true
		m.lastFile = filepath.Base(path)
		m.result = nil
		m.errText = ""
		return m, tea.Batch(cmd, m.upload(path))
	}

	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.errText = filepath.Base(path) + " is not an ingestable file type (" +
			strings.Join(api.AllowedExtensions, " ") + ")"
		return m, cmd
	}

	return m, cmd
}

// View renders the upload panel.
func (m Model) View() string {
	title := "Upload"
	if m.agent != "" {
		title = "Upload to " + m.agent
	}

	var status string
	switch {
	case m.uploading:
		status = busyStyle.Render("Uploading " + m.lastFile + "...")
	case m.errText != "":
		status = errorStyle.Render(m.errText)
	case m.result != nil:
		status = okStyle.Render("✓ " + m.result.Filename + " → " + m.result.VectorStore)
	default:
		status = hintStyle.Render("Pick a document to add it to the agent's knowledge base.")
	}

	parts := []string{
		headerStyle.Render(title),
		separatorStyle.Render(strings.Repeat("─", m.width)),
		m.picker.View(),
		status,
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) upload(path string) tea.Cmd {
	agent := m.agent
	client := m.client
	db := m.cache
	return func() tea.Msg {
		res, err := client.UploadDocument(context.Background(), agent, path)
		rec := &cache.Upload{Agent: agent, Filename: filepath.Base(path)}
		if err != nil {
			rec.Status = cache.UploadFailed
			rec.Error = err.Error()
			db.RecordUpload(rec)
			return messages.UploadResultMsg{Agent: agent, Path: path, Err: err}
		}
		rec.Status = cache.UploadOK
		rec.Filename = res.Filename
		rec.VectorStore = res.VectorStore
		db.RecordUpload(rec)
		return messages.UploadResultMsg{Agent: agent, Path: path, Result: res}
	}
}
