package history

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/parley/internal/cache"
	"github.com/fragmede/parley/internal/render"
)

const maxEntries = 50

var (
	selectedBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	normalBorderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	agentStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	fileStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	metaStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
	okStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("#32CD32"))
	failStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	skipStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	headerStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	errorMsgStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// uploadsLoadedMsg is sent when the upload log has been read.
type uploadsLoadedMsg struct {
	uploads []*cache.Upload
	err     error
}

type itemOffset struct {
	startLine int
	endLine   int
}

// Model is a viewport-based feed of recorded document uploads,
// interactive and batch runs alike.
type Model struct {
	viewport viewport.Model
	uploads  []*cache.Upload
	offsets  []itemOffset
	cursor   int
	cache    *cache.DB
	loading  bool
	width    int
	height   int
}

// New creates a new upload history model.
func New(db *cache.DB) Model {
	vp := viewport.New(0, 0)
	return Model{viewport: vp, cache: db}
}

// SetSize updates viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h - 2 // title + blank line
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	if len(m.uploads) > 0 {
		m.rebuildContent()
	}
}

// Refresh reloads the upload log from the cache.
func (m *Model) Refresh() tea.Cmd {
	m.loading = true
	db := m.cache
	return func() tea.Msg {
		uploads, err := db.RecentUploads(maxEntries)
		return uploadsLoadedMsg{uploads: uploads, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.viewport.SetContent(errorMsgStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		m.uploads = msg.uploads
		if m.cursor >= len(m.uploads) {
			m.cursor = 0
		}
		m.rebuildContent()
		m.viewport.SetYOffset(0)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.uploads)-1 {
				m.cursor++
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "r":
			m.viewport.SetContent("Refreshing...")
			return m, m.Refresh()
		case "g", "home":
			m.cursor = 0
			m.rebuildContent()
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			if len(m.uploads) > 0 {
				m.cursor = len(m.uploads) - 1
				m.rebuildContent()
				m.viewport.GotoBottom()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the upload history.
func (m Model) View() string {
	title := "Upload History"
	if m.loading {
		title += " (loading...)"
	}
	header := headerStyle.Render(title) + "\n"
	return header + m.viewport.View()
}

func (m *Model) rebuildContent() {
	if len(m.uploads) == 0 {
		m.viewport.SetContent("  No uploads recorded yet.")
		return
	}

	var sb strings.Builder
	m.offsets = make([]itemOffset, len(m.uploads))

	lineCount := 0
	for i, u := range m.uploads {
		startLine := lineCount
		selected := i == m.cursor

		border := normalBorderStyle.Render("▎")
		if selected {
			border = selectedBorderStyle.Render("▎")
		}
		prefix := border + " "

		sb.WriteString(prefix + m.buildMeta(u) + "\n")
		lineCount++

		if u.Status == cache.UploadFailed && u.Error != "" {
			sb.WriteString(prefix + "  " + failStyle.Render(u.Error) + "\n")
			lineCount++
		}

		sb.WriteString("\n")
		lineCount++

		m.offsets[i] = itemOffset{startLine: startLine, endLine: lineCount - 1}
	}

	m.viewport.SetContent(sb.String())
}

func (m *Model) buildMeta(u *cache.Upload) string {
	var glyph string
	switch u.Status {
	case cache.UploadOK:
		glyph = okStyle.Render("✓")
	case cache.UploadFailed:
		glyph = failStyle.Render("✗")
	case cache.UploadSkipped:
		glyph = skipStyle.Render("~")
	default:
		glyph = metaStyle.Render("?")
	}

	parts := []string{
		glyph,
		agentStyle.Render(u.Agent),
		fileStyle.Render(u.Filename),
	}
	if u.VectorStore != "" {
		parts = append(parts, metaStyle.Render("→ "+u.VectorStore))
	}
	parts = append(parts, metaStyle.Render(render.TimeAgo(u.CreatedAt)))
	return strings.Join(parts, " ")
}

func (m *Model) scrollToCursor() {
	if m.cursor >= len(m.offsets) {
		return
	}
	ri := m.offsets[m.cursor]

	if ri.startLine < m.viewport.YOffset {
		m.viewport.SetYOffset(ri.startLine)
	}
	if ri.endLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(ri.startLine)
	}
}
