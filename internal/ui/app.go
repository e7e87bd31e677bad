package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/parley/internal/api"
	"github.com/fragmede/parley/internal/auth"
	"github.com/fragmede/parley/internal/cache"
	"github.com/fragmede/parley/internal/config"
	"github.com/fragmede/parley/internal/health"
	"github.com/fragmede/parley/internal/ui/agents"
	"github.com/fragmede/parley/internal/ui/chat"
	"github.com/fragmede/parley/internal/ui/history"
	"github.com/fragmede/parley/internal/ui/login"
	"github.com/fragmede/parley/internal/ui/messages"
	"github.com/fragmede/parley/internal/ui/profile"
	"github.com/fragmede/parley/internal/ui/statusbar"
	"github.com/fragmede/parley/internal/ui/upload"
)

// ViewType identifies the active view.
type ViewType int

const (
	ViewChat ViewType = iota
	ViewUpload
	ViewHistory
	ViewLogin
	ViewAgents
	ViewProfile
	ViewHelp
)

// App is the root Bubble Tea model.
type App struct {
	// View state
	activeView    ViewType
	previousViews []ViewType

	// Child models
	chatPanel    chat.Model
	uploadPanel  upload.Model
	historyPanel history.Model
	loginForm    login.Model
	agentPicker  agents.Model
	account      profile.Model
	statusBar    statusbar.Model

	// Shared state
	cfg     config.Config
	client  *api.Client
	cache   *cache.DB
	session *auth.Session
	monitor *health.Monitor
	agent   string

	// Dimensions
	width  int
	height int

	// For passing program reference to the monitor and session events
	program *tea.Program
}

// NewApp creates the root application model.
func NewApp(cfg config.Config, client *api.Client, db *cache.DB, session *auth.Session) *App {
	statusBar := statusbar.New()
	statusBar.SetAgent(cfg.Agent)

	return &App{
		activeView:   ViewChat,
		chatPanel:    chat.New(cfg, client, db, session),
		uploadPanel:  upload.New(cfg, client, db, session),
		historyPanel: history.New(db),
		agentPicker:  agents.New(cfg, client, db),
		account:      profile.New(session),
		statusBar:    statusBar,
		cfg:          cfg,
		client:       client,
		cache:        db,
		session:      session,
		monitor:      health.New(client, cfg.HealthInterval),
		agent:        cfg.Agent,
	}
}

// SetProgram stores the tea.Program reference and wires session
// transitions into the update loop.
func (a *App) SetProgram(p *tea.Program) {
	a.program = p
	a.session.Subscribe(func(snap auth.Snapshot) {
		p.Send(messages.SessionMsg{Snapshot: snap})
	})
}

// Init starts the application.
func (a *App) Init() tea.Cmd {
	if a.program != nil {
		a.monitor.Start(a.program)
	}
	return tea.Batch(a.chatPanel.Init(), a.uploadPanel.Init(), a.tryRestoreSession())
}

func (a *App) tryRestoreSession() tea.Cmd {
	session := a.session
	return func() tea.Msg {
		// Transitions reach the UI through the session subscription.
		session.Restore(context.Background())
		return nil
	}
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentHeight := msg.Height - 1 // Reserve 1 line for status bar.
		// Always resize the panels and status bar.
		a.chatPanel.SetSize(msg.Width, contentHeight)
		a.uploadPanel.SetSize(msg.Width, contentHeight)
		a.historyPanel.SetSize(msg.Width, contentHeight)
		a.statusBar.SetSize(msg.Width)
		// Only resize pushed views if they're currently active.
		switch a.activeView {
		case ViewLogin:
			a.loginForm.SetSize(msg.Width, contentHeight)
		case ViewAgents:
			a.agentPicker.SetSize(msg.Width, contentHeight)
		case ViewProfile:
			a.account.SetSize(msg.Width, contentHeight)
		}
		return a, nil

	case tea.KeyMsg:
		// Text-entry views own most keys; everything else gets the global set.
		switch {
		case a.activeView == ViewLogin:
			switch msg.String() {
			case "esc":
				return a, a.goBack()
			case "ctrl+c":
				a.monitor.Stop()
				return a, tea.Quit
			}

		case a.activeView == ViewChat:
			// The question input is always focused; only chords and tab
			// are handled here.
			switch msg.String() {
			case "ctrl+c":
				a.monitor.Stop()
				return a, tea.Quit
			case "tab":
				return a, a.nextTab()
			case "shift+tab":
				return a, a.prevTab()
			}

		case a.activeView == ViewAgents && a.agentPicker.Filtering():
			if msg.String() == "ctrl+c" {
				a.monitor.Stop()
				return a, tea.Quit
			}

		default:
			switch msg.String() {
			case "ctrl+c":
				a.monitor.Stop()
				return a, tea.Quit
			case "q":
				if a.activeView == ViewUpload || a.activeView == ViewHistory {
					a.monitor.Stop()
					return a, tea.Quit
				}
				return a, a.goBack()
			case "esc":
				if len(a.previousViews) > 0 {
					return a, a.goBack()
				}
				if a.activeView != ViewChat {
					return a, a.switchTab(ViewChat)
				}
			case "?":
				if a.activeView != ViewHelp {
					a.pushView(ViewHelp)
				}
				return a, nil
			case "tab":
				return a, a.nextTab()
			case "shift+tab":
				return a, a.prevTab()
			case "1":
				return a, a.switchTab(ViewChat)
			case "2":
				return a, a.switchTab(ViewUpload)
			case "3":
				return a, a.switchTab(ViewHistory)
			case "a":
				return a, a.openAgents()
			case "L":
				if !a.session.LoggedIn() {
					a.openLogin()
				}
				return a, nil
			case "p":
				if a.activeView != ViewProfile {
					a.pushView(ViewProfile)
					a.account.SetSize(a.width, a.height-1)
				}
				return a, nil
			}
		}

	// View transitions.
	case messages.OpenLoginMsg:
		if !a.session.LoggedIn() {
			a.openLogin()
		}
		return a, nil

	case messages.OpenAgentsMsg:
		return a, a.openAgents()

	case messages.SessionMsg:
		return a, a.applySession(msg.Snapshot)

	case messages.LoginResultMsg:
		if msg.Err == nil {
			a.statusBar.SetStatus("Logged in as " + msg.Username)
			return a, a.goBack()
		}
		// Let the login form display the error.

	case messages.AgentChosenMsg:
		a.agent = msg.Agent
		a.statusBar.SetAgent(msg.Agent)
		a.uploadPanel.SetAgent(msg.Agent)
		var cmd tea.Cmd
		a.chatPanel, cmd = a.chatPanel.SetAgent(msg.Agent)
		return a, tea.Batch(cmd, a.goBack())

	case messages.AnswerMsg:
		var cmd tea.Cmd
		a.chatPanel, cmd = a.chatPanel.Update(msg)
		return a, cmd

	case messages.UploadResultMsg:
		var cmd tea.Cmd
		a.uploadPanel, cmd = a.uploadPanel.Update(msg)
		if msg.Err == nil && msg.Result != nil {
			a.statusBar.SetStatus("Uploaded " + msg.Result.Filename)
		}
		return a, cmd

	case messages.ConnectivityMsg:
		a.statusBar.SetOffline(msg.Offline)
		return a, nil

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text)
	}

	// Route to the active view.
	var cmd tea.Cmd
	switch a.activeView {
	case ViewChat:
		a.chatPanel, cmd = a.chatPanel.Update(msg)
		cmds = append(cmds, cmd)
	case ViewUpload:
		a.uploadPanel, cmd = a.uploadPanel.Update(msg)
		cmds = append(cmds, cmd)
	case ViewHistory:
		a.historyPanel, cmd = a.historyPanel.Update(msg)
		cmds = append(cmds, cmd)
	case ViewLogin:
		a.loginForm, cmd = a.loginForm.Update(msg)
		cmds = append(cmds, cmd)
	case ViewAgents:
		a.agentPicker, cmd = a.agentPicker.Update(msg)
		cmds = append(cmds, cmd)
	case ViewProfile:
		a.account, cmd = a.account.Update(msg)
		cmds = append(cmds, cmd)
	}

	a.statusBar, cmd = a.statusBar.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View renders the application.
func (a *App) View() string {
	var content string
	switch a.activeView {
	case ViewChat:
		content = a.chatPanel.View()
	case ViewUpload:
		content = a.uploadPanel.View()
	case ViewHistory:
		content = a.historyPanel.View()
	case ViewLogin:
		content = a.loginForm.View()
	case ViewAgents:
		content = a.agentPicker.View()
	case ViewProfile:
		content = a.account.View()
	case ViewHelp:
		content = renderHelp(a.width, a.height-1)
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusBar.View())
}

func (a *App) pushView(v ViewType) {
	a.previousViews = append(a.previousViews, a.activeView)
	a.activeView = v
}

func (a *App) goBack() tea.Cmd {
	if len(a.previousViews) > 0 {
		a.activeView = a.previousViews[len(a.previousViews)-1]
		a.previousViews = a.previousViews[:len(a.previousViews)-1]
	}
	return nil
}

func (a *App) openLogin() {
	a.pushView(ViewLogin)
	a.loginForm = login.New(a.session)
	a.loginForm.SetSize(a.width, a.height-1)
}

func (a *App) openAgents() tea.Cmd {
	if a.activeView == ViewAgents {
		return nil
	}
	if !a.session.LoggedIn() {
		a.openLogin()
		return nil
	}
	a.pushView(ViewAgents)
	a.agentPicker.SetCurrent(a.agent)
	a.agentPicker.SetSize(a.width, a.height-1)
	return a.agentPicker.Load()
}

func (a *App) applySession(snap auth.Snapshot) tea.Cmd {
	switch snap.State {
	case auth.StateLoggedIn:
		username := ""
		if snap.Identity != nil {
			username = snap.Identity.Username
		}
		a.statusBar.SetUser(username)
		a.statusBar.SetStatus("")
		return a.warmAgents()
	case auth.StateLoggedOut:
		a.statusBar.SetUser("")
		a.statusBar.SetStatus("Signed out (L to sign in)")
	case auth.StateAuthenticating, auth.StateRestoring:
		a.statusBar.SetStatus("Signing in...")
	}
	return nil
}

// warmAgents refreshes the agent roster in the background so the picker
// opens from cache.
func (a *App) warmAgents() tea.Cmd {
	client := a.client
	db := a.cache
	ttl := a.cfg.AgentsTTL
	return func() tea.Msg {
		if _, fresh, _ := db.GetAgents(ttl); fresh {
			return nil
		}
		names, err := client.Agents(context.Background())
		if err != nil {
			return nil
		}
		db.PutAgents(names)
		return nil
	}
}

var tabOrder = []ViewType{ViewChat, ViewUpload, ViewHistory}

func (a *App) nextTab() tea.Cmd {
	for i, v := range tabOrder {
		if v == a.activeView {
			return a.switchTab(tabOrder[(i+1)%len(tabOrder)])
		}
	}
	return a.switchTab(tabOrder[0])
}

func (a *App) prevTab() tea.Cmd {
	for i, v := range tabOrder {
		if v == a.activeView {
			return a.switchTab(tabOrder[(i-1+len(tabOrder))%len(tabOrder)])
		}
	}
	return a.switchTab(tabOrder[0])
}

func (a *App) switchTab(v ViewType) tea.Cmd {
	a.previousViews = nil
	a.activeView = v
	a.statusBar.SetActiveTab(tabFor(v))
	if v == ViewHistory {
		return a.historyPanel.Refresh()
	}
	return nil
}

func tabFor(v ViewType) messages.Tab {
	switch v {
	case ViewUpload:
		return messages.TabUpload
	case ViewHistory:
		return messages.TabHistory
	default:
		return messages.TabChat
	}
}
