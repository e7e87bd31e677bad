package agents

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/parley/internal/api"
	"github.com/fragmede/parley/internal/cache"
	"github.com/fragmede/parley/internal/config"
	"github.com/fragmede/parley/internal/ui/messages"
)

type agentsLoadedMsg struct {
	agents []string
	err    error
}

// Model is the agent picker view.
type Model struct {
	list    list.Model
	current string
	client  *api.Client
	cache   *cache.DB
	cfg     config.Config
	loading bool
	width   int
	height  int
}

// New creates a new agent picker.
func New(cfg config.Config, client *api.Client, db *cache.DB) Model {
	l := list.New(nil, Delegate{}, 0, 0)
	l.Title = "Agents"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return Model{
		list:    l,
		current: cfg.Agent,
		client:  client,
		cache:   db,
		cfg:     cfg,
	}
}

// SetCurrent marks the agent the app is currently talking to.
func (m *Model) SetCurrent(agent string) {
	m.current = agent
	items := m.list.Items()
	for i, it := range items {
		if a, ok := it.(AgentItem); ok {
			a.Active = a.Name == agent
			items[i] = a
		}
	}
	m.list.SetItems(items)
}

// Filtering reports whether the list's filter input is capturing keys.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Load fetches the agent roster, cache first with a stale fallback.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	m.list.Title = "Agents (loading...)"
	client := m.client
	db := m.cache
	cfg := m.cfg
	return func() tea.Msg {
		names, fresh, _ := db.GetAgents(cfg.AgentsTTL)
		if fresh && len(names) > 0 {
			return agentsLoadedMsg{agents: names}
		}
		fetched, err := client.Agents(context.Background())
		if err != nil {
			if len(names) > 0 {
				return agentsLoadedMsg{agents: names}
			}
			return agentsLoadedMsg{err: err}
		}
		db.PutAgents(fetched)
		return agentsLoadedMsg{agents: fetched}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, h)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case agentsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.list.Title = "Error: " + msg.err.Error()
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.agents))
		for _, name := range msg.agents {
			items = append(items, AgentItem{Name: name, Active: name == m.current})
		}
		m.list.SetItems(items)
		m.list.Title = "Agents"
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(AgentItem); ok {
				return m, func() tea.Msg {
					return messages.AgentChosenMsg{Agent: item.Name}
				}
			}
		case "r", "ctrl+r":
			return m, m.loadForce()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) loadForce() tea.Cmd {
	m.loading = true
	m.list.Title = "Agents (refreshing...)"
	client := m.client
	db := m.cache
	return func() tea.Msg {
		fetched, err := client.Agents(context.Background())
		if err != nil {
			return agentsLoadedMsg{err: err}
		}
		db.PutAgents(fetched)
		return agentsLoadedMsg{agents: fetched}
	}
}

// View renders the agent picker.
func (m Model) View() string {
	return m.list.View()
}
