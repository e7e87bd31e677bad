package statusbar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fragmede/parley/internal/ui/messages"
)

func TestViewShowsTabsAndLoginHint(t *testing.T) {
	m := New()
	m.SetSize(120)

	view := m.View()
	assert.Contains(t, view, "Chat")
	assert.Contains(t, view, "Upload")
	assert.Contains(t, view, "History")
	assert.Contains(t, view, "L:login")
}

func TestViewShowsUserAndAgent(t *testing.T) {
	m := New()
	m.SetSize(120)
	m.SetUser("alice")
	m.SetAgent("comercial")

	view := m.View()
	assert.Contains(t, view, "alice")
	assert.Contains(t, view, "@comercial")
	assert.NotContains(t, view, "L:login")
}

func TestViewShowsOfflineBadge(t *testing.T) {
	m := New()
	m.SetSize(120)

	assert.NotContains(t, m.View(), "OFFLINE")

	m.SetOffline(true)
	assert.Contains(t, m.View(), "OFFLINE")

	m.SetOffline(false)
	assert.NotContains(t, m.View(), "OFFLINE")
}

func TestViewShowsStatusText(t *testing.T) {
	m := New()
	m.SetSize(120)
	m.SetStatus("Logged in as alice")

	assert.Contains(t, m.View(), "Logged in as alice")
}

func TestSetActiveTabKeepsAllLabels(t *testing.T) {
	m := New()
	m.SetSize(120)
	m.SetActiveTab(messages.TabHistory)

	view := m.View()
	assert.Contains(t, view, "Chat")
	assert.Contains(t, view, "Upload")
	assert.Contains(t, view, "History")
}
