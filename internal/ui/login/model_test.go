package login

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/parley/internal/api"
	"github.com/fragmede/parley/internal/auth"
	"github.com/fragmede/parley/internal/ui/messages"
)

func enter() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func newForm(t *testing.T, handler http.Handler) Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, time.Second)
	store := auth.NewTokenStore(filepath.Join(t.TempDir(), "token"))
	m := New(auth.NewSession(client, store))
	m.SetSize(80, 24)
	return m
}

func TestSubmitRequiresBothFields(t *testing.T) {
	m := newForm(t, http.NotFoundHandler())

	var cmd tea.Cmd
	m, cmd = m.Update(enter())
	assert.Nil(t, cmd)
	assert.Equal(t, "Username and password required", m.err)

	m.usernameInput.SetValue("alice")
	m, cmd = m.Update(enter())
	assert.Nil(t, cmd)
	assert.Equal(t, "Username and password required", m.err)
}

func TestTabSwitchesFocus(t *testing.T) {
	m := newForm(t, http.NotFoundHandler())
	require.True(t, m.usernameInput.Focused())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.passwordInput.Focused())
	assert.False(t, m.usernameInput.Focused())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.True(t, m.usernameInput.Focused())
	assert.False(t, m.passwordInput.Focused())
}

func TestRejectedLoginShowsFriendlyError(t *testing.T) {
	m := newForm(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"Incorrect username or password"}`)
	}))
	m.usernameInput.SetValue("alice")
	m.passwordInput.SetValue("wrong")

	var cmd tea.Cmd
	m, cmd = m.Update(enter())
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	res := cmd()
	require.IsType(t, messages.LoginResultMsg{}, res)

	m, _ = m.Update(res)
	assert.False(t, m.submitting)
	assert.Equal(t, "Invalid username or password", m.err)
	assert.Empty(t, m.passwordInput.Value())
	assert.Contains(t, m.View(), "Invalid username or password")
}

func TestTransportErrorShownVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := api.NewClient(srv.URL, time.Second)
	store := auth.NewTokenStore(filepath.Join(t.TempDir(), "token"))
	m := New(auth.NewSession(client, store))
	m.usernameInput.SetValue("alice")
	m.passwordInput.SetValue("pw")

	var cmd tea.Cmd
	m, cmd = m.Update(enter())
	require.NotNil(t, cmd)

	m, _ = m.Update(cmd())
	assert.NotEmpty(t, m.err)
	assert.NotEqual(t, "Invalid username or password", m.err)
}

func TestEnterIgnoredWhileSubmitting(t *testing.T) {
	m := newForm(t, http.NotFoundHandler())
	m.usernameInput.SetValue("alice")
	m.passwordInput.SetValue("pw")
	m.submitting = true

	var cmd tea.Cmd
	m, cmd = m.Update(enter())
	assert.Nil(t, cmd)
}
