package history

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/parley/internal/cache"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func sampleUploads() []*cache.Upload {
	now := time.Now()
	return []*cache.Upload{
		{ID: 3, Agent: "comercial", Filename: "tarifas.pdf", VectorStore: "vs_comercial", Status: cache.UploadOK, CreatedAt: now},
		{ID: 2, Agent: "soporte", Filename: "manual.docx", VectorStore: "vs_soporte", Status: cache.UploadFailed, Error: "HTTP 500: ingest failed", CreatedAt: now.Add(-time.Hour)},
		{ID: 1, Agent: "documental", Filename: "notas.txt", VectorStore: "vs_documental", Status: cache.UploadSkipped, CreatedAt: now.Add(-2 * time.Hour)},
	}
}

func loadedModel(t *testing.T, uploads []*cache.Upload) Model {
	t.Helper()
	m := New(nil)
	m.SetSize(100, 30)
	m, _ = m.Update(uploadsLoadedMsg{uploads: uploads})
	return m
}

func TestViewListsUploads(t *testing.T) {
	m := loadedModel(t, sampleUploads())

	view := m.View()
	assert.Contains(t, view, "Upload History")
	assert.Contains(t, view, "tarifas.pdf")
	assert.Contains(t, view, "vs_comercial")
	assert.Contains(t, view, "manual.docx")
	assert.Contains(t, view, "HTTP 500: ingest failed")
	assert.Contains(t, view, "notas.txt")
}

func TestViewEmptyState(t *testing.T) {
	m := loadedModel(t, nil)
	assert.Contains(t, m.View(), "No uploads recorded yet.")
}

func TestCursorNavigation(t *testing.T) {
	m := loadedModel(t, sampleUploads())
	require.Equal(t, 0, m.cursor)

	m, _ = m.Update(keyRune('j'))
	assert.Equal(t, 1, m.cursor)
	m, _ = m.Update(keyRune('j'))
	assert.Equal(t, 2, m.cursor)
	m, _ = m.Update(keyRune('j'))
	assert.Equal(t, 2, m.cursor)

	m, _ = m.Update(keyRune('k'))
	assert.Equal(t, 1, m.cursor)
	m, _ = m.Update(keyRune('g'))
	assert.Equal(t, 0, m.cursor)
	m, _ = m.Update(keyRune('G'))
	assert.Equal(t, 2, m.cursor)
}

func TestReloadClampsCursor(t *testing.T) {
	m := loadedModel(t, sampleUploads())
	m, _ = m.Update(keyRune('G'))
	require.Equal(t, 2, m.cursor)

	m, _ = m.Update(uploadsLoadedMsg{uploads: sampleUploads()[:1]})
	assert.Equal(t, 0, m.cursor)
}

func TestLoadErrorShown(t *testing.T) {
	m := New(nil)
	m.SetSize(100, 30)
	m, _ = m.Update(uploadsLoadedMsg{err: assert.AnError})

	assert.Contains(t, m.View(), "Error: ")
}
