// Package health watches backend connectivity in the background and pushes
// flips into the TUI, so the statusbar can show OFFLINE without the view
// layer polling anything.
package health

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/parley/internal/api"
	"github.com/fragmede/parley/internal/logging"
	"github.com/fragmede/parley/internal/ui/messages"
)

const probeTimeout = 10 * time.Second

// Monitor polls the backend's liveness endpoint on an interval.
type Monitor struct {
	client   *api.Client
	interval time.Duration
	program  *tea.Program
	stopCh   chan struct{}

	mu      sync.Mutex
	offline bool
}

// New creates a background connectivity monitor.
func New(client *api.Client, interval time.Duration) *Monitor {
	return &Monitor{
		client:   client,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background polling loop. Connectivity changes are sent
// into the program as messages.ConnectivityMsg.
func (m *Monitor) Start(program *tea.Program) {
	m.program = program
	go m.loop()
}

// Stop halts the background polling.
func (m *Monitor) Stop() {
	select {
	case <-m.stopCh:
	default:
		close(m.stopCh)
	}
}

// Offline reports the last observed connectivity state.
func (m *Monitor) Offline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

func (m *Monitor) loop() {
	// Probe right away so the statusbar settles without waiting out a
	// full interval.
	m.poll()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	err := m.client.Health(ctx)
	offline := err != nil

	m.mu.Lock()
	changed := offline != m.offline
	m.offline = offline
	m.mu.Unlock()

	if !changed {
		return
	}
	if offline {
		logging.Get().Warn().Err(err).Msg("backend unreachable")
	} else {
		logging.Get().Info().Msg("backend reachable again")
	}
	if m.program != nil {
		m.program.Send(messages.ConnectivityMsg{Offline: offline})
	}
}
