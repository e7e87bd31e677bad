package health

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fragmede/parley/internal/api"
)

func TestPollTracksConnectivity(t *testing.T) {
	var mu sync.Mutex
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ok := healthy
		mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	m := New(api.NewClient(srv.URL, 0), time.Minute)

	m.poll()
	if m.Offline() {
		t.Error("healthy backend reported offline")
	}

	mu.Lock()
	healthy = false
	mu.Unlock()
	m.poll()
	if !m.Offline() {
		t.Error("unhealthy backend reported online")
	}

	mu.Lock()
	healthy = true
	mu.Unlock()
	m.poll()
	if m.Offline() {
		t.Error("recovered backend still reported offline")
	}
}

func TestPollUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	m := New(api.NewClient(srv.URL, 0), time.Minute)
	m.poll()
	if !m.Offline() {
		t.Error("unreachable backend should report offline")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(api.NewClient("http://localhost:0", 0), time.Minute)
	m.Stop()
	m.Stop()
}
