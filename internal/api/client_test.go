package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSendsFormCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		assert.Equal(t, "s3cret", r.PostForm.Get("password"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"tok1","token_type":"bearer"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	tr, err := c.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "tok1", tr.AccessToken)
	assert.Equal(t, "bearer", tr.TokenType)
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"incorrect username or password"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	_, err := c.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.Contains(t, err.Error(), "incorrect username or password")
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"username":"alice","name":"Alice","email":"alice@example.com","role":"user"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	c.SetToken("tok1")
	id, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, "user", id.Role)
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		io.WriteString(w, `{"agents":[]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	_, err := c.Agents(context.Background())
	require.NoError(t, err)
}

func TestAgents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agents", r.URL.Path)
		io.WriteString(w, `{"agents":["comercial","soporte","documental"]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	agents, err := c.Agents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"comercial", "soporte", "documental"}, agents)
}

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/ask", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"agent":"soporte","question":"how do I reset?"}`, string(body))

		io.WriteString(w, `{"answer":"Hold the button.","citations":["manual.pdf"]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	ans, err := c.Ask(context.Background(), "soporte", "how do I reset?")
	require.NoError(t, err)
	assert.Equal(t, "Hold the button.", ans.Answer)
	assert.Equal(t, []string{"manual.pdf"}, ans.Citations)
}

func TestAskExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"invalid or expired token"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	c.SetToken("stale")
	_, err := c.Ask(context.Background(), "soporte", "hello?")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestUploadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# hello"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vs/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "documental", r.FormValue("agent"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "notes.md", hdr.Filename)
		content, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "# hello", string(content))

		io.WriteString(w, `{"status":"uploaded","filename":"notes.md","vector_store":"vs_documental","vector_store_id":"vs_123"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	res, err := c.UploadDocument(context.Background(), "documental", path)
	require.NoError(t, err)
	assert.Equal(t, "uploaded", res.Status)
	assert.Equal(t, "vs_documental", res.VectorStore)
	assert.Equal(t, "vs_123", res.VectorStoreID)
}

func TestUploadRejectedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "malware.exe")
	require.NoError(t, os.WriteFile(path, []byte("MZ"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"unsupported file type: .exe"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	_, err := c.UploadDocument(context.Background(), "documental", path)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestHealth(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	assert.NoError(t, c.Health(context.Background()))

	healthy = false
	assert.Error(t, c.Health(context.Background()))
}

func TestDecodeErrorFallsBackToBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream exploded\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	err := c.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream exploded")
	assert.True(t, IsStatus(err, http.StatusBadGateway))
}

func TestExtensionAllowed(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"report.pdf", true},
		{"REPORT.PDF", true},
		{"notes.md", true},
		{"data.csv", true},
		{"contract.docx", true},
		{"readme.txt", true},
		{"binary.exe", false},
		{"archive.tar.gz", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := ExtensionAllowed(tt.name); got != tt.want {
			t.Errorf("ExtensionAllowed(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
