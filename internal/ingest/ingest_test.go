package ingest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/parley/internal/api"
	"github.com/fragmede/parley/internal/cache"
)

// writeTree lays out root/<agent>/<file> fixtures.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newUploadServer(t *testing.T) (*httptest.Server, func() map[string]int) {
	t.Helper()
	var mu sync.Mutex
	perAgent := map[string]int{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vs/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		agent := r.FormValue("agent")
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)

		if hdr.Filename == "broken.pdf" {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"detail":"ingestion pipeline error"}`)
			return
		}

		mu.Lock()
		perAgent[agent]++
		mu.Unlock()
		io.WriteString(w, `{"status":"uploaded","filename":"`+hdr.Filename+`","vector_store":"vs_`+agent+`","vector_store_id":"vs_1"}`)
	}))
	t.Cleanup(srv.Close)

	counts := func() map[string]int {
		mu.Lock()
		defer mu.Unlock()
		out := make(map[string]int, len(perAgent))
		for k, v := range perAgent {
			out[k] = v
		}
		return out
	}
	return srv, counts
}

func openTestDB(t *testing.T) *cache.DB {
	t.Helper()
	db, err := cache.Open(filepath.Join(t.TempDir(), "parley.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunUploadsTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"comercial/tarifas.pdf": "precio",
		"comercial/notas.md":    "# notas",
		"comercial/logo.png":    "PNG",
		"soporte/faq.md":        "# faq",
	})
	srv, counts := newUploadServer(t)
	db := openTestDB(t)

	res, err := Run(context.Background(), api.NewClient(srv.URL, 0), db, Options{Root: root, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, res.OK)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Failed)
	assert.NotEmpty(t, res.BatchID)

	got := counts()
	assert.Equal(t, 2, got["comercial"])
	assert.Equal(t, 1, got["soporte"])

	records, err := db.RecentUploads(10)
	require.NoError(t, err)
	require.Len(t, records, 4)
	byStatus := map[string]int{}
	for _, r := range records {
		byStatus[r.Status]++
		assert.Equal(t, res.BatchID, r.BatchID)
	}
	assert.Equal(t, 3, byStatus[cache.UploadOK])
	assert.Equal(t, 1, byStatus[cache.UploadSkipped])
}

func TestRunRecordsFailures(t *testing.T) {
	root := writeTree(t, map[string]string{
		"documental/ok.pdf":     "fine",
		"documental/broken.pdf": "explodes server-side",
	})
	srv, _ := newUploadServer(t)
	db := openTestDB(t)

	res, err := Run(context.Background(), api.NewClient(srv.URL, 0), db, Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, 1, res.OK)
	assert.Equal(t, 1, res.Failed)

	records, err := db.RecentUploads(10)
	require.NoError(t, err)
	var failed *cache.Upload
	for _, r := range records {
		if r.Status == cache.UploadFailed {
			failed = r
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "broken.pdf", failed.Filename)
	assert.Contains(t, failed.Error, "ingestion pipeline error")
}

func TestRunAgentFilter(t *testing.T) {
	root := writeTree(t, map[string]string{
		"comercial/a.pdf": "a",
		"soporte/b.md":    "b",
	})
	srv, counts := newUploadServer(t)
	db := openTestDB(t)

	res, err := Run(context.Background(), api.NewClient(srv.URL, 0), db, Options{
		Root:   root,
		Agents: []string{"soporte"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.OK)

	got := counts()
	assert.Zero(t, got["comercial"])
	assert.Equal(t, 1, got["soporte"])
}

func TestRunEmptyRoot(t *testing.T) {
	srv, _ := newUploadServer(t)
	db := openTestDB(t)

	res, err := Run(context.Background(), api.NewClient(srv.URL, 0), db, Options{Root: t.TempDir()})
	require.NoError(t, err)
	assert.Zero(t, res.OK+res.Skipped+res.Failed)
}

func TestRunMissingRoot(t *testing.T) {
	srv, _ := newUploadServer(t)
	db := openTestDB(t)

	_, err := Run(context.Background(), api.NewClient(srv.URL, 0), db, Options{
		Root: filepath.Join(t.TempDir(), "nope"),
	})
	require.Error(t, err)
}
