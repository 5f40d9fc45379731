package docs

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

	"github.com/kindling-dev/kindling/internal/watch"
)

func TestServerServesHTML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>sample</h1>"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "test_sample.html"), []byte("notebook"), 0644))

	srv := httptest.NewServer(NewServer(dir, nil).Handler())
	defer srv.Close()

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/", http.StatusOK, "<h1>sample</h1>"},
		{"/docs/test_sample.html", http.StatusOK, "notebook"},
		{"/healthz", http.StatusOK, ""},
		{"/missing.html", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				buf := make([]byte, 512)
				n, _ := resp.Body.Read(buf)
				assert.Contains(t, string(buf[:n]), tt.body)
			}
		})
	}
}

func TestListenAndServeRequiresHTML(t *testing.T) {
	s := NewServer(filepath.Join(t.TempDir(), "missing"), nil)
	err := s.ListenAndServe(context.Background(), "127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTML documentation not found")
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- NewServer(t.TempDir(), nil).ListenAndServe(ctx, "127.0.0.1:0")
	}()

	cancel()
	assert.NoError(t, <-done)
}

func TestLiveReloadInjectsScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html><BODY><h1>sample</h1></BODY></html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("h1{}"), 0644))

	rs := watch.NewReloadServer(nil)
	defer rs.Close()

	srv := httptest.NewServer(NewServer(dir, nil, WithLiveReload(rs)).Handler())
	defer srv.Close()

	get := func(path string) (*http.Response, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	resp, body := get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `<html><BODY><h1>sample</h1><script src="/__kindling/reload.js"></script></BODY></html>`, body)
	assert.Equal(t, int64(len(body)), resp.ContentLength)

	_, body = get("/style.css")
	assert.Equal(t, "h1{}", body)

	resp, body = get(ReloadScriptPath)
	assert.Equal(t, "application/javascript", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, ReloadPath)
}

func TestInsertScriptWithoutBody(t *testing.T) {
	assert.Equal(t, `<p>x</p><script src="/__kindling/reload.js"></script>`, string(insertScript([]byte("<p>x</p>"))))
}

func TestServerWithoutLiveReload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<body></body>"), 0644))

	srv := httptest.NewServer(NewServer(dir, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + ReloadScriptPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
