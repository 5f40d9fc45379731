package docs

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
)

var reloadTag = []byte(`<script src="` + ReloadScriptPath + `"></script>`)

// bufferedResponse holds a response so the body can be rewritten
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header         { return b.header }
func (b *bufferedResponse) WriteHeader(status int)      { b.status = status }
func (b *bufferedResponse) Write(p []byte) (int, error) { return b.body.Write(p) }

// injectReloadScript adds the reload script tag to HTML pages
func injectReloadScript(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !isPage(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		rec := &bufferedResponse{header: make(http.Header), status: http.StatusOK}
		next.ServeHTTP(rec, r)

		body := rec.body.Bytes()
		if rec.status == http.StatusOK && strings.HasPrefix(rec.header.Get("Content-Type"), "text/html") {
			body = insertScript(body)
			rec.header.Set("Content-Length", strconv.Itoa(len(body)))
		}

		for k, v := range rec.header {
			w.Header()[k] = v
		}
		w.WriteHeader(rec.status)
		w.Write(body)
	})
}

func isPage(path string) bool {
	return strings.HasSuffix(path, "/") || strings.HasSuffix(path, ".html")
}

// insertScript places the tag before the last </body>, or appends it
func insertScript(page []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if idx < 0 {
		return append(page, reloadTag...)
	}
	out := make([]byte, 0, len(page)+len(reloadTag))
	out = append(out, page[:idx]...)
	out = append(out, reloadTag...)
	return append(out, page[idx:]...)
}
