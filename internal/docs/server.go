// Package docs serves the built HTML documentation of a kindling project.
package docs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kindling-dev/kindling/internal/watch"
)

// Live reload endpoints
const (
	ReloadPath       = "/__kindling/reload"
	ReloadScriptPath = "/__kindling/reload.js"
)

// Server serves a static HTML tree
type Server struct {
	dir    string
	logger *zap.Logger
	reload *watch.ReloadServer
}

// Option configures a Server
type Option func(*Server)

// WithLiveReload injects the reload script into every page and routes the
// reload websocket to rs.
func WithLiveReload(rs *watch.ReloadServer) Option {
	return func(s *Server) {
		s.reload = rs
	}
}

// NewServer creates a server for the HTML tree rooted at dir
func NewServer(dir string, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{dir: dir, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving the documentation
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	files := http.FileServer(http.Dir(s.dir))
	if s.reload != nil {
		r.Get(ReloadPath, s.reload.HandleWebSocket)
		r.Get(ReloadScriptPath, func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/javascript")
			w.Write([]byte(watch.ReloadScript))
		})
		files = injectReloadScript(files)
	}
	r.Handle("/*", files)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if info, err := os.Stat(s.dir); err != nil || !info.IsDir() {
		return fmt.Errorf("HTML documentation not found in %s", s.dir)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
