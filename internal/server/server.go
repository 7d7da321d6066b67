// Package server exposes the map views over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/parroquia-maps/internal/parish"
	"github.com/sells-group/parroquia-maps/internal/view"
)

// Views builds view tables; *view.Builder implements it.
type Views interface {
	Build(ctx context.Context, name string, scope parish.Scope, k int) (*view.Table, error)
	Explain(ctx context.Context, scope parish.Scope) ([]view.Explanation, error)
}

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
	RateLimit   float64 // requests per second; 0 disables limiting
	RateBurst   int
	MaxK        int
}

// Server routes requests to the view builder.
type Server struct {
	views   Views
	opts    Options
	metrics *Metrics
}

// New returns a Server with its own metrics registry.
func New(views Views, opts Options) *Server {
	if opts.MaxK <= 0 {
		opts.MaxK = 20
	}
	return &Server{views: views, opts: opts, metrics: NewMetrics()}
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			burst := s.opts.RateBurst
			if burst <= 0 {
				burst = 1
			}
			r.Use(s.rateLimit(rate.NewLimiter(rate.Limit(s.opts.RateLimit), burst)))
		}
		r.Get("/views", s.handleListViews)
		r.Get("/views/{view}", s.handleView)
		r.Get("/sectors/explain", s.handleExplain)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server: listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListViews(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"views": view.Names})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "view")
	if !knownView(name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown view %q", name))
		return
	}
	scope, err := parish.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	k, err := s.parseK(r.URL.Query().Get("k"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tbl, err := s.views.Build(r.Context(), name, scope, k)
	if err != nil {
		s.metrics.ViewBuildsTotal.WithLabelValues(name, "error").Inc()
		s.fail(w, r, err)
		return
	}
	s.metrics.ViewBuildsTotal.WithLabelValues(name, "ok").Inc()

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(tbl); err != nil {
		zap.L().Warn("server: encode view", zap.String("view", name), zap.Error(err))
	}
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	scope, err := parish.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ex, err := s.views.Explain(r.Context(), scope)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scope":    scope,
		"parishes": ex,
	})
}

func (s *Server) parseK(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 1 || k > s.opts.MaxK {
		return 0, eris.Errorf("k must be an integer between 1 and %d", s.opts.MaxK)
	}
	return k, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("server: request failed",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func knownView(name string) bool {
	for _, v := range view.Names {
		if v == name {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
