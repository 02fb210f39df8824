// Package webui serves the local browser front-end for voxprobe.
//
// The UI is a single form page: enter text or SSML, pick a voice and
// encoding, generate, and the synthesized clip plays inline. A voice
// browser lists the cached catalogue filtered by language. Health,
// readiness and Prometheus metrics endpoints ride along for free.
//
// The server drives the same [app.App] the CLI commands use; it never talks
// to the synthesis service or the cache directly.
package webui

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/voxprobe/internal/app"
	"github.com/MrWong99/voxprobe/internal/config"
	"github.com/MrWong99/voxprobe/internal/health"
	"github.com/MrWong99/voxprobe/internal/observe"
)

//go:embed page.html
var pageHTML string

const (
	defaultAddr  = ":8080"
	defaultGrace = 5 * time.Second
)

// Server hosts the web UI around an [app.App].
type Server struct {
	app     *app.App
	addr    string
	grace   time.Duration
	met     *observe.Metrics
	tmpl    *template.Template
	handler http.Handler
}

// Option is a functional option for New.
type Option func(*Server)

// WithAddr sets the listen address. Defaults to ":8080".
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithMetrics injects a metrics bundle instead of the package default.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.met = m }
}

// WithShutdownGrace sets how long in-flight requests get on shutdown.
func WithShutdownGrace(d time.Duration) Option {
	return func(s *Server) { s.grace = d }
}

// New builds the server and its route table around a.
func New(a *app.App, opts ...Option) *Server {
	s := &Server{
		app:   a,
		addr:  defaultAddr,
		grace: defaultGrace,
		tmpl:  template.Must(template.New("page").Parse(pageHTML)),
	}
	for _, o := range opts {
		o(s)
	}
	if s.met == nil {
		s.met = observe.DefaultMetrics()
	}
	s.handler = s.routes()
	return s
}

// routes assembles the full route table. Everything except /metrics goes
// through the observe middleware so requests get spans, duration metrics
// and correlation IDs.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /synthesize", s.handleSynthesize)
	mux.HandleFunc("GET /audio/{name}", s.handleAudio)
	mux.HandleFunc("POST /voices/refresh", s.handleRefresh)

	checks := health.New(
		health.DirWritable("outputs", s.app.OutputDir()),
		health.Checker{Name: "credentials", Check: func(context.Context) error {
			creds, err := config.LoadCredentials()
			if err != nil {
				return err
			}
			if creds.Empty() {
				return errors.New("no access token or API key set")
			}
			return nil
		}},
	)
	checks.Register(mux)

	root := http.NewServeMux()
	root.Handle("GET /metrics", promhttp.Handler())
	root.Handle("/", observe.Middleware(s.met)(mux))
	return root
}

// Handler returns the assembled route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests for the
// configured grace period. A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.handler,
		// Synthesis happens inside the request, so the write timeout has to
		// cover a full round-trip to the speech service.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("web ui listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webui: listen on %s: %w", s.addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webui: shutdown: %w", err)
		}
		slog.Info("web ui stopped")
		return nil
	})

	return g.Wait()
}
