package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"s38cli/internal/config"
	apperrors "s38cli/internal/errors"
	"s38cli/internal/middleware"
)

const tracerName = "s38cli/transport/http"

// Server is the optional status server of a decode run.
type Server struct {
	router   chi.Router
	logger   *slog.Logger
	srv      *http.Server
	listener net.Listener
	done     chan error
}

// NewServer wires the status routes. promHandler may be nil when metrics are
// disabled, in which case /metrics answers 404.
func NewServer(provider SummaryProvider, promHandler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "status_server"))

	health := NewHealthHandler(config.AppVersion, provider, logger)
	summary := NewSummaryHandler(provider, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(tracerName))
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, apperrors.NotFoundError(r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, apperrors.ErrMethodNotAllowed)
	})

	r.Get("/health", health.HealthCheck)
	if promHandler != nil {
		r.Method(http.MethodGet, "/metrics", promHandler)
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/summary", summary.GetSummary)
	})

	return &Server{router: r, logger: logger}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on cfg.Addr and serves in the background.
func (s *Server) Start(cfg config.ServerConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeConfig, "failed to listen", err).
			WithContext("addr", cfg.Addr)
	}
	s.listener = ln
	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.done = make(chan error, 1)

	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()

	s.logger.Info("Status server listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-s.done
}
