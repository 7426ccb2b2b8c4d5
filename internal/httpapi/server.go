// Package httpapi exposes the link graph over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesh-intelligence/docflow/internal/logging"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

// ActorHeader carries the ID of the user performing a mutation. The caller
// (a gateway that has already authorized the request) sets it.
const ActorHeader = "X-Actor-ID"

const shutdownTimeout = 5 * time.Second

// Store is the backend surface the API writes through.
type Store interface {
	types.LinkStore
	types.DocumentCatalog
}

// LinkLister lists the enriched links of a document.
type LinkLister interface {
	GetLinksFor(ctx context.Context, ref types.DocumentRef) ([]types.LinkView, error)
}

// FlowBuilder builds the positioned flow of a document.
type FlowBuilder interface {
	GetDocumentFlow(ctx context.Context, ref types.DocumentRef) (*types.FlowView, error)
}

// Server wires handlers, middleware, and metrics around the graph services.
type Server struct {
	store    Store
	links    LinkLister
	flows    FlowBuilder
	logger   *log.Logger
	validate *validator.Validate
	registry *prometheus.Registry
	metrics  *metrics
}

// NewServer creates a Server. A nil logger discards output.
func NewServer(store Store, links LinkLister, flows FlowBuilder, logger *log.Logger) *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		store:    store,
		links:    links,
		flows:    flows,
		logger:   logging.OrDiscard(logger),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		registry: reg,
		metrics:  newMetrics(reg),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(s.metrics.instrument)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/links", func(r chi.Router) {
			r.Post("/", s.createLink)
			r.Get("/{linkID}", s.getLink)
			r.Delete("/{linkID}", s.deleteLink)
		})
		r.Route("/documents/{kind}/{id}", func(r chi.Router) {
			r.Put("/", s.putDocument)
			r.Get("/links", s.documentLinks)
			r.Get("/flow", s.documentFlow)
		})
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
