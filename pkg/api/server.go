// Package api exposes the registry over HTTP.
//
// Routes:
//
//	GET  /packages?type=&namespace=&name=&version=&limit=
//	GET  /packages/{purl}
//	POST /packages/{purl}
//	PUT  /packages/{purl}/attributes/{field}
//	GET  /healthz
//	GET  /metrics
//
// The {purl} segment is the path-escaped coordinate, for example
// "pkg:npm%2Fleft-pad@1.3.0". Errors are rendered as {"code","message"}.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/philips-software/bom-base-sub000/pkg/meta"
	"github.com/philips-software/bom-base-sub000/pkg/purl"
	"github.com/philips-software/bom-base-sub000/pkg/store"
)

// Registry is the part of *registry.Registry the API needs.
type Registry interface {
	Edit(ctx context.Context, p purl.PURL, fn func(ed *meta.Editor) error) error
	Attributes(ctx context.Context, p purl.PURL) ([]meta.AttributeState, error)
	Find(ctx context.Context, f store.Filter) ([]*meta.Package, error)
	Pending() int
}

// Options configures a Server.
type Options struct {
	// CORSOrigins lists the allowed browser origins; empty disables CORS.
	CORSOrigins []string
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Logger  *log.Logger
}

// Server routes HTTP requests to the registry.
type Server struct {
	reg    Registry
	logger *log.Logger
	router chi.Router
}

// NewServer builds the router.
func NewServer(reg Registry, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{reg: reg, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	r.Route("/packages", func(r chi.Router) {
		r.Get("/", s.listPackages)
		r.Get("/{purl}", s.getPackage)
		r.Post("/{purl}", s.createPackage)
		r.Put("/{purl}/attributes/{field}", s.putAttribute)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("server shutdown", "err", err)
		}
	}()

	s.logger.Info("starting server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
