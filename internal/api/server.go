// Package api serves the read-only query surface over the ingested data.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/paper-trail/papertrail/internal/db"
)

// Server holds the query handlers and their shared connection pool.
type Server struct {
	pool db.Pool
	log  *zap.Logger
}

// NewServer creates a Server over the given pool.
func NewServer(pool db.Pool) *Server {
	return &Server{
		pool: pool,
		log:  zap.L().With(zap.String("component", "api")),
	}
}

// Router builds the chi router. The /api subtree is CORS-open so browser
// frontends on other origins can query it directly.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"*"},
		}))

		r.Get("/politicians/search", s.handlePoliticianSearch)
		r.Get("/politician/{id}", s.handlePolitician)
		r.Get("/politician/{id}/votes", s.handlePoliticianVotes)
		r.Get("/politician/{id}/donations/summary", s.handleDonationSummary)
		r.Get("/donors/search", s.handleDonorSearch)
		r.Get("/donor/{id}/donations", s.handleDonorDonations)
	})

	return r
}

// ListenAndServe runs the HTTP server until the context is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "api: listen")
	}
	return nil
}
