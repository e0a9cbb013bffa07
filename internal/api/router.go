// Package api serves SkillRoute over a localhost JSON API using chi.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/abhisek/skillroute/internal/pathstore"
	"github.com/abhisek/skillroute/internal/tracker"
)

// Assistant answers learner questions.
type Assistant interface {
	Ask(ctx context.Context, query, pathTitle string) string
}

// Deps are the services the API is built on.
type Deps struct {
	Generator tracker.Generator
	Store     *pathstore.Store
	Assistant Assistant
	Metrics   *Metrics
	Logger    *zap.Logger
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Server holds the handlers and the per-operation in-flight guards.
type Server struct {
	gen     tracker.Generator
	store   *pathstore.Store
	assist  Assistant
	metrics *Metrics
	log     *zap.Logger
	now     func() time.Time

	generating tracker.InFlight
	asking     tracker.InFlight
}

// NewServer creates a Server.
func NewServer(d Deps) *Server {
	s := &Server{
		gen:     d.Generator,
		store:   d.Store,
		assist:  d.Assistant,
		metrics: d.Metrics,
		log:     d.Logger,
		now:     d.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Routes mounts every endpoint on a new chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.middleware)

	r.Get("/health/live", s.Live)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/paths", s.ListPaths)
		r.Post("/paths", s.CreatePath)
		r.Get("/paths/{id}", s.GetPath)
		r.Delete("/paths/{id}", s.DeletePath)
		r.Put("/paths/{id}/phases/{phase}/steps/{step}", s.ToggleStep)
		r.Put("/paths/{id}/steps/{stepID}", s.ToggleStepByID)
		r.Post("/paths/{id}/journal", s.AddJournalEntry)
		r.Delete("/paths/{id}/journal/{entryID}", s.DeleteJournalEntry)
		r.Post("/assist", s.Ask)
	})

	return r
}

func (s *Server) sessionOpts() []tracker.Option {
	return []tracker.Option{tracker.WithClock(s.now), tracker.WithLogger(s.log)}
}
