// Package server wires the HTTP API: session definitions and their flattened
// sequences, practice records, progress series, XP, and promotions.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/woodshedhq/woodshed/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a Server with all routes configured.
func New(db *storage.DB, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/sessions", s.handleQuerySessions)
	s.router.Get("/api/v1/sessions/{id}", s.handleGetSession)
	s.router.Get("/api/v1/sessions/{id}/sequence", s.handleSessionSequence)
	s.router.Get("/api/v1/progress/series", s.handleProgressSeries)
	s.router.Get("/api/v1/students", s.handleListStudents)
	s.router.Get("/api/v1/students/{id}/xp", s.handleStudentXP)
	s.router.Get("/api/v1/students/{id}/promotion", s.handleCheckPromotion)
	s.router.Get("/api/v1/students/{id}/levels", s.handleLevelHistory)
	s.router.Get("/api/v1/students/{id}/stats", s.handleStudentStats)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/students", s.handleUpsertProfile)
		r.Post("/api/v1/sessions", s.handleCreateSession)
		r.Post("/api/v1/records", s.handleCreateRecord)
		r.Post("/api/v1/students/{id}/promotion", s.handlePromote)
		r.Post("/api/v1/import/{dataset}", s.handleImport)
	})
}
