package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"trustlens/app"
	"trustlens/ports"
)

// Server exposes the evidence engine over HTTP. Presentation is read-only;
// all semantics live in the engine.
type Server struct {
	router  *chi.Mux
	service *app.EvidenceService
	repo    ports.EvidenceRepository
}

// Config holds server configuration
type Config struct {
	Port string
}

// NewServer creates the HTTP server around an evidence service.
func NewServer(service *app.EvidenceService, repo ports.EvidenceRepository) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		repo:    repo,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Post("/api/evidence/evaluate", s.handleEvaluate)
	s.router.Get("/api/evidence/{captureId}", s.handleGetEvidence)
	s.router.Get("/api/evidence/{captureId}/report", s.handleGetReport)
	s.router.Get("/api/evidence/{captureId}/export", s.handleExportEvidence)
	s.router.Get("/api/sessions/{sessionId}/evidence", s.handleListSessionEvidence)
	s.router.Post("/api/chain/verify", s.handleVerifyChain)
	s.router.Get("/healthz", s.handleHealth)
}

// Router returns the configured handler for mounting.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe starts the server on the given port.
func (s *Server) ListenAndServe(port string) error {
	return http.ListenAndServe(":"+port, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
