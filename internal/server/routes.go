package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/attacktree/pkg/buildinfo"
)

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.SetHeader("Server", buildinfo.Header()))
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.Timeout))
		r.Use(middleware.AllowContentType("application/json", "text/plain"))

		r.Post("/layout", s.handleLayout)
		r.Post("/diagram", s.handleDiagram)

		r.Route("/assessments", func(r chi.Router) {
			r.Get("/", s.handleListAssessments)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/layout", s.handleAssessmentLayout)
				r.Get("/diagram", s.handleAssessmentDiagram)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}
