package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.panel != nil {
		r.Handle("/panel/*", http.StripPrefix("/panel", s.panel))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/panel/", http.StatusFound)
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/status", s.handleStatus)

		r.Post("/auth/login", s.handleLogin)

		r.Get("/sequences", s.handleListSequences)
		r.Get("/sequences/{name}", s.handleGetSequence)
		r.Get("/scenes", s.handleListScenes)
		r.Get("/runs", s.handleListRuns)
		r.Get("/audit", s.handleListAudit)

		r.Get("/ws", s.handleWebSocket)

		// Commands: operator token required when auth is enabled
		r.Group(func(r chi.Router) {
			r.Use(s.operatorMiddleware)

			r.Post("/stop", s.handleStop)
			r.Put("/mode", s.handleSetMode)
			r.Post("/sequences/{name}/run", s.handleRunSequence)
			r.Post("/scenes/{name}/run", s.handleRunScene)
			r.Post("/triggers/{name}", s.handleFireTrigger)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleStatus returns the rig and executor snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}
