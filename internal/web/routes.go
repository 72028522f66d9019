package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-sentry/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	identitiesHandler := handlers.NewIdentitiesHandler(s.engine, s.log)
	processHandler := handlers.NewProcessHandler(s.engine, s.log)
	historyHandler := handlers.NewHistoryHandler(s.engine, s.log)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Identities
		r.Get("/identities", identitiesHandler.List)
		r.Post("/identities", identitiesHandler.Register)
		r.Delete("/identities/{name}", identitiesHandler.Delete)

		// Frame processing
		r.Post("/detect", processHandler.Detect)

		// History
		r.Get("/history", historyHandler.Query)
		r.Get("/stats", historyHandler.Stats)
	})
}
