// internal/api/router.go
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", h.HandleSnapshot)
		r.Get("/readings", h.HandleReadings)
		r.Get("/readings/{moteID}", h.HandleMoteReadings)
		r.Get("/statistics", h.HandleStatistics)
		r.Get("/statistics/{moteID}", h.HandleMoteStatistics)
		r.Get("/map", h.HandlePollutionMap)
		r.Get("/alerts", h.HandleAlerts)
		r.Get("/alerts/severity", h.HandleAlertCounts)
		r.Get("/alerts/{moteID}", h.HandleMoteAlerts)
		r.Get("/status", h.HandleStatus)
	})

	r.Get("/ws", h.HandleWebSocket)
	r.Post("/auth/token", h.HandleToken)

	// Control surface requires an API key or JWT.
	r.Route("/control", func(r chi.Router) {
		r.Use(h.auth.Middleware)
		r.Post("/start", h.HandleStart)
		r.Post("/stop", h.HandleStop)
	})

	return r
}
