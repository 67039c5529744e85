package handlers

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"raffledash/internal/middleware"
)

// Routes builds the dashboard router. The JSON routes are served both at the
// root and under /api, where the old dashboard mounted them.
func (h *Handler) Routes(logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", h.Health)

	// Pages
	r.Get("/", h.Index)
	r.Get("/views/{viewId}/results", h.Results)
	r.Get("/views/{viewId}/owners", h.Owners)
	r.Get("/raffles/{raffleId}", h.RafflePage)

	// JSON
	r.Get("/raffles", h.ListRaffles)
	r.Get("/rafflebuyers/{raffleId}", h.ListBuyers)
	r.Route("/api", func(r chi.Router) {
		r.Get("/raffles", h.ListRaffles)
		r.Get("/rafflebuyers/{raffleId}", h.ListBuyers)
	})

	return r
}
