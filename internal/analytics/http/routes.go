package analytichttp

import "github.com/go-chi/chi/v5"

// MountRoutes registers dashboard routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.ShowDashboard)
}
