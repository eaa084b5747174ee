package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all projection routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/projection", func(r chi.Router) {
		r.Get("/defaults", h.HandleGetDefaults)
		r.Post("/compute", h.HandleCompute)
		r.Post("/view", h.HandleView)
		r.Post("/export", h.HandleExport)
		r.Post("/export/store", h.HandleStoreExport)
		r.Get("/live", h.HandleLive)
	})
}
