package ordershttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the order endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/duplicate", h.handleDuplicate)
	})
}

func pathID(r *http.Request) string {
	return chi.URLParam(r, "id")
}
