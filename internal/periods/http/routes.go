package periodshttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the period endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/periods", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/pay", h.handlePay)
		r.Post("/{id}/recompute", h.handleRecompute)
		r.Delete("/{id}", h.handleDelete)
	})
}

func pathID(r *http.Request) string {
	return chi.URLParam(r, "id")
}
