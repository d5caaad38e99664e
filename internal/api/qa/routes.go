package qa

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers question-answering routes behind auth
func RegisterRoutes(r chi.Router, h *Handler, auth func(http.Handler) http.Handler) {
	r.Route("/hackrx", func(r chi.Router) {
		r.Use(auth)
		r.Post("/run", h.Run)
	})
}
