package forms

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Open)
	r.Route("/{formID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Discard)
		r.Patch("/header", h.PatchHeader)
		r.Post("/lines", h.AddLine)
		r.Patch("/lines/{lineID}", h.PatchLine)
		r.Delete("/lines/{lineID}", h.RemoveLine)
		r.Post("/validate", h.Validate)
		r.Post("/submit", h.Submit)
		r.Get("/export", h.Export)
	})
}
