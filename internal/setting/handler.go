// AngelaMos | 2026
// handler.go

package setting

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clubfines/backend/internal/core"
	"github.com/clubfines/backend/internal/middleware"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/settings", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetSettings)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperadmin)
			r.Post("/", h.UpdateSettings)
		})
	})
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repo.GetAll(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toMap(settings))
}

// UpdateSettings validates every key first, then writes the batch in
// one transaction, so no failure partially applies it.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if len(values) == 0 {
		core.BadRequest(w, "no settings provided")
		return
	}

	for key, value := range values {
		if err := ValidateValue(key, value); err != nil {
			core.JSONError(w, err)
			return
		}
	}

	if err := h.repo.UpsertAll(r.Context(), values); err != nil {
		core.InternalServerError(w, err)
		return
	}

	settings, err := h.repo.GetAll(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toMap(settings))
}

func toMap(settings []Setting) map[string]string {
	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	return out
}
