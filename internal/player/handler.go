// AngelaMos | 2026
// handler.go

package player

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clubfines/backend/internal/core"
	"github.com/clubfines/backend/internal/middleware"
)

type Handler struct {
	repo      Repository
	validator *validator.Validate
}

func NewHandler(repo Repository) *Handler {
	return &Handler{
		repo:      repo,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/players", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListPlayers)
		r.Get("/{playerID}", h.GetPlayer)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", h.CreatePlayer)
			r.Put("/{playerID}", h.UpdatePlayer)
			r.Delete("/{playerID}", h.DeletePlayer)
			r.Post("/{playerID}/restore", h.RestorePlayer)
		})
	})
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.repo.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPlayerResponseList(players))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePlayerID(w, r)
	if !ok {
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "player")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPlayerResponse(p))
}

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p := &Player{
		Name:         req.Name,
		JerseyNumber: req.JerseyNumber,
		AvatarURL:    req.AvatarURL,
	}

	if err := h.repo.Create(r.Context(), p); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToPlayerResponse(p))
}

func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePlayerID(w, r)
	if !ok {
		return
	}

	var req UpdatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "player")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.JerseyNumber != nil {
		p.JerseyNumber = req.JerseyNumber
	}
	if req.AvatarURL != nil {
		p.AvatarURL = req.AvatarURL
	}

	if err := h.repo.Update(r.Context(), p); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "player")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPlayerResponse(p))
}

func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePlayerID(w, r)
	if !ok {
		return
	}

	if err := h.repo.SoftDelete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "player")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) RestorePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePlayerID(w, r)
	if !ok {
		return
	}

	p, err := h.repo.Restore(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "player")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPlayerResponse(p))
}

func parsePlayerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "invalid player ID")
		return 0, false
	}
	return id, true
}
