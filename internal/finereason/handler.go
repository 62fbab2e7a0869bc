// AngelaMos | 2026
// handler.go

package finereason

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
	r.Route("/fine-reasons", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListFineReasons)
		r.Get("/{reasonID}", h.GetFineReason)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", h.CreateFineReason)
			r.Put("/{reasonID}", h.UpdateFineReason)
			r.Delete("/{reasonID}", h.DeleteFineReason)
			r.Post("/{reasonID}/restore", h.RestoreFineReason)
		})
	})
}

func (h *Handler) ListFineReasons(w http.ResponseWriter, r *http.Request) {
	reasons, err := h.repo.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToFineReasonResponseList(reasons))
}

func (h *Handler) GetFineReason(w http.ResponseWriter, r *http.Request) {
	id, ok := parseReasonID(w, r)
	if !ok {
		return
	}

	f, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "fine reason")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToFineReasonResponse(f))
}

func (h *Handler) CreateFineReason(w http.ResponseWriter, r *http.Request) {
	var req CreateFineReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	f := &FineReason{
		Description:   req.Description,
		DefaultAmount: req.DefaultAmount,
	}

	if err := h.repo.Create(r.Context(), f); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToFineReasonResponse(f))
}

func (h *Handler) UpdateFineReason(w http.ResponseWriter, r *http.Request) {
	id, ok := parseReasonID(w, r)
	if !ok {
		return
	}

	var req UpdateFineReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	f, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "fine reason")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.DefaultAmount != nil {
		f.DefaultAmount = *req.DefaultAmount
	}

	if err := h.repo.Update(r.Context(), f); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "fine reason")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToFineReasonResponse(f))
}

func (h *Handler) DeleteFineReason(w http.ResponseWriter, r *http.Request) {
	id, ok := parseReasonID(w, r)
	if !ok {
		return
	}

	if err := h.repo.SoftDelete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "fine reason")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) RestoreFineReason(w http.ResponseWriter, r *http.Request) {
	id, ok := parseReasonID(w, r)
	if !ok {
		return
	}

	f, err := h.repo.Restore(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "fine reason")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToFineReasonResponse(f))
}

func parseReasonID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "reasonID"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "invalid fine reason ID")
		return 0, false
	}
	return id, true
}
