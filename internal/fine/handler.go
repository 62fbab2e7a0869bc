// AngelaMos | 2026
// handler.go

package fine

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clubfines/backend/internal/core"
	"github.com/clubfines/backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/fines", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListFines)
		r.Get("/report", h.Report)
		r.Get("/{fineID}", h.GetFine)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", h.CreateFine)
			r.Delete("/{fineID}", h.DeleteFine)
		})
	})
}

func (h *Handler) ListFines(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	fines, err := h.service.ListFines(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToFineResponseList(fines))
}

func (h *Handler) GetFine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseFineID(w, r)
	if !ok {
		return
	}

	f, err := h.service.GetFine(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "fine")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToFineResponse(f))
}

func (h *Handler) CreateFine(w http.ResponseWriter, r *http.Request) {
	var req CreateFineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	f, err := h.service.CreateFine(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToFineResponse(f))
}

func (h *Handler) DeleteFine(w http.ResponseWriter, r *http.Request) {
	id, ok := parseFineID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteFine(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "fine")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, report)
}

func parseFineID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "fineID"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "invalid fine ID")
		return 0, false
	}
	return id, true
}

func parseListParams(r *http.Request) (ListFinesParams, error) {
	var params ListFinesParams
	q := r.URL.Query()

	if raw := q.Get("playerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return params, core.ValidationError(
				"INVALID_FILTER",
				"playerId must be a positive integer",
			)
		}
		params.PlayerID = &id
	}

	if raw := q.Get("reasonId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return params, core.ValidationError(
				"INVALID_FILTER",
				"reasonId must be a positive integer",
			)
		}
		params.ReasonID = &id
	}

	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(fineDateLayout, raw)
		if err != nil {
			return params, core.ValidationError(
				"INVALID_FILTER",
				"from must be formatted as YYYY-MM-DD",
			)
		}
		params.From = &from
	}

	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(fineDateLayout, raw)
		if err != nil {
			return params, core.ValidationError(
				"INVALID_FILTER",
				"to must be formatted as YYYY-MM-DD",
			)
		}
		params.To = &to
	}

	return params, nil
}
