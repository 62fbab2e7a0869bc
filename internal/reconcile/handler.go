// AngelaMos | 2026
// handler.go

package reconcile

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clubfines/backend/internal/authprovider"
	"github.com/clubfines/backend/internal/core"
	"github.com/clubfines/backend/internal/identity"
)

// Handler exposes the bootstrap admin endpoints. They carry no
// authentication and exist for initial provisioning and operator
// audits; the bootstrap_routes config flag keeps them off in normal
// deployments.
type Handler struct {
	engine   *Engine
	reporter *Reporter
}

func NewHandler(engine *Engine, reporter *Reporter) *Handler {
	return &Handler{engine: engine, reporter: reporter}
}

// RegisterRoutes registers flat paths so the authenticated /admin
// subtree can coexist on the same router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/create-superadmin", h.CreateSuperadmin)
	r.Post("/admin/create-user", h.CreateUser)
	r.Post("/admin/sync-users", h.SyncUsers)
	r.Get("/admin/verify-user-consistency", h.VerifyConsistency)
}

type provisionResponse struct {
	User     identity.UserResponse         `json:"user"`
	Identity authprovider.IdentityResponse `json:"identity"`
}

func toProvisionResponse(res *Result) provisionResponse {
	return provisionResponse{
		User:     identity.ToUserResponse(res.User),
		Identity: authprovider.ToIdentityResponse(res.Identity),
	}
}

func (h *Handler) CreateSuperadmin(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if in.Role == "" {
		in.Role = identity.RoleSuperadmin
	}

	res, err := h.engine.UpsertOrRecreate(r.Context(), in)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, toProvisionResponse(res))
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	res, err := h.engine.CreateUser(r.Context(), in)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, toProvisionResponse(res))
}

func (h *Handler) SyncUsers(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	res, err := h.engine.Sync(r.Context(), in)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, toProvisionResponse(res))
}

func (h *Handler) VerifyConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.reporter.Run(r.Context())
	if err != nil {
		core.JSONError(w, core.InternalError(
			"DATABASE_ERROR",
			"failed to generate consistency report",
		))
		return
	}

	core.OK(w, report)
}
