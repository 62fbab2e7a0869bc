// AngelaMos | 2026
// handler_test.go

package fine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubfines/backend/internal/core"
	"github.com/clubfines/backend/internal/finereason"
	"github.com/clubfines/backend/internal/middleware"
	"github.com/clubfines/backend/internal/player"
)

type fakeFineRepo struct {
	fines  map[int64]*FineWithNames
	nextID int64
}

func newFakeFineRepo() *fakeFineRepo {
	return &fakeFineRepo{fines: make(map[int64]*FineWithNames)}
}

func (f *fakeFineRepo) Create(_ context.Context, fine *Fine) error {
	f.nextID++
	fine.ID = f.nextID
	fine.CreatedAt = time.Now()
	f.fines[fine.ID] = &FineWithNames{
		Fine:              *fine,
		PlayerName:        "Alex Keeper",
		ReasonDescription: "Late to training",
		AddedByName:       "Admin User",
	}
	return nil
}

func (f *fakeFineRepo) GetByID(
	_ context.Context,
	id int64,
) (*FineWithNames, error) {
	fine, ok := f.fines[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return fine, nil
}

func (f *fakeFineRepo) List(
	_ context.Context,
	_ ListFinesParams,
) ([]FineWithNames, error) {
	out := []FineWithNames{}
	for _, fine := range f.fines {
		out = append(out, *fine)
	}
	return out, nil
}

func (f *fakeFineRepo) SoftDelete(_ context.Context, id int64) error {
	if _, ok := f.fines[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.fines, id)
	return nil
}

func (f *fakeFineRepo) PlayerTotals(_ context.Context) ([]PlayerTotal, error) {
	totals := map[int64]*PlayerTotal{}
	for _, fine := range f.fines {
		t, ok := totals[fine.PlayerID]
		if !ok {
			t = &PlayerTotal{PlayerID: fine.PlayerID, PlayerName: fine.PlayerName}
			totals[fine.PlayerID] = t
		}
		t.FineCount++
		t.TotalAmount += fine.Amount
	}
	out := []PlayerTotal{}
	for _, t := range totals {
		out = append(out, *t)
	}
	return out, nil
}

type fakePlayers struct {
	known map[int64]bool
}

func (f *fakePlayers) GetByID(
	_ context.Context,
	id int64,
) (*player.Player, error) {
	if !f.known[id] {
		return nil, core.ErrNotFound
	}
	return &player.Player{ID: id, Name: "Alex Keeper"}, nil
}

type fakeReasons struct {
	known map[int64]float64
}

func (f *fakeReasons) GetByID(
	_ context.Context,
	id int64,
) (*finereason.FineReason, error) {
	amount, ok := f.known[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &finereason.FineReason{
		ID:            id,
		Description:   "Late to training",
		DefaultAmount: amount,
	}, nil
}

// fakeAuth plays the authenticator role: role comes from a header so
// each request can pick its caller.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get("X-Test-Role")
		if role == "" {
			role = middleware.RoleViewer
		}
		ctx := r.Context()
		ctx = context.WithValue(ctx, middleware.UserKey, &middleware.AuthUser{
			ID:   10,
			Name: "Admin User",
			Role: role,
		})
		ctx = context.WithValue(ctx, middleware.UserIDKey, int64(10))
		ctx = context.WithValue(ctx, middleware.UserRoleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newFineRouter(repo Repository) http.Handler {
	svc := NewService(
		repo,
		&fakePlayers{known: map[int64]bool{1: true}},
		&fakeReasons{known: map[int64]float64{1: 10}},
	)
	router := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(router, fakeAuth)
	return router
}

func postFine(
	t *testing.T,
	router http.Handler,
	role, body string,
) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(
		http.MethodPost,
		"/fines",
		strings.NewReader(body),
	)
	req.Header.Set("X-Test-Role", role)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateFineRoleGate(t *testing.T) {
	router := newFineRouter(newFakeFineRepo())

	body := `{"playerId":1,"fineReasonId":1,"amount":25,"fineDate":"2024-01-01"}`

	t.Run("viewer is forbidden", func(t *testing.T) {
		rec := postFine(t, router, middleware.RoleViewer, body)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var resp struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "INSUFFICIENT_PERMISSIONS", resp.Code)
	})

	t.Run("admin creates with joined names", func(t *testing.T) {
		rec := postFine(t, router, middleware.RoleAdmin, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp FineResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 25.0, resp.Amount)
		assert.Equal(t, "Alex Keeper", resp.PlayerName)
		assert.Equal(t, "2024-01-01", resp.FineDate)
		assert.Equal(t, int64(10), resp.AddedByUserID)
	})
}

func TestCreateFineDefaultsAmountFromReason(t *testing.T) {
	router := newFineRouter(newFakeFineRepo())

	body := `{"playerId":1,"fineReasonId":1,"fineDate":"2024-01-01"}`
	rec := postFine(t, router, middleware.RoleAdmin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp FineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10.0, resp.Amount, "reason default applies")
}

func TestCreateFineValidation(t *testing.T) {
	router := newFineRouter(newFakeFineRepo())

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			"unknown player",
			`{"playerId":99,"fineReasonId":1,"fineDate":"2024-01-01"}`,
			http.StatusBadRequest,
			"PLAYER_NOT_FOUND",
		},
		{
			"unknown reason",
			`{"playerId":1,"fineReasonId":99,"fineDate":"2024-01-01"}`,
			http.StatusBadRequest,
			"FINE_REASON_NOT_FOUND",
		},
		{
			"bad date",
			`{"playerId":1,"fineReasonId":1,"fineDate":"January 1st"}`,
			http.StatusBadRequest,
			"INVALID_FINE_DATE",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postFine(t, router, middleware.RoleAdmin, tc.body)
			assert.Equal(t, tc.status, rec.Code)

			var resp struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp.Code)
		})
	}
}

func TestFinesReport(t *testing.T) {
	repo := newFakeFineRepo()
	router := newFineRouter(repo)

	for _, amount := range []string{"25", "10"} {
		body := `{"playerId":1,"fineReasonId":1,"amount":` + amount +
			`,"fineDate":"2024-01-01"}`
		rec := postFine(t, router, middleware.RoleAdmin, body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/fines/report", nil)
	req.Header.Set("X-Test-Role", middleware.RoleViewer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 35.0, resp.GrandTotal)
	assert.Equal(t, 2, resp.FineCount)
	require.Len(t, resp.Totals, 1)
	assert.Equal(t, "Alex Keeper", resp.Totals[0].PlayerName)
}

func TestDeleteFineRequiresAdmin(t *testing.T) {
	repo := newFakeFineRepo()
	router := newFineRouter(repo)

	body := `{"playerId":1,"fineReasonId":1,"amount":5,"fineDate":"2024-01-01"}`
	rec := postFine(t, router, middleware.RoleAdmin, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/fines/1", nil)
	req.Header.Set("X-Test-Role", middleware.RoleViewer)
	del := httptest.NewRecorder()
	router.ServeHTTP(del, req)
	assert.Equal(t, http.StatusForbidden, del.Code)

	req = httptest.NewRequest(http.MethodDelete, "/fines/1", nil)
	req.Header.Set("X-Test-Role", middleware.RoleAdmin)
	del = httptest.NewRecorder()
	router.ServeHTTP(del, req)
	assert.Equal(t, http.StatusNoContent, del.Code)
}
