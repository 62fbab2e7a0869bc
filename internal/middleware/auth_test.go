// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubfines/backend/internal/core"
)

type fakeLegacyLoader struct {
	users map[int64]*AuthUser
}

func (f *fakeLegacyLoader) LoadActiveUser(
	_ context.Context,
	id int64,
) (*AuthUser, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return user, nil
}

type fakeSessionResolver struct {
	sessions map[string]*AuthUser
	err      error
}

func (f *fakeSessionResolver) ResolveSession(
	_ context.Context,
	token string,
) (*AuthUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.sessions[token]
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	return user, nil
}

func TestParseLegacyToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantID  int64
		wantErr bool
	}{
		{"valid", "user_42_1700000000", 42, false},
		{"timestamp is not checked", "user_7_not-a-timestamp", 7, false},
		{"two parts", "user_42", 0, true},
		{"four parts", "user_42_1_2", 0, true},
		{"wrong literal", "admin_42_1700000000", 0, true},
		{"non-numeric id", "user_abc_1700000000", 0, true},
		{"empty", "", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseLegacyToken(tc.token)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, id)
		})
	}
}

func authStack(
	legacy LegacyUserLoader,
	sessions SessionResolver,
) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		w.Header().Set("X-User-Role", user.Role)
		w.WriteHeader(http.StatusOK)
	})
	return Authenticator(legacy, sessions)(next)
}

func doAuth(t *testing.T, handler http.Handler, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func wireCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestAuthenticatorLegacyScheme(t *testing.T) {
	legacy := &fakeLegacyLoader{users: map[int64]*AuthUser{
		42: {ID: 42, Name: "Jane", Email: "jane@example.com", Role: RoleAdmin},
	}}
	handler := authStack(legacy, &fakeSessionResolver{})

	t.Run("valid token resolves user", func(t *testing.T) {
		rec := doAuth(t, handler, "Bearer user_42_1700000000")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, RoleAdmin, rec.Header().Get("X-User-Role"))
	})

	t.Run("soft-deleted or unknown user", func(t *testing.T) {
		rec := doAuth(t, handler, "Bearer user_99_1700000000")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "USER_NOT_FOUND", wireCode(t, rec))
	})

	t.Run("malformed legacy token", func(t *testing.T) {
		rec := doAuth(t, handler, "Bearer user_forty-two_123")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_TOKEN", wireCode(t, rec))
	})

	t.Run("missing header", func(t *testing.T) {
		rec := doAuth(t, handler, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "MISSING_TOKEN", wireCode(t, rec))
	})
}

func TestAuthenticatorSessionScheme(t *testing.T) {
	sessions := &fakeSessionResolver{sessions: map[string]*AuthUser{
		"session-token": {
			ID:    7,
			Name:  "Sam",
			Email: "sam@example.com",
			Role:  RoleViewer,
		},
	}}
	handler := authStack(&fakeLegacyLoader{}, sessions)

	t.Run("valid session", func(t *testing.T) {
		rec := doAuth(t, handler, "Bearer session-token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, RoleViewer, rec.Header().Get("X-User-Role"))
	})

	t.Run("unknown session", func(t *testing.T) {
		rec := doAuth(t, handler, "Bearer bogus")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_TOKEN", wireCode(t, rec))
	})

	t.Run("expired session", func(t *testing.T) {
		expired := &fakeSessionResolver{err: core.ErrTokenExpired}
		rec := doAuth(t, authStack(&fakeLegacyLoader{}, expired), "Bearer x")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_EXPIRED", wireCode(t, rec))
	})

	t.Run("revoked session", func(t *testing.T) {
		revoked := &fakeSessionResolver{err: core.ErrTokenRevoked}
		rec := doAuth(t, authStack(&fakeLegacyLoader{}, revoked), "Bearer x")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_REVOKED", wireCode(t, rec))
	})
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	withRole := func(role string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if role != "" {
			ctx := context.WithValue(req.Context(), UserRoleKey, role)
			req = req.WithContext(ctx)
		}
		return req
	}

	t.Run("viewer blocked from admin route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, withRole(RoleViewer))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "INSUFFICIENT_PERMISSIONS", wireCode(t, rec))
	})

	t.Run("admin passes admin route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, withRole(RoleAdmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin blocked from superadmin route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireSuperadmin(next).ServeHTTP(rec, withRole(RoleAdmin))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("superadmin passes everywhere", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireSuperadmin(next).ServeHTTP(rec, withRole(RoleSuperadmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no role in context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, withRole(""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", wireCode(t, rec))
	})
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"no header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"scheme only", "Bearer", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			assert.Equal(t, tc.want, ExtractToken(req))
		})
	}
}
