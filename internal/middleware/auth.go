// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/clubfines/backend/internal/core"
)

const (
	UserKey     contextKey = "auth_user"
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
)

const (
	RoleViewer     = "viewer"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

var roleRank = map[string]int{
	RoleViewer:     0,
	RoleAdmin:      1,
	RoleSuperadmin: 2,
}

func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// AuthUser is the resolved caller identity. Role comes exclusively
// from the legacy user record; neither token scheme carries it.
type AuthUser struct {
	ID        int64
	Name      string
	Email     string
	Role      string
	AvatarURL *string
}

// LegacyUserLoader resolves a legacy bearer token's numeric user id to
// an active (non-soft-deleted) user.
type LegacyUserLoader interface {
	LoadActiveUser(ctx context.Context, id int64) (*AuthUser, error)
}

// SessionResolver resolves a signed session token to the legacy user
// carrying the caller's role.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*AuthUser, error)
}

const legacyTokenPrefix = "user_"

// ParseLegacyToken validates the historical bearer grammar
// user_<numericId>_<timestamp>: exactly three underscore-separated
// fields, first field the literal "user", second a base-10 integer.
// The timestamp is carried but deliberately not validated; this is a
// preserved legacy behavior.
func ParseLegacyToken(token string) (int64, error) {
	parts := strings.Split(token, "_")
	if len(parts) != 3 {
		return 0, core.ErrTokenInvalid
	}

	if parts[0] != "user" {
		return 0, core.ErrTokenInvalid
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, core.ErrTokenInvalid
	}

	return id, nil
}

// Authenticator accepts either authentication scheme on the same
// Authorization header: the legacy "user_<id>_<ts>" grammar or an
// auth-provider session token.
func Authenticator(
	legacy LegacyUserLoader,
	sessions SessionResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				core.JSONError(w, core.UnauthorizedErrorCode(
					"MISSING_TOKEN",
					"missing authorization token",
				))
				return
			}

			user, err := resolve(r.Context(), legacy, sessions, token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserKey, user)
			ctx = context.WithValue(ctx, UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UserRoleKey, user.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolve(
	ctx context.Context,
	legacy LegacyUserLoader,
	sessions SessionResolver,
	token string,
) (*AuthUser, error) {
	if strings.HasPrefix(token, legacyTokenPrefix) {
		id, err := ParseLegacyToken(token)
		if err != nil {
			return nil, err
		}
		return legacy.LoadActiveUser(ctx, id)
	}

	return sessions.ResolveSession(ctx, token)
}

// RequireRole gates a route on the ordered role set
// viewer < admin < superadmin.
func RequireRole(minRole string) func(http.Handler) http.Handler {
	minRank, ok := roleRank[minRole]
	if !ok {
		panic("middleware: unknown role " + minRole)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetUserRole(r.Context())
			if role == "" {
				core.JSONError(w, core.UnauthorizedErrorCode(
					"UNAUTHORIZED",
					"authentication required",
				))
				return
			}

			if roleRank[role] < minRank {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(RoleAdmin)(next)
}

func RequireSuperadmin(next http.Handler) http.Handler {
	return RequireRole(RoleSuperadmin)(next)
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		core.JSONError(w, core.UnauthorizedErrorCode(
			"USER_NOT_FOUND",
			"token names no current user",
		))
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetUser(ctx context.Context) *AuthUser {
	if user, ok := ctx.Value(UserKey).(*AuthUser); ok {
		return user
	}
	return nil
}

func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(UserIDKey).(int64); ok {
		return id
	}
	return 0
}

func GetUserRole(ctx context.Context) string {
	if role, ok := ctx.Value(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != 0
}
