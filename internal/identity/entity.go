// AngelaMos | 2026
// entity.go

package identity

import (
	"strings"
	"time"
)

// User is the application's own authorization-bearing user record: it
// holds the role and an independent password hash. Its auth-provider
// counterpart lives in the authprovider package and carries neither.
type User struct {
	ID           int64      `db:"id"`
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Role         string     `db:"role"`
	AvatarURL    *string    `db:"avatar_url"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsSuperadmin() bool {
	return u.Role == RoleSuperadmin
}

const (
	RoleViewer     = "viewer"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleViewer, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// NormalizeEmail lower-cases and trims an address. Every lookup and
// every stored email goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
