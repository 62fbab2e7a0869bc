// AngelaMos | 2026
// dto.go

package authprovider

import (
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresIn    int       `json:"expiresIn"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type UserPayload struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

type AuthResponse struct {
	User   UserPayload   `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

// IdentityResponse is the serialized Identity; the provider-side
// credential never leaves the package.
type IdentityResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

func ToIdentityResponse(i *Identity) IdentityResponse {
	return IdentityResponse{
		ID:            i.ID,
		Name:          i.Name,
		Email:         i.Email,
		EmailVerified: i.EmailVerified,
		CreatedAt:     i.CreatedAt,
	}
}
