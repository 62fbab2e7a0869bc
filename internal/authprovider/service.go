// AngelaMos | 2026
// service.go

package authprovider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clubfines/backend/internal/core"
	"github.com/clubfines/backend/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
)

// UserDirectory looks up the legacy user that carries the caller's
// role; the auth provider itself stores none.
type UserDirectory interface {
	LoadActiveUserByEmail(
		ctx context.Context,
		email string,
	) (*middleware.AuthUser, error)
}

type Service struct {
	repo         Repository
	sessions     *SessionManager
	users        UserDirectory
	redis        *redis.Client
	blacklistTTL time.Duration
}

func NewService(
	repo Repository,
	sessions *SessionManager,
	users UserDirectory,
	redisClient *redis.Client,
) *Service {
	return &Service{
		repo:         repo,
		sessions:     sessions,
		users:        users,
		redis:        redisClient,
		blacklistTTL: 15 * time.Minute,
	}
}

// SignUp provisions a fresh identity plus its provider-side
// credential. The returned Identity.ID is the provider-issued id the
// reconciliation engine needs for compensation.
func (s *Service) SignUp(
	ctx context.Context,
	name, email, password string,
) (*Identity, error) {
	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	identity := &Identity{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(name),
		Email:         strings.ToLower(strings.TrimSpace(email)),
		EmailVerified: false,
	}

	if err := s.repo.CreateIdentity(ctx, identity); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertCredential(ctx, identity.ID, passwordHash); err != nil {
		// Identity without a credential is unusable; remove it rather
		// than leave a half-provisioned row.
		//nolint:errcheck // best-effort cleanup, original error wins
		_ = s.repo.DeleteIdentity(ctx, identity.ID)
		return nil, fmt.Errorf("store credential: %w", err)
	}

	return identity, nil
}

func (s *Service) FindByEmail(
	ctx context.Context,
	email string,
) (*Identity, error) {
	return s.repo.GetIdentityByEmail(ctx, email)
}

func (s *Service) DeleteIdentity(ctx context.Context, id string) error {
	return s.repo.DeleteIdentity(ctx, id)
}

func (s *Service) ListIdentities(ctx context.Context) ([]Identity, error) {
	return s.repo.ListIdentities(ctx)
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	identity, err := s.repo.GetIdentityByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}

	cred, err := s.repo.GetCredential(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&cred.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.repo.UpsertCredential(ctx, identity.ID, newHash)
	}

	user, err := s.users.LoadActiveUserByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("load legacy user: %w", err)
	}

	return s.createAuthResponse(ctx, identity, user, userAgent, ipAddress, "", nil)
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	tokenHash := core.HashToken(refreshToken)

	stored, err := s.repo.FindSessionByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	if stored.IsUsed {
		//nolint:errcheck // security revocation continues regardless
		_ = s.repo.RevokeSessionsByFamily(ctx, stored.FamilyID)
		return nil, ErrTokenReuse
	}

	if !stored.IsValid() {
		if stored.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	identity, err := s.repo.GetIdentityByID(ctx, stored.IdentityID)
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}

	user, err := s.users.LoadActiveUserByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("load legacy user: %w", err)
	}

	return s.createAuthResponse(
		ctx,
		identity,
		user,
		userAgent,
		ipAddress,
		stored.FamilyID,
		&stored.ID,
	)
}

// RevokeSessionsForEmail revokes every refresh session of the
// identity matching email. Soft-deleting a legacy user calls this so
// the dead account cannot keep refreshing; a user with no identity on
// the provider side is a no-op.
func (s *Service) RevokeSessionsForEmail(
	ctx context.Context,
	email string,
) error {
	identity, err := s.repo.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get identity: %w", err)
	}

	return s.repo.RevokeAllForIdentity(ctx, identity.ID)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := core.HashToken(refreshToken)

	stored, err := s.repo.FindSessionByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find session: %w", err)
	}

	if err := s.repo.RevokeSessionsByFamily(ctx, stored.FamilyID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	key := "blacklist:" + jti
	ttl := time.Until(expiresAt)

	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (s *Service) IsAccessTokenBlacklisted(
	ctx context.Context,
	jti string,
) (bool, error) {
	key := "blacklist:" + jti

	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}

// ResolveSession verifies a session access token and resolves it to
// the legacy user. Invariant: the token itself never carries a role.
func (s *Service) ResolveSession(
	ctx context.Context,
	token string,
) (*middleware.AuthUser, error) {
	claims, err := s.sessions.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		revoked, err := s.IsAccessTokenBlacklisted(ctx, claims.JTI)
		if err == nil && revoked {
			return nil, fmt.Errorf("resolve session: %w", core.ErrTokenRevoked)
		}
	}

	return s.users.LoadActiveUserByEmail(ctx, claims.Email)
}

func (s *Service) createAuthResponse(
	ctx context.Context,
	identity *Identity,
	user *middleware.AuthUser,
	userAgent, ipAddress, familyID string,
	oldSessionID *string,
) (*AuthResponse, error) {
	accessToken, err := s.sessions.CreateAccessToken(identity.ID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshData, err := s.sessions.CreateRefreshToken(familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	newSessionID := uuid.New().String()

	session := &Session{
		ID:         newSessionID,
		IdentityID: identity.ID,
		TokenHash:  refreshData.Hash,
		FamilyID:   refreshData.FamilyID,
		ExpiresAt:  refreshData.ExpiresAt,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	if oldSessionID != nil {
		//nolint:errcheck // best-effort token chain tracking
		_ = s.repo.MarkSessionUsed(ctx, *oldSessionID, newSessionID)
	}

	ttl := s.sessions.AccessTokenTTL()

	return &AuthResponse{
		User: UserPayload{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role,
			AvatarURL: user.AvatarURL,
		},
		Tokens: TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshData.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(ttl / time.Second),
			ExpiresAt:    time.Now().Add(ttl),
		},
	}, nil
}

var _ middleware.SessionResolver = (*Service)(nil)
