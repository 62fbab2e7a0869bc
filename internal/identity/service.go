// AngelaMos | 2026
// service.go

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clubfines/backend/internal/core"
	"github.com/clubfines/backend/internal/middleware"
)

// ErrCannotChangeOwnRole guards against superadmin self-lockout.
var ErrCannotChangeOwnRole = errors.New("cannot change own role")

// SessionRevoker cuts the auth provider's refresh sessions when a
// legacy user goes away. authprovider.Service satisfies it.
type SessionRevoker interface {
	RevokeSessionsForEmail(ctx context.Context, email string) error
}

type Service struct {
	repo    Repository
	revoker SessionRevoker
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetSessionRevoker wires the auth provider in after construction;
// the provider itself needs this service as its user directory, so
// one of the two references binds late.
func (s *Service) SetSessionRevoker(revoker SessionRevoker) {
	s.revoker = revoker
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id int64,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}

	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUserRole changes a user's role. A superadmin may not demote
// themselves: the same-value update is permitted as a no-op, anything
// else on their own record is rejected.
func (s *Service) UpdateUserRole(
	ctx context.Context,
	callerID, targetID int64,
	role string,
) (*User, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	if callerID == targetID && role != RoleSuperadmin {
		return nil, fmt.Errorf("update role: %w", ErrCannotChangeOwnRole)
	}

	return s.repo.UpdateRole(ctx, targetID, role)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

// DeleteUser soft-deletes the user and revokes their provider-side
// refresh sessions, so neither a stale legacy bearer token nor a
// refresh token outlives the account. Their unexpired access tokens
// die at the directory lookup on the next request.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	if s.revoker != nil {
		if err := s.revoker.RevokeSessionsForEmail(ctx, user.Email); err != nil {
			slog.Warn("revoking sessions of deleted user failed",
				"user_id", id,
				"error", err,
			)
		}
	}

	return nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

// LoadActiveUser resolves a legacy bearer token's user id. Soft-deleted
// rows are invisible here, so stale tokens fail with not-found.
func (s *Service) LoadActiveUser(
	ctx context.Context,
	id int64,
) (*middleware.AuthUser, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toAuthUser(user), nil
}

// LoadActiveUserByEmail backs the session scheme: the session carries
// no role, so the legacy record is the authorization source.
func (s *Service) LoadActiveUserByEmail(
	ctx context.Context,
	email string,
) (*middleware.AuthUser, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return toAuthUser(user), nil
}

func toAuthUser(u *User) *middleware.AuthUser {
	return &middleware.AuthUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}

var _ middleware.LegacyUserLoader = (*Service)(nil)
