// AngelaMos | 2026
// repository.go

package authprovider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clubfines/backend/internal/core"
)

type Repository interface {
	CreateIdentity(ctx context.Context, identity *Identity) error
	GetIdentityByID(ctx context.Context, id string) (*Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*Identity, error)
	DeleteIdentity(ctx context.Context, id string) error
	ListIdentities(ctx context.Context) ([]Identity, error)

	UpsertCredential(ctx context.Context, identityID, passwordHash string) error
	GetCredential(ctx context.Context, identityID string) (*Credential, error)

	CreateSession(ctx context.Context, session *Session) error
	FindSessionByHash(ctx context.Context, tokenHash string) (*Session, error)
	MarkSessionUsed(ctx context.Context, id, replacedByID string) error
	RevokeSessionsByFamily(ctx context.Context, familyID string) error
	RevokeAllForIdentity(ctx context.Context, identityID string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CreateIdentity(
	ctx context.Context,
	identity *Identity,
) error {
	query := `
		INSERT INTO auth_identities (id, name, email, email_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, identity, query,
		identity.ID,
		identity.Name,
		identity.Email,
		identity.EmailVerified,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create identity: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create identity: %w", err)
	}

	return nil
}

func (r *repository) GetIdentityByID(
	ctx context.Context,
	id string,
) (*Identity, error) {
	query := `
		SELECT id, name, email, email_verified, created_at, updated_at
		FROM auth_identities
		WHERE id = $1`

	var identity Identity
	err := r.db.GetContext(ctx, &identity, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get identity: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}

	return &identity, nil
}

func (r *repository) GetIdentityByEmail(
	ctx context.Context,
	email string,
) (*Identity, error) {
	query := `
		SELECT id, name, email, email_verified, created_at, updated_at
		FROM auth_identities
		WHERE LOWER(email) = LOWER($1)`

	var identity Identity
	err := r.db.GetContext(ctx, &identity, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get identity by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get identity by email: %w", err)
	}

	return &identity, nil
}

// DeleteIdentity removes the row outright; credentials and sessions
// go with it via ON DELETE CASCADE. This is the compensating action
// of the reconciliation saga.
func (r *repository) DeleteIdentity(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM auth_identities WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete identity: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListIdentities(ctx context.Context) ([]Identity, error) {
	query := `
		SELECT id, name, email, email_verified, created_at, updated_at
		FROM auth_identities
		ORDER BY email`

	var identities []Identity
	if err := r.db.SelectContext(ctx, &identities, query); err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}

	return identities, nil
}

func (r *repository) UpsertCredential(
	ctx context.Context,
	identityID, passwordHash string,
) error {
	query := `
		INSERT INTO auth_credentials (identity_id, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (identity_id)
		DO UPDATE SET password_hash = $2, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, identityID, passwordHash); err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}

	return nil
}

func (r *repository) GetCredential(
	ctx context.Context,
	identityID string,
) (*Credential, error) {
	query := `
		SELECT identity_id, password_hash, created_at, updated_at
		FROM auth_credentials
		WHERE identity_id = $1`

	var cred Credential
	err := r.db.GetContext(ctx, &cred, query, identityID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get credential: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}

	return &cred, nil
}

func (r *repository) CreateSession(
	ctx context.Context,
	session *Session,
) error {
	query := `
		INSERT INTO auth_sessions (
			id, identity_id, token_hash, family_id, expires_at,
			user_agent, ip_address
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &session.CreatedAt, query,
		session.ID,
		session.IdentityID,
		session.TokenHash,
		session.FamilyID,
		session.ExpiresAt,
		session.UserAgent,
		session.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *repository) FindSessionByHash(
	ctx context.Context,
	tokenHash string,
) (*Session, error) {
	query := `
		SELECT
			id, identity_id, token_hash, family_id, expires_at, created_at,
			is_used, used_at, revoked_at, replaced_by_id, user_agent, ip_address
		FROM auth_sessions
		WHERE token_hash = $1`

	var session Session
	err := r.db.GetContext(ctx, &session, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	return &session, nil
}

func (r *repository) MarkSessionUsed(
	ctx context.Context,
	id, replacedByID string,
) error {
	query := `
		UPDATE auth_sessions
		SET is_used = true, used_at = NOW(), replaced_by_id = $2
		WHERE id = $1 AND is_used = false`

	result, err := r.db.ExecContext(ctx, query, id, replacedByID)
	if err != nil {
		return fmt.Errorf("mark session used: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark session used: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark session used: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) RevokeSessionsByFamily(
	ctx context.Context,
	familyID string,
) error {
	query := `
		UPDATE auth_sessions
		SET revoked_at = NOW()
		WHERE family_id = $1 AND revoked_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, familyID); err != nil {
		return fmt.Errorf("revoke session family: %w", err)
	}

	return nil
}

func (r *repository) RevokeAllForIdentity(
	ctx context.Context,
	identityID string,
) error {
	query := `
		UPDATE auth_sessions
		SET revoked_at = NOW()
		WHERE identity_id = $1 AND revoked_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, identityID); err != nil {
		return fmt.Errorf("revoke identity sessions: %w", err)
	}

	return nil
}

func (r *repository) DeleteExpiredSessions(
	ctx context.Context,
) (int64, error) {
	query := `
		DELETE FROM auth_sessions
		WHERE expires_at < NOW() - INTERVAL '24 hours'`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	return rows, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
