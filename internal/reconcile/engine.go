// AngelaMos | 2026
// engine.go

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/clubfines/backend/internal/authprovider"
	"github.com/clubfines/backend/internal/core"
	"github.com/clubfines/backend/internal/identity"
)

// LegacyStore is the slice of the legacy user repository the engine
// needs. identity.Repository satisfies it.
type LegacyStore interface {
	GetByEmail(ctx context.Context, email string) (*identity.User, error)
	Create(ctx context.Context, user *identity.User) error
	Update(ctx context.Context, user *identity.User) error
}

// ProviderStore is the slice of the auth provider the engine needs.
// DeleteIdentity is the compensating action for a failed legacy
// insert. authprovider.Service satisfies it.
type ProviderStore interface {
	FindByEmail(
		ctx context.Context,
		email string,
	) (*authprovider.Identity, error)
	SignUp(
		ctx context.Context,
		name, email, password string,
	) (*authprovider.Identity, error)
	DeleteIdentity(ctx context.Context, id string) error
}

// Input is one user-provisioning request. Email and name are
// normalized by Validate before any lookup or storage.
type Input struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Result carries both halves of a freshly reconciled identity pair.
type Result struct {
	Identity *authprovider.Identity
	User     *identity.User
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minNameLen     = 2
	maxNameLen     = 100
	minPasswordLen = 8
)

// Validate normalizes the input in place and rejects anything the
// engine would refuse to store. Field-specific codes match the wire
// contract of the admin endpoints.
func (in *Input) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" {
		return core.ValidationError("MISSING_NAME", "name is required")
	}
	if len(in.Name) < minNameLen || len(in.Name) > maxNameLen {
		return core.ValidationError(
			"INVALID_NAME",
			fmt.Sprintf(
				"name must be between %d and %d characters",
				minNameLen,
				maxNameLen,
			),
		)
	}
	if in.Email == "" {
		return core.ValidationError("MISSING_EMAIL", "email is required")
	}
	if !emailPattern.MatchString(in.Email) {
		return core.ValidationError("INVALID_EMAIL", "email is not valid")
	}
	if in.Password == "" {
		return core.ValidationError("MISSING_PASSWORD", "password is required")
	}
	if len(in.Password) < minPasswordLen {
		return core.ValidationError(
			"PASSWORD_TOO_SHORT",
			fmt.Sprintf(
				"password must be at least %d characters",
				minPasswordLen,
			),
		)
	}
	if in.Role == "" {
		return core.ValidationError("MISSING_ROLE", "role is required")
	}
	if !identity.ValidRole(in.Role) {
		return core.ValidationError(
			"INVALID_ROLE",
			"role must be one of viewer, admin, superadmin",
		)
	}

	return nil
}

// Engine keeps the legacy user table and the auth provider's identity
// table aligned. The two stores share no transaction, so multi-step
// operations run as a saga: create on the provider first, then insert
// the legacy row, and delete the provider identity again if the
// legacy insert fails. Compensation is best effort; when it fails the
// orphan is logged and left for the consistency report to surface.
type Engine struct {
	legacy   LegacyStore
	provider ProviderStore
	logger   *slog.Logger
}

func NewEngine(
	legacy LegacyStore,
	provider ProviderStore,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		legacy:   legacy,
		provider: provider,
		logger:   logger,
	}
}

// CreateUser provisions a new identity pair with strict create-only
// semantics: any existing active record with the same normalized
// email, on either store, fails the whole operation before anything
// is written.
func (e *Engine) CreateUser(ctx context.Context, in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := e.checkBothStoresFree(ctx, in.Email, emailExistsCreate); err != nil {
		return nil, err
	}

	return e.provision(ctx, in, createCodes)
}

// Sync has CreateUser's contract with the sync endpoint's failure
// codes: conflicts are 409 EMAIL_CONFLICT and the failing store is
// identified in the code.
func (e *Engine) Sync(ctx context.Context, in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := e.checkBothStoresFree(ctx, in.Email, emailExistsSync); err != nil {
		return nil, err
	}

	return e.provision(ctx, in, syncCodes)
}

// UpsertOrRecreate re-provisions a known account: an existing
// provider identity for the email is deleted and recreated with the
// new password, and the legacy row is updated in place when present.
// Idempotent in effect, destructive in means.
func (e *Engine) UpsertOrRecreate(
	ctx context.Context,
	in Input,
) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := e.provider.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, core.InternalError(
			"AUTH_SIGNUP_FAILED",
			"failed to check existing auth identity",
		)
	}

	if existing != nil {
		if err := e.provider.DeleteIdentity(ctx, existing.ID); err != nil {
			e.logger.Error("failed to remove existing auth identity",
				"email", in.Email,
				"identity_id", existing.ID,
				"error", err,
			)
			return nil, core.InternalError(
				"AUTH_SIGNUP_FAILED",
				"failed to replace existing auth identity",
			)
		}
	}

	ident, err := e.provider.SignUp(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		return nil, core.InternalError(
			"AUTH_SIGNUP_FAILED",
			"failed to create auth identity",
		)
	}

	passwordHash, err := core.HashPassword(in.Password)
	if err != nil {
		e.compensate(ctx, in.Email, ident.ID)
		return nil, core.InternalError(
			"USER_CREATION_FAILED",
			"failed to create user",
		)
	}

	legacyUser, err := e.legacy.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		legacyUser.Name = in.Name
		legacyUser.Role = in.Role
		legacyUser.PasswordHash = passwordHash
		if updateErr := e.legacy.Update(ctx, legacyUser); updateErr != nil {
			e.compensate(ctx, in.Email, ident.ID)
			return nil, core.InternalError(
				"USER_CREATION_FAILED",
				"failed to update user",
			)
		}
	case errors.Is(err, core.ErrNotFound):
		legacyUser = &identity.User{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: passwordHash,
			Role:         in.Role,
		}
		if createErr := e.legacy.Create(ctx, legacyUser); createErr != nil {
			e.compensate(ctx, in.Email, ident.ID)
			return nil, core.InternalError(
				"USER_CREATION_FAILED",
				"failed to create user",
			)
		}
	default:
		e.compensate(ctx, in.Email, ident.ID)
		return nil, core.InternalError(
			"USER_CREATION_FAILED",
			"failed to look up user",
		)
	}

	return &Result{Identity: ident, User: legacyUser}, nil
}

// failureCodes parameterizes the near-duplicate create and sync
// endpoints, which differ only in their wire codes.
type failureCodes struct {
	authFailed   string
	legacyFailed string
	duplicate    func() *core.AppError
}

var createCodes = failureCodes{
	authFailed:   "AUTH_SIGNUP_FAILED",
	legacyFailed: "USER_CREATION_FAILED",
	duplicate:    emailExistsCreate,
}

var syncCodes = failureCodes{
	authFailed:   "AUTH_CREATION_FAILED",
	legacyFailed: "LEGACY_USER_CREATION_FAILED",
	duplicate:    emailExistsSync,
}

func emailExistsCreate() *core.AppError {
	return core.ValidationError(
		"EMAIL_ALREADY_EXISTS",
		"a user with this email already exists",
	)
}

func emailExistsSync() *core.AppError {
	return core.ConflictError(
		"EMAIL_CONFLICT",
		"a user with this email already exists",
	)
}

func (e *Engine) checkBothStoresFree(
	ctx context.Context,
	email string,
	conflict func() *core.AppError,
) error {
	if _, err := e.legacy.GetByEmail(ctx, email); err == nil {
		return conflict()
	} else if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("check legacy store: %w", err)
	}

	if _, err := e.provider.FindByEmail(ctx, email); err == nil {
		return conflict()
	} else if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("check auth provider: %w", err)
	}

	return nil
}

// provision runs the saga: provider identity first, legacy row
// second, compensating delete on legacy failure. A duplicate-key
// error from either store is reported as the endpoint's conflict code
// because the pre-check cannot exclude a concurrent writer.
func (e *Engine) provision(
	ctx context.Context,
	in Input,
	codes failureCodes,
) (*Result, error) {
	ident, err := e.provider.SignUp(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, codes.duplicate()
		}
		return nil, core.InternalError(
			codes.authFailed,
			"failed to create auth identity",
		)
	}

	passwordHash, err := core.HashPassword(in.Password)
	if err != nil {
		e.compensate(ctx, in.Email, ident.ID)
		return nil, core.InternalError(
			codes.legacyFailed,
			"failed to create user",
		)
	}

	legacyUser := &identity.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Role:         in.Role,
	}

	if err := e.legacy.Create(ctx, legacyUser); err != nil {
		e.compensate(ctx, in.Email, ident.ID)
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, codes.duplicate()
		}
		return nil, core.InternalError(
			codes.legacyFailed,
			"failed to create user",
		)
	}

	return &Result{Identity: ident, User: legacyUser}, nil
}

// compensate deletes the provider identity created earlier in the
// saga. Failure is logged, never returned: the caller's original
// error stands, and the orphan shows up in the consistency report.
func (e *Engine) compensate(
	ctx context.Context,
	email, identityID string,
) {
	if err := e.provider.DeleteIdentity(ctx, identityID); err != nil {
		e.logger.Error("compensating delete of auth identity failed, orphan left behind",
			"email", email,
			"identity_id", identityID,
			"error", err,
		)
		return
	}

	e.logger.Warn("rolled back auth identity after failed user creation",
		"email", email,
		"identity_id", identityID,
	)
}
