// AngelaMos | 2026
// engine_test.go

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubfines/backend/internal/authprovider"
	"github.com/clubfines/backend/internal/core"
	"github.com/clubfines/backend/internal/identity"
)

type fakeLegacy struct {
	users     map[string]*identity.User
	nextID    int64
	createErr error
	updateErr error
}

func newFakeLegacy() *fakeLegacy {
	return &fakeLegacy{users: make(map[string]*identity.User)}
}

func (f *fakeLegacy) GetByEmail(
	_ context.Context,
	email string,
) (*identity.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeLegacy) Create(_ context.Context, user *identity.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[user.Email]; ok {
		return core.ErrDuplicateKey
	}
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.users[user.Email] = &stored
	return nil
}

func (f *fakeLegacy) Update(_ context.Context, user *identity.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.users[user.Email]; !ok {
		return core.ErrNotFound
	}
	stored := *user
	f.users[user.Email] = &stored
	return nil
}

type fakeProvider struct {
	identities  map[string]*authprovider.Identity
	nextID      int
	signUpErr   error
	deleteErr   error
	deleteCalls []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{identities: make(map[string]*authprovider.Identity)}
}

func (f *fakeProvider) FindByEmail(
	_ context.Context,
	email string,
) (*authprovider.Identity, error) {
	ident, ok := f.identities[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *ident
	return &copied, nil
}

func (f *fakeProvider) SignUp(
	_ context.Context,
	name, email, _ string,
) (*authprovider.Identity, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	if _, ok := f.identities[email]; ok {
		return nil, core.ErrDuplicateKey
	}
	f.nextID++
	ident := &authprovider.Identity{
		ID:    fmt.Sprintf("auth-%d", f.nextID),
		Name:  name,
		Email: email,
	}
	f.identities[email] = ident
	copied := *ident
	return &copied, nil
}

func (f *fakeProvider) DeleteIdentity(_ context.Context, id string) error {
	f.deleteCalls = append(f.deleteCalls, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for email, ident := range f.identities {
		if ident.ID == id {
			delete(f.identities, email)
			return nil
		}
	}
	return core.ErrNotFound
}

func newTestEngine(
	legacy *fakeLegacy,
	provider *fakeProvider,
) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(legacy, provider, logger)
}

func validInput() Input {
	return Input{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "correct-horse",
		Role:     identity.RoleAdmin,
	}
}

func requireCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.Status)
	assert.Equal(t, code, appErr.Code)
}

func TestCreateUserSuccess(t *testing.T) {
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	engine := newTestEngine(legacy, provider)

	res, err := engine.CreateUser(context.Background(), validInput())
	require.NoError(t, err)

	require.NotNil(t, res.User)
	require.NotNil(t, res.Identity)
	assert.Equal(t, "jane@example.com", res.User.Email)
	assert.Equal(t, "jane@example.com", res.Identity.Email)
	assert.Equal(t, res.User.Name, res.Identity.Name)
	assert.NotZero(t, res.User.ID)
	assert.NotEmpty(t, res.Identity.ID)

	assert.Len(t, legacy.users, 1)
	assert.Len(t, provider.identities, 1)
	assert.NotEmpty(t, legacy.users["jane@example.com"].PasswordHash)
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	engine := newTestEngine(legacy, provider)

	in := validInput()
	in.Email = "  Jane@Example.COM "

	res, err := engine.CreateUser(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", res.User.Email)

	// The mixed-case spelling is the same identity.
	_, err = engine.CreateUser(context.Background(), validInput())
	requireCode(t, err, 400, "EMAIL_ALREADY_EXISTS")
}

func TestCreateUserValidation(t *testing.T) {
	engine := newTestEngine(newFakeLegacy(), newFakeProvider())

	tests := []struct {
		name   string
		mutate func(*Input)
		code   string
	}{
		{"missing name", func(in *Input) { in.Name = "  " }, "MISSING_NAME"},
		{"short name", func(in *Input) { in.Name = "J" }, "INVALID_NAME"},
		{"missing email", func(in *Input) { in.Email = "" }, "MISSING_EMAIL"},
		{"bad email", func(in *Input) { in.Email = "not-an-email" }, "INVALID_EMAIL"},
		{"missing password", func(in *Input) { in.Password = "" }, "MISSING_PASSWORD"},
		{"short password", func(in *Input) { in.Password = "short" }, "PASSWORD_TOO_SHORT"},
		{"missing role", func(in *Input) { in.Role = "" }, "MISSING_ROLE"},
		{"unknown role", func(in *Input) { in.Role = "owner" }, "INVALID_ROLE"},
		{"legacy role spelling", func(in *Input) { in.Role = "super_admin" }, "INVALID_ROLE"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := engine.CreateUser(context.Background(), in)
			requireCode(t, err, 400, tc.code)
		})
	}
}

func TestCreateUserDuplicatePreCheck(t *testing.T) {
	t.Run("legacy store occupied", func(t *testing.T) {
		legacy := newFakeLegacy()
		provider := newFakeProvider()
		legacy.users["jane@example.com"] = &identity.User{
			ID:    7,
			Email: "jane@example.com",
		}
		engine := newTestEngine(legacy, provider)

		_, err := engine.CreateUser(context.Background(), validInput())
		requireCode(t, err, 400, "EMAIL_ALREADY_EXISTS")
		assert.Empty(t, provider.identities, "no partial mutation")
	})

	t.Run("provider occupied", func(t *testing.T) {
		legacy := newFakeLegacy()
		provider := newFakeProvider()
		provider.identities["jane@example.com"] = &authprovider.Identity{
			ID:    "auth-7",
			Email: "jane@example.com",
		}
		engine := newTestEngine(legacy, provider)

		_, err := engine.CreateUser(context.Background(), validInput())
		requireCode(t, err, 400, "EMAIL_ALREADY_EXISTS")
		assert.Empty(t, legacy.users, "no partial mutation")
	})
}

func TestCreateUserRaceSurfacesAsDuplicate(t *testing.T) {
	// The pre-check passes but a concurrent writer wins the legacy
	// insert. The engine must compensate and still report a conflict.
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	legacy.createErr = core.ErrDuplicateKey
	engine := newTestEngine(legacy, provider)

	_, err := engine.CreateUser(context.Background(), validInput())
	requireCode(t, err, 400, "EMAIL_ALREADY_EXISTS")
	assert.Len(t, provider.deleteCalls, 1)
	assert.Empty(t, provider.identities)
}

func TestCreateUserCompensatesOnLegacyFailure(t *testing.T) {
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	legacy.createErr = errors.New("disk full")
	engine := newTestEngine(legacy, provider)

	_, err := engine.CreateUser(context.Background(), validInput())
	requireCode(t, err, 500, "USER_CREATION_FAILED")

	require.Len(t, provider.deleteCalls, 1)
	assert.Empty(t, provider.identities, "orphan identity rolled back")
	assert.Empty(t, legacy.users)
}

func TestCreateUserCompensationFailureLeavesOrphan(t *testing.T) {
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	legacy.createErr = errors.New("disk full")
	provider.deleteErr = errors.New("provider unavailable")
	engine := newTestEngine(legacy, provider)

	_, err := engine.CreateUser(context.Background(), validInput())

	// The original error is still what the caller sees.
	requireCode(t, err, 500, "USER_CREATION_FAILED")
	require.Len(t, provider.deleteCalls, 1)

	// The orphan stays behind for the consistency report.
	assert.Len(t, provider.identities, 1)
	assert.Empty(t, legacy.users)
}

func TestCreateUserProviderFailure(t *testing.T) {
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	provider.signUpErr = errors.New("provider unavailable")
	engine := newTestEngine(legacy, provider)

	_, err := engine.CreateUser(context.Background(), validInput())
	requireCode(t, err, 500, "AUTH_SIGNUP_FAILED")
	assert.Empty(t, legacy.users)
	assert.Empty(t, provider.deleteCalls, "nothing to compensate")
}

func TestSyncConflictIs409(t *testing.T) {
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	legacy.users["jane@example.com"] = &identity.User{
		ID:    1,
		Email: "jane@example.com",
	}
	engine := newTestEngine(legacy, provider)

	_, err := engine.Sync(context.Background(), validInput())
	requireCode(t, err, 409, "EMAIL_CONFLICT")
}

func TestSyncFailureCodesIdentifyStore(t *testing.T) {
	t.Run("provider side", func(t *testing.T) {
		legacy := newFakeLegacy()
		provider := newFakeProvider()
		provider.signUpErr = errors.New("boom")
		engine := newTestEngine(legacy, provider)

		_, err := engine.Sync(context.Background(), validInput())
		requireCode(t, err, 500, "AUTH_CREATION_FAILED")
	})

	t.Run("legacy side", func(t *testing.T) {
		legacy := newFakeLegacy()
		provider := newFakeProvider()
		legacy.createErr = errors.New("boom")
		engine := newTestEngine(legacy, provider)

		_, err := engine.Sync(context.Background(), validInput())
		requireCode(t, err, 500, "LEGACY_USER_CREATION_FAILED")
		assert.Len(t, provider.deleteCalls, 1)
	})
}

func TestSyncSuccess(t *testing.T) {
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	engine := newTestEngine(legacy, provider)

	res, err := engine.Sync(context.Background(), validInput())
	require.NoError(t, err)
	assert.Len(t, legacy.users, 1)
	assert.Len(t, provider.identities, 1)
	assert.Equal(t, res.User.Email, res.Identity.Email)
}

func TestUpsertOrRecreateFreshAccount(t *testing.T) {
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	engine := newTestEngine(legacy, provider)

	in := validInput()
	in.Role = identity.RoleSuperadmin

	res, err := engine.UpsertOrRecreate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleSuperadmin, res.User.Role)
	assert.Len(t, legacy.users, 1)
	assert.Len(t, provider.identities, 1)
}

func TestUpsertOrRecreateReplacesIdentity(t *testing.T) {
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	engine := newTestEngine(legacy, provider)

	in := validInput()
	in.Role = identity.RoleSuperadmin

	first, err := engine.UpsertOrRecreate(context.Background(), in)
	require.NoError(t, err)
	firstHash := legacy.users[in.Email].PasswordHash

	in.Password = "a-brand-new-password"
	second, err := engine.UpsertOrRecreate(context.Background(), in)
	require.NoError(t, err)

	// Identity is recreated, legacy row updated in place.
	assert.NotEqual(t, first.Identity.ID, second.Identity.ID)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.NotEqual(t, firstHash, legacy.users[in.Email].PasswordHash)
	assert.Len(t, provider.identities, 1)
	assert.Len(t, legacy.users, 1)
	assert.Contains(t, provider.deleteCalls, first.Identity.ID)
}

func TestUpsertOrRecreateUpdatesNameAndRole(t *testing.T) {
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	engine := newTestEngine(legacy, provider)

	in := validInput()
	_, err := engine.UpsertOrRecreate(context.Background(), in)
	require.NoError(t, err)

	in.Name = "Jane A. Doe"
	in.Role = identity.RoleSuperadmin
	res, err := engine.UpsertOrRecreate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "Jane A. Doe", res.User.Name)
	assert.Equal(t, identity.RoleSuperadmin, res.User.Role)
	assert.Equal(t, "Jane A. Doe", legacy.users[in.Email].Name)
}

func TestUpsertOrRecreateCompensatesOnLegacyFailure(t *testing.T) {
	legacy := newFakeLegacy()
	provider := newFakeProvider()
	legacy.createErr = errors.New("disk full")
	engine := newTestEngine(legacy, provider)

	_, err := engine.UpsertOrRecreate(context.Background(), validInput())
	requireCode(t, err, 500, "USER_CREATION_FAILED")
	assert.Empty(t, provider.identities)
}
