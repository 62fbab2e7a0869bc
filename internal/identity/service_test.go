// AngelaMos | 2026
// service_test.go

package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubfines/backend/internal/core"
)

type fakeRepo struct {
	Repository
	users       map[int64]*User
	updatedRole string
	softDeleted []int64
}

func (f *fakeRepo) SoftDelete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.users, id)
	f.softDeleted = append(f.softDeleted, id)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeRepo) UpdateRole(
	_ context.Context,
	id int64,
	role string,
) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	f.updatedRole = role
	u.Role = role
	copied := *u
	return &copied, nil
}

func newServiceWithUsers(users ...*User) (*Service, *fakeRepo) {
	repo := &fakeRepo{users: make(map[int64]*User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return NewService(repo), repo
}

func TestUpdateUserRoleSelfLockout(t *testing.T) {
	svc, repo := newServiceWithUsers(
		&User{ID: 1, Name: "Root", Email: "root@example.com", Role: RoleSuperadmin},
	)

	t.Run("self demotion rejected", func(t *testing.T) {
		_, err := svc.UpdateUserRole(context.Background(), 1, 1, RoleAdmin)
		require.ErrorIs(t, err, ErrCannotChangeOwnRole)
		assert.Empty(t, repo.updatedRole, "no write on rejection")
	})

	t.Run("self same-value update is a no-op success", func(t *testing.T) {
		user, err := svc.UpdateUserRole(context.Background(), 1, 1, RoleSuperadmin)
		require.NoError(t, err)
		assert.Equal(t, RoleSuperadmin, user.Role)
	})
}

func TestUpdateUserRole(t *testing.T) {
	svc, repo := newServiceWithUsers(
		&User{ID: 1, Name: "Root", Email: "root@example.com", Role: RoleSuperadmin},
		&User{ID: 2, Name: "Sam", Email: "sam@example.com", Role: RoleViewer},
	)

	t.Run("promote another user", func(t *testing.T) {
		user, err := svc.UpdateUserRole(context.Background(), 1, 2, RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, user.Role)
		assert.Equal(t, RoleAdmin, repo.updatedRole)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := svc.UpdateUserRole(context.Background(), 1, 2, "owner")
		require.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("legacy role spelling rejected", func(t *testing.T) {
		_, err := svc.UpdateUserRole(context.Background(), 1, 2, "super_admin")
		require.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := svc.UpdateUserRole(context.Background(), 1, 99, RoleAdmin)
		require.ErrorIs(t, err, core.ErrNotFound)
	})
}

type fakeRevoker struct {
	emails []string
	err    error
}

func (f *fakeRevoker) RevokeSessionsForEmail(
	_ context.Context,
	email string,
) error {
	f.emails = append(f.emails, email)
	return f.err
}

func TestDeleteUser(t *testing.T) {
	t.Run("revokes provider sessions by email", func(t *testing.T) {
		svc, repo := newServiceWithUsers(
			&User{ID: 2, Name: "Sam", Email: "sam@example.com", Role: RoleViewer},
		)
		revoker := &fakeRevoker{}
		svc.SetSessionRevoker(revoker)

		require.NoError(t, svc.DeleteUser(context.Background(), 2))
		assert.Equal(t, []int64{2}, repo.softDeleted)
		assert.Equal(t, []string{"sam@example.com"}, revoker.emails)
	})

	t.Run("revocation failure does not undo the delete", func(t *testing.T) {
		svc, repo := newServiceWithUsers(
			&User{ID: 2, Name: "Sam", Email: "sam@example.com", Role: RoleViewer},
		)
		svc.SetSessionRevoker(&fakeRevoker{err: core.ErrNotFound})

		require.NoError(t, svc.DeleteUser(context.Background(), 2))
		assert.Equal(t, []int64{2}, repo.softDeleted)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newServiceWithUsers()
		err := svc.DeleteUser(context.Background(), 99)
		require.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
	assert.Equal(t, "user@example.com", NormalizeEmail("user@example.com"))
}
