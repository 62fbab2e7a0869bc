// AngelaMos | 2026
// repository_test.go

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubfines/backend/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Jane", "jane@example.com", "hash", RoleViewer, nil).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(1), now, now),
		)

	user := &User{
		Name:         "Jane",
		Email:        "jane@example.com",
		PasswordHash: "hash",
		Role:         RoleViewer,
	}

	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(1), user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &User{
		Name:         "Jane",
		Email:        "jane@example.com",
		PasswordHash: "hash",
		Role:         RoleViewer,
	})
	require.ErrorIs(t, err, core.ErrDuplicateKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDExcludesSoftDeleted(t *testing.T) {
	repo, mock := newMockRepo(t)

	// The active-rows filter is part of the query itself.
	mock.ExpectQuery(`FROM users\s+WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 42)
	require.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "role", "avatar_url",
		"created_at", "updated_at", "deleted_at",
	}).AddRow(
		int64(1), "Jane", "jane@example.com", "hash", RoleAdmin, nil,
		now, now, nil,
	)

	mock.ExpectQuery(`FROM users\s+WHERE email = \$1 AND deleted_at IS NULL`).
		WithArgs("jane@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, user.Role)
	assert.Nil(t, user.DeletedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositorySoftDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	t.Run("marks active row", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users\s+SET deleted_at = NOW\(\)`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SoftDelete(context.Background(), 1))
	})

	t.Run("already deleted row is not found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users\s+SET deleted_at = NOW\(\)`).
			WithArgs(int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SoftDelete(context.Background(), 2)
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
