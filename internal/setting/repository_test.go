// AngelaMos | 2026
// repository_test.go

package setting

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestUpsertAllCommitsBatch(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO settings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO settings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertAll(context.Background(), map[string]string{
		"currency": "EUR",
		"clubName": "FC Example",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAllRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO settings`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.UpsertAll(context.Background(), map[string]string{
		"currency": "EUR",
		"clubName": "FC Example",
	})
	assert.Error(t, err)

	// No commit expected: a mid-batch error leaves nothing applied.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAll(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT key, value, updated_at FROM settings`).
		WillReturnRows(
			sqlmock.NewRows([]string{"key", "value"}).
				AddRow("clubName", "FC Example").
				AddRow("currency", "EUR"),
		)

	settings, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, "clubName", settings[0].Key)
	require.NoError(t, mock.ExpectationsWereMet())
}
