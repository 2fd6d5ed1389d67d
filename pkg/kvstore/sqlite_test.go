package kvstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSQLite(t *testing.T) (*SQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteWithDB(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSQLiteLoad(t *testing.T) {
	store, mock := newMockSQLite(t)

	mock.ExpectQuery(`SELECT blob FROM blobs WHERE key = \?`).
		WithArgs(KeyStudents).
		WillReturnRows(sqlmock.NewRows([]string{"blob"}).AddRow([]byte(`[]`)))

	blob, err := store.Load(context.Background(), KeyStudents)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), blob)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteLoadMissingKey(t *testing.T) {
	store, mock := newMockSQLite(t)

	mock.ExpectQuery(`SELECT blob FROM blobs WHERE key = \?`).
		WithArgs(KeyLedger).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Load(context.Background(), KeyLedger)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSaveUpserts(t *testing.T) {
	store, mock := newMockSQLite(t)

	mock.ExpectExec(`INSERT INTO blobs .+ ON CONFLICT\(key\) DO UPDATE`).
		WithArgs(KeyUsers, []byte(`[]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), KeyUsers, []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRemove(t *testing.T) {
	store, mock := newMockSQLite(t)

	mock.ExpectExec(`DELETE FROM blobs WHERE key = \?`).
		WithArgs(KeyRecentLogins).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Remove(context.Background(), KeyRecentLogins))
	assert.NoError(t, mock.ExpectationsWereMet())
}
