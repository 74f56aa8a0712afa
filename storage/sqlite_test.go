package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSQLiteKV(t *testing.T) (*SQLiteKV, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv`).WillReturnResult(sqlmock.NewResult(0, 0))
	kv, err := NewSQLiteKV(db)
	require.NoError(t, err)
	return kv, mock
}

func TestSQLiteUpdateRollsBackOnAbort(t *testing.T) {
	kv, mock := newMockSQLiteKV(t)
	abort := errors.New("duplicate")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT value FROM kv WHERE key = \?`).
		WithArgs("ledger").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte("old")))
	mock.ExpectRollback()

	err := kv.Update(context.Background(), "ledger", func(current []byte) ([]byte, error) {
		assert.Equal(t, []byte("old"), current)
		return nil, abort
	})
	assert.ErrorIs(t, err, abort)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteUpdateCommitsUpsert(t *testing.T) {
	kv, mock := newMockSQLiteKV(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT value FROM kv WHERE key = \?`).
		WithArgs("ledger").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectExec(`INSERT INTO kv`).
		WithArgs("ledger", []byte("new"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := kv.Update(context.Background(), "ledger", func(current []byte) ([]byte, error) {
		assert.Nil(t, current)
		return []byte("new"), nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteGetNotFound(t *testing.T) {
	kv, mock := newMockSQLiteKV(t)

	mock.ExpectQuery(`SELECT value FROM kv WHERE key = \?`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := kv.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
