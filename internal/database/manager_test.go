package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"devconnector/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockManager(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.DatabaseConfig{SlowQueryThreshold: time.Second}
	return NewManagerFromDB(db, cfg, zap.NewNop()), mock
}

func TestManagerRecordsMetrics(t *testing.T) {
	manager, mock := newMockManager(t)

	mock.ExpectExec("DELETE FROM posts").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM posts").WillReturnError(errors.New("boom"))

	_, err := manager.ExecContext(context.Background(), "DELETE FROM posts WHERE id = $1", "x")
	require.NoError(t, err)

	_, err = manager.ExecContext(context.Background(), "DELETE FROM posts WHERE id = $1", "y")
	require.Error(t, err)

	snapshot := manager.Metrics()
	assert.Equal(t, int64(2), snapshot.QueryCount)
	assert.Equal(t, int64(1), snapshot.ErrorCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		manager, mock := newMockManager(t)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM profiles").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := manager.WithTransaction(context.Background(), func(tx *sql.Tx) error {
			_, err := tx.ExecContext(context.Background(), "DELETE FROM profiles WHERE user_id = $1", "u")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		manager, mock := newMockManager(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		sentinel := errors.New("stop")
		err := manager.WithTransaction(context.Background(), func(tx *sql.Tx) error {
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		manager, mock := newMockManager(t)
		mock.ExpectPing()

		status := manager.Health(context.Background())
		assert.Equal(t, StatusHealthy, status.Status)
		assert.Empty(t, status.Errors)
	})

	t.Run("unhealthy when ping fails", func(t *testing.T) {
		manager, mock := newMockManager(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		status := manager.Health(context.Background())
		assert.Equal(t, StatusUnhealthy, status.Status)
		require.Len(t, status.Errors, 1)
		assert.Contains(t, status.Errors[0], "connection refused")
	})

	t.Run("last result is kept", func(t *testing.T) {
		manager, mock := newMockManager(t)
		assert.Nil(t, manager.LastHealth())

		mock.ExpectPing()
		status := manager.Health(context.Background())

		assert.Same(t, status, manager.LastHealth())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTruncateQuery(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, truncateQuery(short))

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, truncateQuery(string(long)), 203)
}
