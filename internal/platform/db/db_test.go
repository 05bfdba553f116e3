package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BIHIN-backend/internal/platform/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host: "db", Port: 3306, Username: "bihin", Password: "pw", DBName: "bihin",
	})
	assert.True(t, strings.HasPrefix(dsn, "bihin:pw@tcp(db:3306)/bihin?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestRunInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE inventory_items").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = RunInTx(ctx, conn, nil, func(ctx context.Context, tx DBTX) error {
			_, err := tx.ExecContext(ctx, "UPDATE inventory_items SET quantity = 1")
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		want := errors.New("validation failed")
		err = RunInTx(ctx, conn, nil, func(ctx context.Context, tx DBTX) error { return want })
		assert.ErrorIs(t, err, want)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on panic", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = RunInTx(ctx, conn, nil, func(ctx context.Context, tx DBTX) error { panic("boom") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	stmts := Statements()
	require.Len(t, stmts, 4)
	for _, table := range []string{"accounts", "inventory_items", "rentals", "return_logs"} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, Migrate(context.Background(), conn))
	assert.NoError(t, mock.ExpectationsWereMet())
}
