package adapters

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrowse/core"
	"dbrowse/core/builders"
)

func setupPostgresTestDriver(t *testing.T) (*postgresDriver, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	driver := &postgresDriver{
		c: builders.NewClient(db, builders.WithIdentifierQuoter(quoteQualified)),
	}

	return driver, mock
}

func Test_postgresDriver_QueryPage(t *testing.T) {
	driver, mock := setupPostgresTestDriver(t)

	mock.ExpectQuery(`SELECT * FROM "public"."users" ORDER BY "id" LIMIT 100 OFFSET 200`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(200, "ana").
			AddRow(201, "bob"))

	rs, err := driver.QueryPage(context.Background(), &core.PageRequest{
		Table:   "public.users",
		Offset:  200,
		Limit:   100,
		OrderBy: "id",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, core.Header{"id", "name"}, rs.Header)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_postgresDriver_CountRows(t *testing.T) {
	t.Run("approximate estimate available", func(t *testing.T) {
		driver, mock := setupPostgresTestDriver(t)

		mock.ExpectQuery("SELECT reltuples::bigint FROM pg_class WHERE oid = 'users'::regclass").
			WillReturnRows(sqlmock.NewRows([]string{"reltuples"}).AddRow(12345))

		count, isApprox, err := driver.CountRows(context.Background(), "users", true)
		require.NoError(t, err)
		assert.Equal(t, 12345, count)
		assert.True(t, isApprox)
	})

	t.Run("estimate missing falls back to exact", func(t *testing.T) {
		driver, mock := setupPostgresTestDriver(t)

		mock.ExpectQuery("SELECT reltuples::bigint FROM pg_class WHERE oid = 'users'::regclass").
			WillReturnRows(sqlmock.NewRows([]string{"reltuples"}).AddRow(-1))
		mock.ExpectQuery(`SELECT count(*) FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(77))

		count, isApprox, err := driver.CountRows(context.Background(), "users", true)
		require.NoError(t, err)
		assert.Equal(t, 77, count)
		assert.False(t, isApprox)
	})

	t.Run("exact requested", func(t *testing.T) {
		driver, mock := setupPostgresTestDriver(t)

		mock.ExpectQuery(`SELECT count(*) FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

		count, isApprox, err := driver.CountRows(context.Background(), "users", false)
		require.NoError(t, err)
		assert.Equal(t, 42, count)
		assert.False(t, isApprox)
	})
}
