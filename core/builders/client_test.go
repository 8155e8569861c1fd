package builders

import (
	"context"
	"database/sql"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrowse/core"
)

func setupTestClient(t *testing.T, opts ...ClientOption) (*Client, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewClient(db, opts...), mock
}

func TestClient_PageSQL(t *testing.T) {
	tests := []struct {
		name    string
		req     *core.PageRequest
		opts    []ClientOption
		want    string
		wantErr bool
	}{
		{
			name: "plain page",
			req:  &core.PageRequest{Table: "users", Offset: 1000, Limit: 500},
			want: `SELECT * FROM "users" LIMIT 500 OFFSET 1000`,
		},
		{
			name: "filtered and ordered",
			req: &core.PageRequest{
				Table:      "users",
				Offset:     0,
				Limit:      10,
				Where:      "age >= 30",
				OrderBy:    "name",
				Descending: true,
			},
			want: `SELECT * FROM "users" WHERE age >= 30 ORDER BY "name" DESC LIMIT 10 OFFSET 0`,
		},
		{
			name: "quote escaping",
			req:  &core.PageRequest{Table: `we"ird`, Offset: 0, Limit: 1},
			want: `SELECT * FROM "we""ird" LIMIT 1 OFFSET 0`,
		},
		{
			name: "custom quoter",
			req:  &core.PageRequest{Table: "users", Offset: 0, Limit: 1},
			opts: []ClientOption{WithIdentifierQuoter(func(s string) string { return "`" + s + "`" })},
			want: "SELECT * FROM `users` LIMIT 1 OFFSET 0",
		},
		{
			name:    "negative offset",
			req:     &core.PageRequest{Table: "users", Offset: -1, Limit: 10},
			wantErr: true,
		},
		{
			name:    "offset overflow",
			req:     &core.PageRequest{Table: "users", Offset: math.MaxInt, Limit: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := setupTestClient(t, tt.opts...)

			got, err := client.PageSQL(tt.req)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrPageBounds)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_QueryPage(t *testing.T) {
	client, mock := setupTestClient(t)

	mock.ExpectQuery(`SELECT * FROM "users" LIMIT 2 OFFSET 4`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(4, "ana").
			AddRow(5, "bob"))

	rs, err := client.QueryPage(context.Background(), &core.PageRequest{Table: "users", Offset: 4, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, core.Header{"id", "name"}, rs.Header)
	assert.Equal(t, 2, rs.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_QueryError(t *testing.T) {
	client, mock := setupTestClient(t)

	mock.ExpectQuery("SELECT broken").WillReturnError(sql.ErrConnDone)

	rs, err := client.Query(context.Background(), "SELECT broken")
	assert.Error(t, err)
	assert.Nil(t, rs)
}

func TestClient_QueryInt(t *testing.T) {
	client, mock := setupTestClient(t)

	mock.ExpectQuery(`SELECT count(*) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := client.QueryInt(context.Background(), `SELECT count(*) FROM "users"`)
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestClient_Exec(t *testing.T) {
	client, mock := setupTestClient(t)

	mock.ExpectExec("DELETE FROM users").
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := client.Exec(context.Background(), "DELETE FROM users")
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
}

func TestColumnsFromRowSet(t *testing.T) {
	rs := &core.RowSet{
		Header: core.Header{"name", "type"},
		Rows: []core.Row{
			{"id", "integer"},
			{"name", "text"},
		},
	}

	columns, err := ColumnsFromRowSet(rs)
	require.NoError(t, err)
	assert.Equal(t, []*core.Column{
		{Name: "id", Type: "integer"},
		{Name: "name", Type: "text"},
	}, columns)

	_, err = ColumnsFromRowSet(&core.RowSet{Rows: []core.Row{{"only_name"}}})
	assert.Error(t, err)
}
