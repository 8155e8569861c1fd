package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbrowse/core"
)

func TestMux_GetAdapter(t *testing.T) {
	mux := new(Mux)

	for _, alias := range []string{"sqlite", "sqlite3", "postgres", "pg", "mysql"} {
		adapter, err := mux.GetAdapter(alias)
		require.NoError(t, err, alias)
		require.NotNil(t, adapter, alias)
	}

	_, err := mux.GetAdapter("does-not-exist")
	assert.ErrorIs(t, err, ErrUnsupportedTypeAlias)
}

func TestMux_AddAdapter(t *testing.T) {
	mux := new(Mux)

	custom := &MySQL{}
	require.NoError(t, mux.AddAdapter("custom", custom))

	adapter, err := mux.GetAdapter("custom")
	require.NoError(t, err)
	assert.Equal(t, core.Adapter(custom), adapter)
}

func TestQuoteQualified(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"users", `"users"`},
		{"public.users", `"public"."users"`},
		{`we"ird`, `"we""ird"`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, quoteQualified(tt.input))
	}
}

func TestQuoteBacktick(t *testing.T) {
	assert.Equal(t, "`users`", quoteBacktick("users"))
	assert.Equal(t, "`db`.`users`", quoteBacktick("db.users"))
}
