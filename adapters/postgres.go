package adapters

import (
	"database/sql"
	"fmt"
	nurl "net/url"
	"strings"

	_ "github.com/lib/pq"

	"dbrowse/core"
	"dbrowse/core/builders"
)

// Register client
func init() {
	_ = register(&Postgres{}, "postgres", "postgresql", "pg")
}

var _ core.Adapter = (*Postgres)(nil)

type Postgres struct{}

func (p *Postgres) Connect(url string) (core.Driver, error) {
	u, err := nurl.Parse(url)
	if err != nil {
		return nil, fmt.Errorf("could not parse db connection string: %w", err)
	}

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return nil, fmt.Errorf("unable to connect to postgres database: %w", err)
	}

	return &postgresDriver{
		c: builders.NewClient(db,
			builders.WithIdentifierQuoter(quoteQualified),
		),
	}, nil
}

// quoteQualified quotes a possibly schema-qualified identifier part by
// part, so "public.users" becomes "public"."users".
func quoteQualified(ident string) string {
	parts := strings.Split(ident, ".")
	for i, part := range parts {
		parts[i] = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
