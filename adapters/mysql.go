package adapters

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"dbrowse/core"
	"dbrowse/core/builders"
)

// Register client
func init() {
	_ = register(&MySQL{}, "mysql", "mariadb")
}

var _ core.Adapter = (*MySQL)(nil)

type MySQL struct{}

func (m *MySQL) Connect(url string) (core.Driver, error) {
	db, err := sql.Open("mysql", url)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mysql database: %w", err)
	}

	return &mysqlDriver{
		c: builders.NewClient(db,
			builders.WithIdentifierQuoter(quoteBacktick),
		),
	}, nil
}

// quoteBacktick quotes identifiers the mysql way.
func quoteBacktick(ident string) string {
	parts := strings.Split(ident, ".")
	for i, part := range parts {
		parts[i] = "`" + strings.ReplaceAll(part, "`", "``") + "`"
	}
	return strings.Join(parts, ".")
}
