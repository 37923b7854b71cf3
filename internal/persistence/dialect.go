package persistence

import (
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavor of the underlying store. Queries in
// this package are written with ? placeholders and rebound per dialect.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDialect normalizes a driver name into a Dialect.
func ParseDialect(name string) Dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pq":
		return DialectPostgres
	default:
		return DialectSQLite
	}
}

// Rebind converts ? placeholders into the dialect-specific form.
// Postgres uses $1, $2, ...; SQLite takes ? as-is. The scan is textual,
// so queries must not contain a literal ? inside a string constant.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	arg := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(arg))
			arg++
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}
