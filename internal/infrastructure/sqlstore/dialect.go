package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// DriverFor maps a configured backend name to a registered database/sql driver.
// "sqlite" follows the build tag; "postgres" uses lib/pq and "pgx" uses pgx/v5/stdlib.
func DriverFor(backend string) (string, error) {
	switch strings.ToLower(backend) {
	case "sqlite", "sqlite3":
		return SQLiteDriver, nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "pgx":
		return "pgx", nil
	default:
		return "", fmt.Errorf("sqlstore: unsupported backend %q", backend)
	}
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return dialectSQLite, nil
	case "postgres", "pgx":
		return dialectPostgres, nil
	default:
		return 0, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

// rebind rewrites ? placeholders into $n for Postgres.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// forUpdate appends a row lock where the engine supports one. SQLite
// serialises writers on its single connection instead.
func (d dialect) forUpdate(query string) string {
	if d == dialectPostgres {
		return query + " FOR UPDATE"
	}
	return query
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
