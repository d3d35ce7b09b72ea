//go:build !sqlite_cgo

package sqlstore

// Pure Go SQLite, no C toolchain required. Build with -tags sqlite_cgo to
// switch to github.com/mattn/go-sqlite3.

import (
	_ "modernc.org/sqlite"
)

// SQLiteDriver is the database/sql driver name registered for SQLite.
const SQLiteDriver = "sqlite"
