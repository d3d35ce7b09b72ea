//go:build sqlite_cgo

package sqlstore

// CGO SQLite. Build command:
//   CGO_ENABLED=1 go build -tags sqlite_cgo ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDriver is the database/sql driver name registered for SQLite.
const SQLiteDriver = "sqlite3"
