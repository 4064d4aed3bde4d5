//go:build cgo

package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqliteDialector opens sqlite through mattn/go-sqlite3.
func sqliteDialector(path string) gorm.Dialector {
	if path == ":memory:" {
		return sqlite.Open(path)
	}
	return sqlite.Open("file:" + path + "?_busy_timeout=5000&_foreign_keys=1")
}
