//go:build !cgo

package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// sqliteDialector opens sqlite through the pure Go modernc driver for CGO_ENABLED=0 builds.
func sqliteDialector(path string) gorm.Dialector {
	if path == ":memory:" {
		return sqlite.Open(path)
	}
	return sqlite.Open("file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
}
