package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Statement is a reusable parameterized statement. Placeholders are written as "?" and rebound
// for the connected dialect. The driver statement is prepared on first use and cached per connection pool.
type Statement struct {
	db    *gorm.DB
	query string
	op    string
}

// PreparedStatement returns a Statement for query. The query must bind every value.
func (d *Database) PreparedStatement(ctx context.Context, query string) (*Statement, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty statement", ErrStatement)
	}
	return &Statement{
		db:    d.db.Session(&gorm.Session{PrepareStmt: true, Context: ctx}),
		query: query,
		op:    "prepared",
	}, nil
}

// Query runs the statement as a select.
func (s *Statement) Query(args ...any) (*Result, error) {
	start := time.Now()
	rows, err := s.db.Raw(s.query, args...).Rows()
	if err != nil {
		err = statementError(s.op, "", err)
		record(s.op, "", err, start)
		return nil, err
	}
	record(s.op, "", nil, start)
	return newResult(rows)
}

// Exec runs the statement and returns the affected row count.
func (s *Statement) Exec(args ...any) (int64, error) {
	start := time.Now()
	tx := s.db.Exec(s.query, args...)
	if tx.Error != nil {
		err := statementError(s.op, "", tx.Error)
		record(s.op, "", err, start)
		return 0, err
	}
	record(s.op, "", nil, start)
	return tx.RowsAffected, nil
}
