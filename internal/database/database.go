// database.go
//
// Content query, tagging and routing layer for the Tuskfish CMS data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of tuskfish.
// tuskfish is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// tuskfish is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with tuskfish.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/localnerve/tuskfish/internal/criteria"
	"github.com/localnerve/tuskfish/internal/logging"
	"github.com/localnerve/tuskfish/internal/metrics"
	"github.com/localnerve/tuskfish/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var (
	// ErrNoRows is returned by Update, Delete, ToggleBoolean and UpdateCounter when no row has the id.
	ErrNoRows = errors.New("no matching row")
	// ErrStatement wraps every driver failure while preparing or executing a statement.
	ErrStatement = errors.New("statement failed")
	// ErrUnknownTable is returned for a table name outside the schema.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownColumn is returned for a column name the table does not have.
	ErrUnknownColumn = errors.New("unknown column")
)

// Database executes criteria-driven statements against the content schema.
// Every identifier is checked against the identifier pattern and the schema parsed from the
// registered models; every value is bound.
type Database struct {
	db      *gorm.DB
	dialect criteria.Dialect
	tables  map[string]map[string]struct{}
}

// New wraps a connection. The schema allow-list is parsed from models.Schema() plus any extra models.
func New(db *gorm.DB, extra ...interface{}) (*Database, error) {
	tables := make(map[string]map[string]struct{})
	cache := &sync.Map{}

	for _, model := range append(models.Schema(), extra...) {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema for %T: %w", model, err)
		}
		columns := make(map[string]struct{}, len(s.DBNames))
		for _, name := range s.DBNames {
			columns[name] = struct{}{}
		}
		tables[s.Table] = columns
	}

	d := &Database{db: db, tables: tables}
	d.dialect = criteria.Dialect{Quote: d.quote, Paging: criteria.LimitOffset}
	if db.Dialector.Name() == "sqlserver" {
		d.dialect.Paging = criteria.OffsetFetch
	}
	return d, nil
}

// DB returns the underlying gorm handle.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Dialect returns the rendering dialect for this connection.
func (d *Database) Dialect() criteria.Dialect {
	return d.dialect
}

// Ping checks the connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) quote(identifier string) string {
	var b strings.Builder
	d.db.Dialector.QuoteTo(&b, identifier)
	return b.String()
}

func (d *Database) columnsOf(table string) (map[string]struct{}, error) {
	if !criteria.ValidIdentifier(table) {
		return nil, fmt.Errorf("%w: %q", criteria.ErrInvalidColumn, table)
	}
	columns, ok := d.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return columns, nil
}

func (d *Database) checkColumns(table string, names ...string) error {
	columns, err := d.columnsOf(table)
	if err != nil {
		return err
	}
	for _, name := range names {
		if !criteria.ValidIdentifier(name) {
			return fmt.Errorf("%w: %q", criteria.ErrInvalidColumn, name)
		}
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, name)
		}
	}
	return nil
}

func (d *Database) checkCriteria(table string, c *criteria.Criteria) error {
	if c == nil {
		_, err := d.columnsOf(table)
		return err
	}
	var names []string
	for _, item := range c.Items() {
		names = append(names, item.Column())
	}
	if field, _ := c.Sort(); field != "" {
		names = append(names, field)
	}
	if field, _ := c.SecondarySort(); field != "" {
		names = append(names, field)
	}
	return d.checkColumns(table, names...)
}

func record(op, table string, err error, start time.Time) {
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, ErrNoRows):
		outcome = metrics.OutcomeNoRows
	case err != nil:
		outcome = metrics.OutcomeError
	}
	metrics.RecordStatement(op, table, outcome, time.Since(start))
}

func statementError(op, table string, err error) error {
	logging.Error().Err(err).Str("op", op).Str("table", table).Msg("Statement failed")
	return fmt.Errorf("%w: %s %s: %w", ErrStatement, op, table, err)
}

// exec runs a write statement and returns the affected row count.
func (d *Database) exec(ctx context.Context, op, table, query string, args []any) (int64, error) {
	start := time.Now()
	tx := d.db.WithContext(ctx).Exec(query, args...)
	if tx.Error != nil {
		err := statementError(op, table, tx.Error)
		record(op, table, err, start)
		return 0, err
	}
	record(op, table, nil, start)
	return tx.RowsAffected, nil
}

// execByID runs a write statement against one row, reporting ErrNoRows when the id matches nothing.
func (d *Database) execByID(ctx context.Context, op, table, query string, args []any) error {
	start := time.Now()
	tx := d.db.WithContext(ctx).Exec(query, args...)
	var err error
	switch {
	case tx.Error != nil:
		err = statementError(op, table, tx.Error)
	case tx.RowsAffected == 0:
		err = fmt.Errorf("%w: %s id %v", ErrNoRows, table, args[len(args)-1])
	}
	record(op, table, err, start)
	return err
}

func (d *Database) selectList(table string, columns []string) (string, error) {
	if len(columns) == 0 {
		if _, err := d.columnsOf(table); err != nil {
			return "", err
		}
		return "*", nil
	}
	if err := d.checkColumns(table, columns...); err != nil {
		return "", err
	}
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = d.quote(col)
	}
	return strings.Join(quoted, ", "), nil
}

func (d *Database) query(ctx context.Context, op, table, query string, args []any) (*Result, error) {
	start := time.Now()
	rows, err := d.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		err = statementError(op, table, err)
		record(op, table, err, start)
		return nil, err
	}
	record(op, table, nil, start)
	return newResult(rows)
}

// Select returns a cursor over the rows of table matching c. An empty column list selects every column.
func (d *Database) Select(ctx context.Context, table string, c *criteria.Criteria, columns []string) (*Result, error) {
	return d.selectRows(ctx, "select", "SELECT", table, c, columns)
}

// SelectDistinct is Select with DISTINCT applied to the column list.
func (d *Database) SelectDistinct(ctx context.Context, table string, c *criteria.Criteria, columns []string) (*Result, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: distinct select needs columns", criteria.ErrInvalidArgument)
	}
	return d.selectRows(ctx, "select_distinct", "SELECT DISTINCT", table, c, columns)
}

func (d *Database) selectRows(ctx context.Context, op, verb, table string, c *criteria.Criteria, columns []string) (*Result, error) {
	list, err := d.selectList(table, columns)
	if err != nil {
		return nil, err
	}
	if err := d.checkCriteria(table, c); err != nil {
		return nil, err
	}
	tail, args := c.Render(d.dialect)
	query := fmt.Sprintf("%s %s FROM %s", verb, list, d.quote(table))
	if tail != "" {
		query += " " + tail
	}
	return d.query(ctx, op, table, query, args)
}

// SelectCount counts the rows of table matching c. Sort and paging are ignored.
func (d *Database) SelectCount(ctx context.Context, table string, c *criteria.Criteria) (int64, error) {
	if err := d.checkCriteria(table, c); err != nil {
		return 0, err
	}
	where, args := c.RenderCount(d.dialect)
	query := "SELECT COUNT(*) FROM " + d.quote(table)
	if where != "" {
		query += " " + where
	}

	start := time.Now()
	var count int64
	if err := d.db.WithContext(ctx).Raw(query, args...).Row().Scan(&count); err != nil {
		err = statementError("count", table, err)
		record("count", table, err, start)
		return 0, err
	}
	record("count", table, nil, start)
	return count, nil
}

func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Insert writes one row and returns its new id.
func (d *Database) Insert(ctx context.Context, table string, data map[string]any) (int64, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: nothing to insert", criteria.ErrInvalidArgument)
	}
	keys := sortedKeys(data)
	if err := d.checkColumns(table, keys...); err != nil {
		return 0, err
	}

	columns := make([]string, len(keys))
	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		columns[i] = d.quote(k)
		marks[i] = "?"
		args[i] = data[k]
	}
	into := fmt.Sprintf("INSERT INTO %s (%s)", d.quote(table), strings.Join(columns, ", "))
	values := fmt.Sprintf("VALUES (%s)", strings.Join(marks, ", "))

	start := time.Now()
	var id int64
	var err error
	switch d.db.Dialector.Name() {
	case "postgres":
		err = d.db.WithContext(ctx).Raw(into+" "+values+" RETURNING "+d.quote("id"), args...).Row().Scan(&id)
	case "sqlserver":
		err = d.db.WithContext(ctx).Raw(into+" OUTPUT INSERTED."+d.quote("id")+" "+values, args...).Row().Scan(&id)
	default:
		tx := d.db.WithContext(ctx)
		res, execErr := tx.Statement.ConnPool.ExecContext(ctx, into+" "+values, args...)
		if err = execErr; err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		err = statementError("insert", table, err)
		record("insert", table, err, start)
		return 0, err
	}
	record("insert", table, nil, start)
	return id, nil
}

func (d *Database) assignments(table string, data map[string]any) (string, []any, error) {
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: nothing to update", criteria.ErrInvalidArgument)
	}
	keys := sortedKeys(data)
	if err := d.checkColumns(table, keys...); err != nil {
		return "", nil, err
	}
	sets := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		sets[i] = d.quote(k) + " = ?"
		args[i] = data[k]
	}
	return strings.Join(sets, ", "), args, nil
}

// Update writes data to the row with id. ErrNoRows when no row has that id.
func (d *Database) Update(ctx context.Context, table string, id int64, data map[string]any) error {
	sets, args, err := d.assignments(table, data)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", d.quote(table), sets, d.quote("id"))
	return d.execByID(ctx, "update", table, query, append(args, id))
}

// UpdateAll writes data to every row matching c and returns the number of rows changed.
func (d *Database) UpdateAll(ctx context.Context, table string, data map[string]any, c *criteria.Criteria) (int64, error) {
	sets, args, err := d.assignments(table, data)
	if err != nil {
		return 0, err
	}
	if err := d.checkCriteria(table, c); err != nil {
		return 0, err
	}
	where, whereArgs := c.WhereClause(d.dialect)
	query := fmt.Sprintf("UPDATE %s SET %s", d.quote(table), sets)
	if where != "" {
		query += " " + where
	}
	return d.exec(ctx, "update_all", table, query, append(args, whereArgs...))
}

// Delete removes the row with id. ErrNoRows when no row has that id.
func (d *Database) Delete(ctx context.Context, table string, id int64) error {
	if _, err := d.columnsOf(table); err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", d.quote(table), d.quote("id"))
	return d.execByID(ctx, "delete", table, query, []any{id})
}

// DeleteAll removes every row matching c. A criteria without conditions is refused.
func (d *Database) DeleteAll(ctx context.Context, table string, c *criteria.Criteria) (int64, error) {
	if err := d.checkCriteria(table, c); err != nil {
		return 0, err
	}
	where, args := c.WhereClause(d.dialect)
	if where == "" {
		return 0, fmt.Errorf("%w: refusing to delete without conditions", criteria.ErrInvalidArgument)
	}
	query := fmt.Sprintf("DELETE FROM %s %s", d.quote(table), where)
	return d.exec(ctx, "delete_all", table, query, args)
}

// ToggleBoolean flips a 0/1 column in one statement, so concurrent toggles never lose an update.
func (d *Database) ToggleBoolean(ctx context.Context, id int64, table, column string) error {
	if err := d.checkColumns(table, column); err != nil {
		return err
	}
	col := d.quote(column)
	query := fmt.Sprintf("UPDATE %s SET %s = 1 - %s WHERE %s = ?", d.quote(table), col, col, d.quote("id"))
	return d.execByID(ctx, "toggle", table, query, []any{id})
}

// UpdateCounter increments a counter column in one statement.
func (d *Database) UpdateCounter(ctx context.Context, id int64, table, column string) error {
	if err := d.checkColumns(table, column); err != nil {
		return err
	}
	col := d.quote(column)
	query := fmt.Sprintf("UPDATE %s SET %s = %s + 1 WHERE %s = ?", d.quote(table), col, col, d.quote("id"))
	return d.execByID(ctx, "counter", table, query, []any{id})
}

// ExecuteTransaction runs fn inside one transaction. The transaction is rolled back when fn
// returns an error or panics, and committed otherwise. fn must use the Database it is given.
func (d *Database) ExecuteTransaction(ctx context.Context, fn func(tx *Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Database{db: tx, dialect: d.dialect, tables: d.tables})
	})
}
