package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/localnerve/tuskfish/internal/models"
)

// errNoCurrentRow is returned by the fetch methods when Next has not positioned the cursor on a row.
var errNoCurrentRow = errors.New("no current row, call Next first")

// Result is a forward-only cursor over a select. Call Next, then one of the fetch methods, and
// Close when done. Close is safe to call more than once.
type Result struct {
	rows    *sql.Rows
	columns []string
	onRow   bool
	closed  bool
}

func newResult(rows *sql.Rows) (*Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("%w: reading columns: %w", ErrStatement, err)
	}
	return &Result{rows: rows, columns: columns}, nil
}

// Columns returns the result column names in select order.
func (r *Result) Columns() []string {
	return r.columns
}

// Next advances to the next row. It returns false at the end of the result or on error; check Err.
func (r *Result) Next() bool {
	if r.closed {
		return false
	}
	r.onRow = r.rows.Next()
	if !r.onRow {
		r.Close()
	}
	return r.onRow
}

// Err returns the error, if any, that ended iteration.
func (r *Result) Err() error {
	if err := r.rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStatement, err)
	}
	return nil
}

// Close releases the cursor.
func (r *Result) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.onRow = false
	return r.rows.Close()
}

// FetchRow returns the current row as positional values. Byte slices are returned as strings.
func (r *Result) FetchRow() ([]any, error) {
	if !r.onRow {
		return nil, errNoCurrentRow
	}
	values := make([]any, len(r.columns))
	ptrs := make([]any, len(r.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("%w: scanning row: %w", ErrStatement, err)
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values, nil
}

// FetchAssoc returns the current row keyed by column name.
func (r *Result) FetchAssoc() (map[string]any, error) {
	values, err := r.FetchRow()
	if err != nil {
		return nil, err
	}
	row := make(map[string]any, len(values))
	for i, col := range r.columns {
		row[col] = values[i]
	}
	return row, nil
}

// FetchInto scans the current row into dest, one pointer per column.
func (r *Result) FetchInto(dest ...any) error {
	if !r.onRow {
		return errNoCurrentRow
	}
	if err := r.rows.Scan(dest...); err != nil {
		return fmt.Errorf("%w: scanning row: %w", ErrStatement, err)
	}
	return nil
}

// FetchEntity hydrates the current row of table into the entity registered for its "type" column.
// The select must include the type column; a type belonging to another table is models.ErrUnknownType.
func (r *Result) FetchEntity(registry *models.Registry, table string, links models.Links) (models.Entity, error) {
	row, err := r.FetchAssoc()
	if err != nil {
		return nil, err
	}
	return registry.HydrateTable(table, row, links)
}

// AllEntities drains the cursor into entities and closes it.
func (r *Result) AllEntities(registry *models.Registry, table string, links models.Links) ([]models.Entity, error) {
	defer r.Close()

	var out []models.Entity
	for r.Next() {
		entity, err := r.FetchEntity(registry, table, links)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AllAssoc drains the cursor into rows and closes it.
func (r *Result) AllAssoc() ([]map[string]any, error) {
	defer r.Close()

	var out []map[string]any
	for r.Next() {
		row, err := r.FetchAssoc()
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Int64Column drains a single-column cursor of integers and closes it.
func (r *Result) Int64Column() ([]int64, error) {
	defer r.Close()

	var out []int64
	for r.Next() {
		var v int64
		if err := r.FetchInto(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
