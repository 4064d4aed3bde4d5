// Package criteria composes filter, sort and paging state into parameterized SQL fragments.
//
// Values are always bound as placeholders. Identifiers (columns, sort fields) are checked against
// the ^[A-Za-z0-9_]+$ allow-list when they are set, so an invalid identifier fails before any SQL
// is produced.
package criteria

import (
	"fmt"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// NormalizeDirection maps any input other than "asc" (case-insensitive) to Desc.
func NormalizeDirection(dir string) Direction {
	if strings.EqualFold(strings.TrimSpace(dir), string(Asc)) {
		return Asc
	}
	return Desc
}

// PagingStyle selects how limit and offset are rendered.
type PagingStyle int

const (
	// LimitOffset renders "LIMIT ? OFFSET ?" (sqlite, mysql, postgres).
	LimitOffset PagingStyle = iota
	// OffsetFetch renders "OFFSET ? ROWS FETCH NEXT ? ROWS ONLY" (sqlserver).
	OffsetFetch
)

// Dialect controls identifier quoting and paging syntax.
type Dialect struct {
	Quote  func(string) string
	Paging PagingStyle
}

// DefaultDialect leaves identifiers unquoted and uses LIMIT/OFFSET.
var DefaultDialect = Dialect{Paging: LimitOffset}

func (d Dialect) quote(s string) string {
	if d.Quote == nil {
		return s
	}
	return d.Quote(s)
}

// Criteria is an AND-combined list of conditions with an optional single tag filter,
// sort, secondary sort, limit and offset. It is built fresh for each query.
type Criteria struct {
	items          []*Item
	tag            int64
	tagModule      string
	sort           string
	order          Direction
	secondarySort  string
	secondaryOrder Direction
	limit          int
	offset         int
}

// New returns an empty Criteria.
func New() *Criteria {
	return &Criteria{order: Desc, secondaryOrder: Desc}
}

// Add appends a condition. Order of addition is the clause order.
func (c *Criteria) Add(item *Item) {
	if item == nil {
		return
	}
	c.items = append(c.items, item)
}

// Items returns the conditions in insertion order.
func (c *Criteria) Items() []*Item {
	out := make([]*Item, len(c.items))
	copy(out, c.items)
	return out
}

// SetTag records the tag filter. Only the first id is honored; an empty list clears the filter.
func (c *Criteria) SetTag(tagIDs []int64) error {
	if len(tagIDs) == 0 {
		c.tag = 0
		return nil
	}
	if tagIDs[0] < 1 {
		return fmt.Errorf("%w: tag id %d", ErrInvalidArgument, tagIDs[0])
	}
	c.tag = tagIDs[0]
	return nil
}

// SetTagModule restricts the tag subquery to taglinks of one module.
func (c *Criteria) SetTagModule(module string) {
	c.tagModule = module
}

// Tag returns the tag filter, if any.
func (c *Criteria) Tag() (int64, bool) {
	return c.tag, c.tag > 0
}

// SetSort sets the primary sort field.
func (c *Criteria) SetSort(field string) error {
	if !ValidIdentifier(field) {
		return fmt.Errorf("%w: sort field %q", ErrInvalidColumn, field)
	}
	c.sort = field
	return nil
}

// SetOrder sets the primary sort direction.
func (c *Criteria) SetOrder(dir string) {
	c.order = NormalizeDirection(dir)
}

// SetSecondarySort sets the tie-break sort field.
func (c *Criteria) SetSecondarySort(field string) error {
	if !ValidIdentifier(field) {
		return fmt.Errorf("%w: secondary sort field %q", ErrInvalidColumn, field)
	}
	c.secondarySort = field
	return nil
}

// SetSecondaryOrder sets the tie-break sort direction.
func (c *Criteria) SetSecondaryOrder(dir string) {
	c.secondaryOrder = NormalizeDirection(dir)
}

// SetLimit sets the maximum number of rows; 0 means unlimited.
func (c *Criteria) SetLimit(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidArgument, n)
	}
	c.limit = n
	return nil
}

// SetOffset sets the number of rows to skip.
func (c *Criteria) SetOffset(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, n)
	}
	c.offset = n
	return nil
}

func (c *Criteria) Sort() (string, Direction)          { return c.sort, c.order }
func (c *Criteria) SecondarySort() (string, Direction) { return c.secondarySort, c.secondaryOrder }
func (c *Criteria) Limit() int                         { return c.limit }
func (c *Criteria) Offset() int                        { return c.offset }

// WhereClause renders "WHERE ..." or the empty string.
func (c *Criteria) WhereClause(d Dialect) (string, []any) {
	if c == nil {
		return "", nil
	}

	var conditions []string
	var args []any
	for _, item := range c.items {
		sql, vars := item.render(d.quote)
		conditions = append(conditions, sql)
		args = append(args, vars...)
	}

	if c.tag > 0 {
		sub := fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s = ?",
			d.quote("id"), d.quote("contentId"), d.quote("taglink"), d.quote("tagId"))
		args = append(args, c.tag)
		if c.tagModule != "" {
			sub += fmt.Sprintf(" AND %s = ?", d.quote("module"))
			args = append(args, c.tagModule)
		}
		conditions = append(conditions, sub+")")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// OrderClause renders "ORDER BY ..." or the empty string.
// OffsetFetch paging needs an ORDER BY, so a neutral one is emitted when paging without a sort.
func (c *Criteria) OrderClause(d Dialect) string {
	if c == nil {
		return ""
	}
	if c.sort == "" {
		if d.Paging == OffsetFetch && (c.limit > 0 || c.offset > 0) {
			return "ORDER BY (SELECT NULL)"
		}
		return ""
	}
	order := fmt.Sprintf("ORDER BY %s %s", d.quote(c.sort), c.order)
	if c.secondarySort != "" {
		order += fmt.Sprintf(", %s %s", d.quote(c.secondarySort), c.secondaryOrder)
	}
	return order
}

// PagingClause renders the limit/offset clause or the empty string.
// With LimitOffset an offset is only rendered together with a limit.
func (c *Criteria) PagingClause(d Dialect) (string, []any) {
	if c == nil {
		return "", nil
	}
	switch d.Paging {
	case OffsetFetch:
		if c.limit == 0 && c.offset == 0 {
			return "", nil
		}
		sql := "OFFSET ? ROWS"
		args := []any{c.offset}
		if c.limit > 0 {
			sql += " FETCH NEXT ? ROWS ONLY"
			args = append(args, c.limit)
		}
		return sql, args
	default:
		if c.limit == 0 {
			return "", nil
		}
		if c.offset > 0 {
			return "LIMIT ? OFFSET ?", []any{c.limit, c.offset}
		}
		return "LIMIT ?", []any{c.limit}
	}
}

// Render returns the full tail of a SELECT: where, order and paging clauses.
func (c *Criteria) Render(d Dialect) (string, []any) {
	where, args := c.WhereClause(d)
	paging, pagingArgs := c.PagingClause(d)
	return joinClauses(where, c.OrderClause(d), paging), append(args, pagingArgs...)
}

// RenderCount returns only the where clause; sort and paging are irrelevant to a count.
func (c *Criteria) RenderCount(d Dialect) (string, []any) {
	return c.WhereClause(d)
}

func joinClauses(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
