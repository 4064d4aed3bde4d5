// content.go
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

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/localnerve/tuskfish/internal/criteria"
	"github.com/localnerve/tuskfish/internal/database"
	"github.com/localnerve/tuskfish/internal/models"
	"github.com/localnerve/tuskfish/internal/validation"
)

const contentTable = "content"

// ListParams are the cleaned query parameters of a content listing.
type ListParams struct {
	Start        int      `validate:"min=0"`
	Limit        int      `validate:"min=0"`
	Tag          int64    `validate:"min=0"`
	Type         string   `validate:"omitempty,oneof=TfArticle TfAudio TfCollection TfDownload TfImage TfStatic TfTag TfVideo"`
	ExcludeTypes []string `validate:"dive,oneof=TfArticle TfAudio TfCollection TfDownload TfImage TfStatic TfTag TfVideo"`
	Parent       int64    `validate:"min=0"`
	OnlineStatus *int64   `validate:"omitempty,boolint"`
	Sort         string   `validate:"omitempty,identifier"`
	Order        string   `validate:"omitempty,oneof=asc desc ASC DESC"`
}

// Search modes
const (
	SearchAnd   = "AND"
	SearchOr    = "OR"
	SearchExact = "exact"
)

// SearchParams are the cleaned parameters of a free text search.
type SearchParams struct {
	Terms      string `validate:"required"`
	Mode       string `validate:"omitempty,oneof=AND OR exact"`
	Start      int    `validate:"min=0"`
	Limit      int    `validate:"min=0"`
	OnlineOnly bool
}

// ContentModel lists, reads and writes content rows and their tags.
type ContentModel struct {
	store
	searchMinLength int
}

// NewContentModel creates a content model. searchMinLength is the shortest accepted search term.
func NewContentModel(db *database.Database, registry *models.Registry, links models.Links, searchMinLength int) *ContentModel {
	return &ContentModel{
		store:           newStore(db, registry, links, contentTable, models.ModuleContent),
		searchMinLength: searchMinLength,
	}
}

// Criteria turns list parameters into a criteria. Default sort is newest submission first.
func (m *ContentModel) Criteria(p ListParams) (*criteria.Criteria, error) {
	if err := validation.ValidateStruct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", criteria.ErrInvalidArgument, err)
	}

	factory := criteria.NewFactory()
	c := factory.Criteria()

	add := func(column string, value any, op criteria.Operator) error {
		item, err := factory.Item(column, value, op)
		if err != nil {
			return err
		}
		c.Add(item)
		return nil
	}

	if p.Type != "" {
		if err := add("type", p.Type, criteria.OpEq); err != nil {
			return nil, err
		}
	}
	for _, excluded := range p.ExcludeTypes {
		if err := add("type", excluded, criteria.OpNe); err != nil {
			return nil, err
		}
	}
	if p.Parent > 0 {
		if err := add("parent", p.Parent, criteria.OpEq); err != nil {
			return nil, err
		}
	}
	if p.OnlineStatus != nil {
		if err := add("onlineStatus", *p.OnlineStatus, criteria.OpEq); err != nil {
			return nil, err
		}
	}
	if p.Tag > 0 {
		if err := c.SetTag([]int64{p.Tag}); err != nil {
			return nil, err
		}
		c.SetTagModule(models.ModuleContent)
	}

	if err := applyPaging(c, p.Sort, p.Order, "submissionTime", criteria.Desc, p.Limit, p.Start); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns one page of content and the total number of matching rows.
func (m *ContentModel) List(ctx context.Context, p ListParams) ([]models.Entity, int64, error) {
	c, err := m.Criteria(p)
	if err != nil {
		return nil, 0, err
	}
	return m.list(ctx, c)
}

// Get returns one content item. With onlineOnly an offline item is reported as database.ErrNoRows.
func (m *ContentModel) Get(ctx context.Context, id int64, onlineOnly bool) (models.Entity, error) {
	return m.get(ctx, id, onlineOnly)
}

// Insert stores a new content item with its tags and returns the new id.
func (m *ContentModel) Insert(ctx context.Context, entity models.Entity, tagIDs []int64) (int64, error) {
	if err := checkTaggable(entity, tagIDs); err != nil {
		return 0, err
	}
	return m.insert(ctx, entity, tagIDs)
}

// Update rewrites a content item and replaces its tags.
func (m *ContentModel) Update(ctx context.Context, entity models.Entity, tagIDs []int64) error {
	if err := checkTaggable(entity, tagIDs); err != nil {
		return err
	}
	return m.update(ctx, entity, tagIDs)
}

func checkTaggable(entity models.Entity, tagIDs []int64) error {
	if entity.ContentType() == models.TypeTag && len(tagIDs) > 0 {
		return fmt.Errorf("%w: tags cannot be tagged", criteria.ErrInvalidArgument)
	}
	return nil
}

// Delete removes a content item and its taglinks. Deleting a tag also removes the links that
// reference it; deleting a collection detaches its children.
func (m *ContentModel) Delete(ctx context.Context, id int64) error {
	return m.remove(ctx, id, func(tx *database.Database) error {
		if err := DeleteTagReferences(ctx, tx, id); err != nil {
			return err
		}
		c := criteria.New()
		child, err := criteria.Eq("parent", id)
		if err != nil {
			return err
		}
		c.Add(child)
		_, err = tx.UpdateAll(ctx, contentTable, map[string]any{"parent": int64(0)}, c)
		return err
	})
}

// Toggle flips the online status.
func (m *ContentModel) Toggle(ctx context.Context, id int64) error {
	return m.toggle(ctx, id)
}

// IncrementCounter adds one view or download to the item.
func (m *ContentModel) IncrementCounter(ctx context.Context, id int64) error {
	return m.incrementCounter(ctx, id)
}

// ActiveTags returns the online tags that are linked to at least one content item, by title.
func (m *ContentModel) ActiveTags(ctx context.Context) ([]models.Entity, error) {
	linked := criteria.New()
	module, err := criteria.Eq("module", models.ModuleContent)
	if err != nil {
		return nil, err
	}
	linked.Add(module)

	result, err := m.db.SelectDistinct(ctx, taglinkTable, linked, []string{"tagId"})
	if err != nil {
		return nil, err
	}
	tagIDs, err := result.Int64Column()
	if err != nil {
		return nil, err
	}
	if len(tagIDs) == 0 {
		return []models.Entity{}, nil
	}

	c := criteria.New()
	for _, cond := range []struct {
		column string
		value  any
		op     criteria.Operator
	}{
		{"type", models.TypeTag, criteria.OpEq},
		{"onlineStatus", 1, criteria.OpEq},
		{"id", tagIDs, criteria.OpIn},
	} {
		item, err := criteria.NewItem(cond.column, cond.value, cond.op)
		if err != nil {
			return nil, err
		}
		c.Add(item)
	}
	if err := c.SetSort("title"); err != nil {
		return nil, err
	}
	c.SetOrder(string(criteria.Asc))

	entities, _, err := m.list(ctx, c)
	return entities, err
}

// searchColumns are matched by every search term.
var searchColumns = []string{"title", "teaser", "description", "caption", "creator", "publisher"}

// likeEscaper escapes LIKE wildcards with "!", declared in the ESCAPE clause.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// searchTerms splits and filters the raw terms. Exact mode keeps the phrase whole.
func searchTerms(raw, mode string, minLength int) []string {
	raw = strings.TrimSpace(raw)
	if mode == SearchExact {
		if len([]rune(raw)) < minLength {
			return nil
		}
		return []string{raw}
	}
	var out []string
	for _, term := range strings.Fields(raw) {
		if len([]rune(term)) >= minLength {
			out = append(out, term)
		}
	}
	return out
}

// Search matches terms against the text columns of content (tags excluded) and returns one
// page of results, newest first, with the total match count.
func (m *ContentModel) Search(ctx context.Context, p SearchParams) ([]models.Entity, int64, error) {
	if err := validation.ValidateStruct(p); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", criteria.ErrInvalidArgument, err)
	}
	if p.Mode == "" {
		p.Mode = SearchAnd
	}
	terms := searchTerms(p.Terms, p.Mode, m.searchMinLength)
	if len(terms) == 0 {
		return nil, 0, fmt.Errorf("%w: no search term of at least %d characters", criteria.ErrInvalidArgument, m.searchMinLength)
	}

	d := m.db.Dialect()
	q := d.Quote
	if q == nil {
		q = func(s string) string { return s }
	}

	conditions := []string{q("type") + " != ?"}
	args := []any{models.TypeTag}
	if p.OnlineOnly {
		conditions = append(conditions, q("onlineStatus")+" = ?")
		args = append(args, 1)
	}

	joiner := " AND "
	if p.Mode == SearchOr {
		joiner = " OR "
	}
	termClauses := make([]string, 0, len(terms))
	for _, term := range terms {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		columnClauses := make([]string, len(searchColumns))
		for i, col := range searchColumns {
			columnClauses[i] = q(col) + " LIKE ? ESCAPE '!'"
			args = append(args, pattern)
		}
		termClauses = append(termClauses, "("+strings.Join(columnClauses, " OR ")+")")
	}
	conditions = append(conditions, "("+strings.Join(termClauses, joiner)+")")
	where := "WHERE " + strings.Join(conditions, " AND ")

	countStmt, err := m.db.PreparedStatement(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s %s", q(contentTable), where))
	if err != nil {
		return nil, 0, err
	}
	countResult, err := countStmt.Query(args...)
	if err != nil {
		return nil, 0, err
	}
	counts, err := countResult.Int64Column()
	if err != nil {
		return nil, 0, err
	}
	if len(counts) == 0 || counts[0] == 0 {
		return []models.Entity{}, 0, nil
	}

	paging := criteria.New()
	if err := applyPaging(paging, "date", "", "date", criteria.Desc, p.Limit, p.Start); err != nil {
		return nil, 0, err
	}
	tail, pagingArgs := paging.PagingClause(d)
	query := fmt.Sprintf("SELECT * FROM %s %s %s", q(contentTable), where, paging.OrderClause(d))
	if tail != "" {
		query += " " + tail
	}

	stmt, err := m.db.PreparedStatement(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	result, err := stmt.Query(append(args, pagingArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	entities, err := result.AllEntities(m.registry, m.table, m.links)
	if err != nil {
		return nil, 0, err
	}
	return entities, counts[0], nil
}
