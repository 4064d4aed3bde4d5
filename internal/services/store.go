// store.go
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
	"time"

	"github.com/localnerve/tuskfish/internal/criteria"
	"github.com/localnerve/tuskfish/internal/database"
	"github.com/localnerve/tuskfish/internal/models"
)

// store holds the row operations shared by the content and expert models.
type store struct {
	db       *database.Database
	registry *models.Registry
	links    models.Links
	table    string
	module   string
	now      func() time.Time
}

func newStore(db *database.Database, registry *models.Registry, links models.Links, table, module string) store {
	return store{
		db:       db,
		registry: registry,
		links:    links,
		table:    table,
		module:   module,
		now:      time.Now,
	}
}

// DB returns the database the model runs against.
func (s *store) DB() *database.Database {
	return s.db
}

// list runs c and its count, returning hydrated entities and the unpaged total.
func (s *store) list(ctx context.Context, c *criteria.Criteria) ([]models.Entity, int64, error) {
	total, err := s.db.SelectCount(ctx, s.table, c)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.Entity{}, 0, nil
	}

	result, err := s.db.Select(ctx, s.table, c, nil)
	if err != nil {
		return nil, 0, err
	}
	entities, err := result.AllEntities(s.registry, s.table, s.links)
	if err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

// get returns one entity by id. onlineOnly hides offline rows.
func (s *store) get(ctx context.Context, id int64, onlineOnly bool) (models.Entity, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: id %d", criteria.ErrInvalidArgument, id)
	}
	c := criteria.New()
	item, err := criteria.Eq("id", id)
	if err != nil {
		return nil, err
	}
	c.Add(item)
	if onlineOnly {
		online, err := criteria.Eq("onlineStatus", 1)
		if err != nil {
			return nil, err
		}
		c.Add(online)
	}

	result, err := s.db.Select(ctx, s.table, c, nil)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	if !result.Next() {
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s id %d", database.ErrNoRows, s.table, id)
	}
	return result.FetchEntity(s.registry, s.table, s.links)
}

func (s *store) owner(entity models.Entity, id int64, data map[string]any) TaglinkOwner {
	language, _ := data["language"].(string)
	return TaglinkOwner{
		ContentID:   id,
		ContentType: entity.ContentType(),
		Language:    language,
		Module:      s.module,
	}
}

func (s *store) checkEntity(entity models.Entity) error {
	if entity.TableName() != s.table {
		return fmt.Errorf("%w: %T does not belong in %s", criteria.ErrInvalidArgument, entity, s.table)
	}
	return entity.Validate()
}

// insert writes a new row and its tag set in one transaction and returns the new id.
func (s *store) insert(ctx context.Context, entity models.Entity, tagIDs []int64) (int64, error) {
	if err := s.checkEntity(entity); err != nil {
		return 0, err
	}

	data := entity.Persistable(s.links)
	now := s.now().Unix()
	if v, _ := data["submissionTime"].(int64); v == 0 {
		data["submissionTime"] = now
	}
	data["lastUpdated"] = now

	var id int64
	err := s.db.ExecuteTransaction(ctx, func(tx *database.Database) error {
		var err error
		if id, err = tx.Insert(ctx, s.table, data); err != nil {
			return err
		}
		return SaveTaglinks(ctx, tx, s.owner(entity, id, data), tagIDs)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// update rewrites an existing row and replaces its tag set in one transaction. Taglinks of every
// language are dropped first, so a language change leaves no stale tags behind.
func (s *store) update(ctx context.Context, entity models.Entity, tagIDs []int64) error {
	if err := s.checkEntity(entity); err != nil {
		return err
	}
	id := entity.Key()
	if id < 1 {
		return fmt.Errorf("%w: update needs an id", criteria.ErrInvalidArgument)
	}

	data := entity.Persistable(s.links)
	delete(data, "submissionTime")
	data["lastUpdated"] = s.now().Unix()

	return s.db.ExecuteTransaction(ctx, func(tx *database.Database) error {
		if err := tx.Update(ctx, s.table, id, data); err != nil {
			return err
		}
		if err := DeleteTaglinks(ctx, tx, id, s.module); err != nil {
			return err
		}
		return SaveTaglinks(ctx, tx, s.owner(entity, id, data), tagIDs)
	})
}

// remove deletes the row's taglinks, runs extra cleanup and deletes the row, all in one transaction.
func (s *store) remove(ctx context.Context, id int64, cleanup func(tx *database.Database) error) error {
	if id < 1 {
		return fmt.Errorf("%w: id %d", criteria.ErrInvalidArgument, id)
	}
	return s.db.ExecuteTransaction(ctx, func(tx *database.Database) error {
		if err := DeleteTaglinks(ctx, tx, id, s.module); err != nil {
			return err
		}
		if cleanup != nil {
			if err := cleanup(tx); err != nil {
				return err
			}
		}
		return tx.Delete(ctx, s.table, id)
	})
}

func (s *store) toggle(ctx context.Context, id int64) error {
	return s.db.ToggleBoolean(ctx, id, s.table, "onlineStatus")
}

func (s *store) incrementCounter(ctx context.Context, id int64) error {
	return s.db.UpdateCounter(ctx, id, s.table, "counter")
}

// applyPaging sets sort, order, limit and offset, falling back to the given default sort.
func applyPaging(c *criteria.Criteria, sort, order, defaultSort string, defaultOrder criteria.Direction, limit, start int) error {
	if sort == "" {
		sort = defaultSort
		if order == "" {
			order = string(defaultOrder)
		}
	}
	if err := c.SetSort(sort); err != nil {
		return err
	}
	c.SetOrder(order)
	if err := c.SetSecondarySort("id"); err != nil {
		return err
	}
	c.SetSecondaryOrder(string(criteria.Desc))
	if err := c.SetLimit(limit); err != nil {
		return err
	}
	return c.SetOffset(start)
}
