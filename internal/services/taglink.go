// taglink.go
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

	"github.com/localnerve/tuskfish/internal/criteria"
	"github.com/localnerve/tuskfish/internal/database"
)

const taglinkTable = "taglink"

// TaglinkOwner identifies the item whose tag set is saved. (ContentID, Language, Module) is the
// replace key; ContentType is stored for filtering only.
type TaglinkOwner struct {
	ContentID   int64
	ContentType string
	Language    string
	Module      string
}

func (o TaglinkOwner) check() (TaglinkOwner, error) {
	if o.ContentID < 1 {
		return o, fmt.Errorf("%w: content id %d", criteria.ErrInvalidArgument, o.ContentID)
	}
	if o.ContentType == "" || !criteria.ValidIdentifier(o.ContentType) {
		return o, fmt.Errorf("%w: content type %q", criteria.ErrInvalidArgument, o.ContentType)
	}
	if !criteria.ValidIdentifier(o.Module) {
		return o, fmt.Errorf("%w: module %q", criteria.ErrInvalidArgument, o.Module)
	}
	if o.Language == "" {
		o.Language = "en"
	}
	return o, nil
}

// uniqueTagIDs drops duplicates, keeping first-seen order. Ids below 1 are rejected.
func uniqueTagIDs(tagIDs []int64) ([]int64, error) {
	seen := make(map[int64]struct{}, len(tagIDs))
	out := make([]int64, 0, len(tagIDs))
	for _, id := range tagIDs {
		if id < 1 {
			return nil, fmt.Errorf("%w: tag id %d", criteria.ErrInvalidArgument, id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func insertTaglinks(ctx context.Context, tx *database.Database, owner TaglinkOwner, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		_, err := tx.Insert(ctx, taglinkTable, map[string]any{
			"tagId":       tagID,
			"contentType": owner.ContentType,
			"contentId":   owner.ContentID,
			"language":    owner.Language,
			"module":      owner.Module,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveTaglinks inserts one taglink per tag for a newly created item. All rows are written or none are.
func SaveTaglinks(ctx context.Context, db *database.Database, owner TaglinkOwner, tagIDs []int64) error {
	owner, err := owner.check()
	if err != nil {
		return err
	}
	tags, err := uniqueTagIDs(tagIDs)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	return db.ExecuteTransaction(ctx, func(tx *database.Database) error {
		return insertTaglinks(ctx, tx, owner, tags)
	})
}

// UpdateTaglinks replaces the tag set of (ContentID, Language, Module) with tagIDs.
// The delete and the inserts run in one transaction, so calling it repeatedly never duplicates rows.
func UpdateTaglinks(ctx context.Context, db *database.Database, owner TaglinkOwner, tagIDs []int64) error {
	owner, err := owner.check()
	if err != nil {
		return err
	}
	tags, err := uniqueTagIDs(tagIDs)
	if err != nil {
		return err
	}

	c, err := ownerCriteria(owner.ContentID, owner.Module)
	if err != nil {
		return err
	}
	lang, err := criteria.Eq("language", owner.Language)
	if err != nil {
		return err
	}
	c.Add(lang)

	return db.ExecuteTransaction(ctx, func(tx *database.Database) error {
		if _, err := tx.DeleteAll(ctx, taglinkTable, c); err != nil {
			return err
		}
		return insertTaglinks(ctx, tx, owner, tags)
	})
}

// DeleteTaglinks removes every taglink of the item in module, across all languages.
func DeleteTaglinks(ctx context.Context, db *database.Database, contentID int64, module string) error {
	c, err := ownerCriteria(contentID, module)
	if err != nil {
		return err
	}
	_, err = db.DeleteAll(ctx, taglinkTable, c)
	return err
}

// DeleteTagReferences removes every taglink pointing at tagID, used when the tag itself is deleted.
func DeleteTagReferences(ctx context.Context, db *database.Database, tagID int64) error {
	item, err := criteria.Eq("tagId", tagID)
	if err != nil {
		return err
	}
	c := criteria.New()
	c.Add(item)
	_, err = db.DeleteAll(ctx, taglinkTable, c)
	return err
}

// GetTagIDs returns the distinct tag ids linked to the item in module, ascending.
func GetTagIDs(ctx context.Context, db *database.Database, contentID int64, module string) ([]int64, error) {
	c, err := ownerCriteria(contentID, module)
	if err != nil {
		return nil, err
	}
	if err := c.SetSort("tagId"); err != nil {
		return nil, err
	}
	c.SetOrder(string(criteria.Asc))

	result, err := db.SelectDistinct(ctx, taglinkTable, c, []string{"tagId"})
	if err != nil {
		return nil, err
	}
	ids, err := result.Int64Column()
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func ownerCriteria(contentID int64, module string) (*criteria.Criteria, error) {
	if contentID < 1 {
		return nil, fmt.Errorf("%w: content id %d", criteria.ErrInvalidArgument, contentID)
	}
	if !criteria.ValidIdentifier(module) {
		return nil, fmt.Errorf("%w: module %q", criteria.ErrInvalidArgument, module)
	}
	id, err := criteria.Eq("contentId", contentID)
	if err != nil {
		return nil, err
	}
	mod, err := criteria.Eq("module", module)
	if err != nil {
		return nil, err
	}
	c := criteria.New()
	c.Add(id)
	c.Add(mod)
	return c, nil
}
