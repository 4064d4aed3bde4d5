// expert.go
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
	"github.com/localnerve/tuskfish/internal/models"
	"github.com/localnerve/tuskfish/internal/validation"
)

const expertTable = "expert"

// ExpertListParams are the cleaned query parameters of an experts listing.
type ExpertListParams struct {
	Start        int    `validate:"min=0"`
	Limit        int    `validate:"min=0"`
	Tag          int64  `validate:"min=0"`
	Country      int64  `validate:"min=0"`
	Initial      string `validate:"omitempty,len=1,alpha"`
	OnlineStatus *int64 `validate:"omitempty,boolint"`
	Sort         string `validate:"omitempty,identifier"`
	Order        string `validate:"omitempty,oneof=asc desc ASC DESC"`
}

// ExpertModel manages the experts directory.
type ExpertModel struct {
	store
}

// NewExpertModel creates an expert model.
func NewExpertModel(db *database.Database, registry *models.Registry, links models.Links) *ExpertModel {
	return &ExpertModel{store: newStore(db, registry, links, expertTable, models.ModuleExperts)}
}

// Criteria turns list parameters into a criteria. Default sort is by last name.
func (m *ExpertModel) Criteria(p ExpertListParams) (*criteria.Criteria, error) {
	if err := validation.ValidateStruct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", criteria.ErrInvalidArgument, err)
	}

	c := criteria.New()
	var conditions []*criteria.Item
	if p.Country > 0 {
		item, err := criteria.Eq("country", p.Country)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, item)
	}
	if p.Initial != "" {
		item, err := criteria.NewItem("lastName", p.Initial+"%", criteria.OpLike)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, item)
	}
	if p.OnlineStatus != nil {
		item, err := criteria.Eq("onlineStatus", *p.OnlineStatus)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, item)
	}
	for _, item := range conditions {
		c.Add(item)
	}

	if p.Tag > 0 {
		if err := c.SetTag([]int64{p.Tag}); err != nil {
			return nil, err
		}
		c.SetTagModule(models.ModuleExperts)
	}

	order := p.Order
	if p.Sort == "" && order == "" {
		order = string(criteria.Asc)
	}
	if err := applyPaging(c, p.Sort, order, "lastName", criteria.Asc, p.Limit, p.Start); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns one page of experts and the total number of matching rows.
func (m *ExpertModel) List(ctx context.Context, p ExpertListParams) ([]models.Entity, int64, error) {
	c, err := m.Criteria(p)
	if err != nil {
		return nil, 0, err
	}
	return m.list(ctx, c)
}

// Get returns one expert.
func (m *ExpertModel) Get(ctx context.Context, id int64, onlineOnly bool) (models.Entity, error) {
	return m.get(ctx, id, onlineOnly)
}

// Insert stores a new expert with tags and returns the new id.
func (m *ExpertModel) Insert(ctx context.Context, expert *models.Expert, tagIDs []int64) (int64, error) {
	return m.insert(ctx, expert, tagIDs)
}

// Update rewrites an expert and replaces their tags.
func (m *ExpertModel) Update(ctx context.Context, expert *models.Expert, tagIDs []int64) error {
	return m.update(ctx, expert, tagIDs)
}

// Delete removes an expert and their taglinks.
func (m *ExpertModel) Delete(ctx context.Context, id int64) error {
	return m.remove(ctx, id, nil)
}

// Toggle flips the online status.
func (m *ExpertModel) Toggle(ctx context.Context, id int64) error {
	return m.toggle(ctx, id)
}
