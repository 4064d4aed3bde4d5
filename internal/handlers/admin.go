// admin.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tuskfish/internal/logging"
	"github.com/localnerve/tuskfish/internal/middleware"
	"github.com/localnerve/tuskfish/internal/models"
	"github.com/localnerve/tuskfish/internal/services"
	"github.com/localnerve/tuskfish/internal/types"
	"github.com/localnerve/tuskfish/internal/utils"
)

// writeBody is the envelope of an admin write. The entity columns sit beside it in the same document.
type writeBody struct {
	Type string                          `json:"type"`
	Tags types.FlexList[types.FlexInt64] `json:"tags"`
}

func parseWriteBody(c *fiber.Ctx) (writeBody, error) {
	var body writeBody
	if err := c.BodyParser(&body); err != nil {
		return body, types.BadRequest("request.body", "invalid JSON body: %v", err)
	}
	return body, nil
}

func decodeEntity(c *fiber.Ctx, entity models.Entity) error {
	if err := c.App().Config().JSONDecoder(c.Body(), entity); err != nil {
		return types.BadRequest("request.body", "invalid JSON body: %v", err)
	}
	return nil
}

// adminContent manages content. GET lists or reads any item, POST inserts (no id) or updates,
// PATCH toggles the online status and DELETE removes the item.
func (s *Site) adminContent(c *fiber.Ctx, rc *middleware.RequestContext) error {
	if err := allowMethods(c, fiber.MethodGet, fiber.MethodPost, fiber.MethodPatch, fiber.MethodDelete); err != nil {
		return err
	}
	ctx := c.UserContext()
	p := rc.Params

	switch c.Method() {
	case fiber.MethodPost:
		body, err := parseWriteBody(c)
		if err != nil {
			return err
		}
		entity, err := s.Registry.New(body.Type)
		if err != nil {
			return toCustomError(err)
		}
		if _, ok := asContent(entity); !ok {
			return types.BadRequest("request.body", "%s is not a content type", body.Type)
		}
		if err := decodeEntity(c, entity); err != nil {
			return err
		}
		tagIDs := types.Int64s(body.Tags.Slice())

		if id := entity.Key(); id > 0 {
			if err := s.Content.Update(ctx, entity, tagIDs); err != nil {
				return toCustomError(err)
			}
			logging.Info().Str("request_id", rc.RequestID).Int64("id", id).Msg("Content updated")
			return utils.MutationSuccessResponse(c, id, 1)
		}
		id, err := s.Content.Insert(ctx, entity, tagIDs)
		if err != nil {
			return toCustomError(err)
		}
		logging.Info().Str("request_id", rc.RequestID).Int64("id", id).Str("type", body.Type).Msg("Content inserted")
		return utils.MutationSuccessResponse(c, id, 1)

	case fiber.MethodPatch:
		if err := requireID(p.ID); err != nil {
			return err
		}
		if err := s.Content.Toggle(ctx, p.ID); err != nil {
			return toCustomError(err)
		}
		return utils.MutationSuccessResponse(c, p.ID, 1)

	case fiber.MethodDelete:
		if err := requireID(p.ID); err != nil {
			return err
		}
		if err := s.Content.Delete(ctx, p.ID); err != nil {
			return toCustomError(err)
		}
		logging.Info().Str("request_id", rc.RequestID).Int64("id", p.ID).Msg("Content deleted")
		return utils.MutationSuccessResponse(c, p.ID, 1)
	}

	if p.ID > 0 {
		entity, err := s.Content.Get(ctx, p.ID, false)
		if err != nil {
			return toCustomError(err)
		}
		tagIDs, err := services.GetTagIDs(ctx, s.Content.DB(), p.ID, models.ModuleContent)
		if err != nil {
			return toCustomError(err)
		}
		return itemResponse(c, entity, tagIDs)
	}

	items, total, err := s.Content.List(ctx, services.ListParams{
		Start:        p.Start,
		Limit:        s.PaginationLimit,
		Tag:          p.Tag,
		Type:         p.Type,
		OnlineStatus: p.OnlineStatus,
		Sort:         p.Sort,
		Order:        p.Order,
	})
	if err != nil {
		return toCustomError(err)
	}
	return utils.ListResponse(c, items, total, p.Start, s.PaginationLimit)
}

// adminExperts manages the experts directory with the same verbs as adminContent.
func (s *Site) adminExperts(c *fiber.Ctx, rc *middleware.RequestContext) error {
	if err := allowMethods(c, fiber.MethodGet, fiber.MethodPost, fiber.MethodPatch, fiber.MethodDelete); err != nil {
		return err
	}
	ctx := c.UserContext()
	p := rc.Params

	switch c.Method() {
	case fiber.MethodPost:
		body, err := parseWriteBody(c)
		if err != nil {
			return err
		}
		expert := models.NewExpert()
		if err := decodeEntity(c, expert); err != nil {
			return err
		}
		tagIDs := types.Int64s(body.Tags.Slice())
		if expert.ID > 0 {
			if err := s.Experts.Update(ctx, expert, tagIDs); err != nil {
				return toCustomError(err)
			}
			return utils.MutationSuccessResponse(c, expert.ID, 1)
		}
		id, err := s.Experts.Insert(ctx, expert, tagIDs)
		if err != nil {
			return toCustomError(err)
		}
		logging.Info().Str("request_id", rc.RequestID).Int64("id", id).Msg("Expert inserted")
		return utils.MutationSuccessResponse(c, id, 1)

	case fiber.MethodPatch:
		if err := requireID(p.ID); err != nil {
			return err
		}
		if err := s.Experts.Toggle(ctx, p.ID); err != nil {
			return toCustomError(err)
		}
		return utils.MutationSuccessResponse(c, p.ID, 1)

	case fiber.MethodDelete:
		if err := requireID(p.ID); err != nil {
			return err
		}
		if err := s.Experts.Delete(ctx, p.ID); err != nil {
			return toCustomError(err)
		}
		return utils.MutationSuccessResponse(c, p.ID, 1)
	}

	if p.ID > 0 {
		entity, err := s.Experts.Get(ctx, p.ID, false)
		if err != nil {
			return toCustomError(err)
		}
		tagIDs, err := services.GetTagIDs(ctx, s.Experts.DB(), p.ID, models.ModuleExperts)
		if err != nil {
			return toCustomError(err)
		}
		return itemResponse(c, entity, tagIDs)
	}

	items, total, err := s.Experts.List(ctx, services.ExpertListParams{
		Start:        p.Start,
		Limit:        s.PaginationLimit,
		Tag:          p.Tag,
		Country:      p.Country,
		Initial:      p.Initial,
		OnlineStatus: p.OnlineStatus,
		Sort:         p.Sort,
		Order:        p.Order,
	})
	if err != nil {
		return toCustomError(err)
	}
	return utils.ListResponse(c, items, total, p.Start, s.PaginationLimit)
}
