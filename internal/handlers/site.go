// site.go
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
	"github.com/localnerve/tuskfish/internal/router"
	"github.com/localnerve/tuskfish/internal/services"
	"github.com/localnerve/tuskfish/internal/utils"
)

// Site holds the models and paging sizes behind the public and admin controllers.
type Site struct {
	Content           *services.ContentModel
	Experts           *services.ExpertModel
	Registry          *models.Registry
	PaginationLimit   int
	GalleryPagination int
}

// Register binds every controller named in the default route table.
func (s *Site) Register(f *FrontController) {
	f.Register(router.ContentController, s.content)
	f.Register(router.GalleryController, s.gallery)
	f.Register(router.SearchController, s.search)
	f.Register(router.ExpertsController, s.experts)
	f.Register(router.EnclosureController, s.enclosure)
	f.Register(router.AdminContentController, s.adminContent)
	f.Register(router.AdminExpertsController, s.adminExperts)
	f.Register(router.ErrorController, s.notFound)
}

var onlineOnly = int64(1)

// content serves one online item (counting the view) or the newest online content.
func (s *Site) content(c *fiber.Ctx, rc *middleware.RequestContext) error {
	if err := allowMethods(c, fiber.MethodGet, fiber.MethodHead); err != nil {
		return err
	}
	p := rc.Params

	if p.ID > 0 {
		entity, err := s.Content.Get(c.UserContext(), p.ID, true)
		if err != nil {
			return toCustomError(err)
		}
		if err := s.Content.IncrementCounter(c.UserContext(), p.ID); err != nil {
			logging.Warn().Err(err).Int64("id", p.ID).Msg("View counter not updated")
		}
		tagIDs, err := services.GetTagIDs(c.UserContext(), s.Content.DB(), p.ID, models.ModuleContent)
		if err != nil {
			return toCustomError(err)
		}
		return itemResponse(c, entity, tagIDs)
	}

	params := services.ListParams{
		Start:        p.Start,
		Limit:        s.PaginationLimit,
		Tag:          p.Tag,
		Type:         p.Type,
		OnlineStatus: &onlineOnly,
		Sort:         p.Sort,
		Order:        p.Order,
	}
	if p.Type == "" {
		params.ExcludeTypes = []string{models.TypeTag, models.TypeStatic}
	}
	items, total, err := s.Content.List(c.UserContext(), params)
	if err != nil {
		return toCustomError(err)
	}
	return utils.ListResponse(c, items, total, p.Start, s.PaginationLimit)
}

// gallery lists online images.
func (s *Site) gallery(c *fiber.Ctx, rc *middleware.RequestContext) error {
	if err := allowMethods(c, fiber.MethodGet, fiber.MethodHead); err != nil {
		return err
	}
	p := rc.Params
	items, total, err := s.Content.List(c.UserContext(), services.ListParams{
		Start:        p.Start,
		Limit:        s.GalleryPagination,
		Tag:          p.Tag,
		Type:         models.TypeImage,
		OnlineStatus: &onlineOnly,
	})
	if err != nil {
		return toCustomError(err)
	}
	return utils.ListResponse(c, items, total, p.Start, s.GalleryPagination)
}

// search runs a free text search over online content. No terms yields an empty page.
func (s *Site) search(c *fiber.Ctx, rc *middleware.RequestContext) error {
	if err := allowMethods(c, fiber.MethodGet, fiber.MethodHead); err != nil {
		return err
	}
	p := rc.Params
	if p.Terms == "" {
		return utils.ListResponse(c, []models.Entity{}, 0, 0, s.PaginationLimit)
	}
	items, total, err := s.Content.Search(c.UserContext(), services.SearchParams{
		Terms:      p.Terms,
		Mode:       p.Mode,
		Start:      p.Start,
		Limit:      s.PaginationLimit,
		OnlineOnly: true,
	})
	if err != nil {
		return toCustomError(err)
	}
	return utils.ListResponse(c, items, total, p.Start, s.PaginationLimit)
}

// experts serves one online expert or the directory filtered by tag, country or initial.
func (s *Site) experts(c *fiber.Ctx, rc *middleware.RequestContext) error {
	if err := allowMethods(c, fiber.MethodGet, fiber.MethodHead); err != nil {
		return err
	}
	p := rc.Params

	if p.ID > 0 {
		entity, err := s.Experts.Get(c.UserContext(), p.ID, true)
		if err != nil {
			return toCustomError(err)
		}
		tagIDs, err := services.GetTagIDs(c.UserContext(), s.Experts.DB(), p.ID, models.ModuleExperts)
		if err != nil {
			return toCustomError(err)
		}
		return itemResponse(c, entity, tagIDs)
	}

	items, total, err := s.Experts.List(c.UserContext(), services.ExpertListParams{
		Start:        p.Start,
		Limit:        s.PaginationLimit,
		Tag:          p.Tag,
		Country:      p.Country,
		Initial:      p.Initial,
		OnlineStatus: &onlineOnly,
	})
	if err != nil {
		return toCustomError(err)
	}
	return utils.ListResponse(c, items, total, p.Start, s.PaginationLimit)
}

// enclosure counts a download of an online item's media and describes the file.
func (s *Site) enclosure(c *fiber.Ctx, rc *middleware.RequestContext) error {
	if err := allowMethods(c, fiber.MethodGet); err != nil {
		return err
	}
	id := rc.Params.ID
	if err := requireID(id); err != nil {
		return err
	}

	entity, err := s.Content.Get(c.UserContext(), id, true)
	if err != nil {
		return toCustomError(err)
	}
	content, ok := asContent(entity)
	if !ok || content.Media == "" {
		return notFoundError("No enclosure for this item")
	}
	if err := s.Content.IncrementCounter(c.UserContext(), id); err != nil {
		return toCustomError(err)
	}

	return utils.SuccessResponse(c, fiber.Map{
		"ok":       true,
		"id":       content.ID,
		"media":    content.Media,
		"format":   content.Format,
		"fileSize": content.FileSize,
		"counter":  content.Counter + 1,
	}, fiber.StatusOK)
}

// notFound is the error route.
func (s *Site) notFound(c *fiber.Ctx, rc *middleware.RequestContext) error {
	return utils.NotFoundResponse(c, "No page at "+rc.Path)
}
