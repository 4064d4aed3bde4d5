// front_controller.go
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
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tuskfish/internal/logging"
	"github.com/localnerve/tuskfish/internal/metrics"
	"github.com/localnerve/tuskfish/internal/middleware"
	"github.com/localnerve/tuskfish/internal/router"
	"github.com/localnerve/tuskfish/internal/types"
)

// Controller serves the request for one route.
type Controller func(c *fiber.Ctx, rc *middleware.RequestContext) error

// FrontController is the single entry point for every site path. It resolves the route,
// enforces admin authorization and dispatches to the controller named by the route.
type FrontController struct {
	router      *router.Router
	adminKey    string
	controllers map[string]Controller
}

// NewFrontController creates a front controller over rt. adminKey guards AuthRequired routes.
func NewFrontController(rt *router.Router, adminKey string) *FrontController {
	return &FrontController{
		router:      rt,
		adminKey:    adminKey,
		controllers: make(map[string]Controller),
	}
}

// Register binds a controller name to its implementation.
func (f *FrontController) Register(name string, ctrl Controller) {
	f.controllers[name] = ctrl
}

// Missing returns the controller names the route table uses that have no registered controller.
func (f *FrontController) Missing() []string {
	seen := make(map[string]struct{})
	var missing []string
	for _, p := range f.router.Paths() {
		route, _ := f.router.Match(p)
		if _, ok := f.controllers[route.Controller]; ok {
			continue
		}
		if _, dup := seen[route.Controller]; !dup {
			seen[route.Controller] = struct{}{}
			missing = append(missing, route.Controller)
		}
	}
	sort.Strings(missing)
	return missing
}

// Handle dispatches the request. Mount it on every path after middleware.RequestContextMiddleware.
func (f *FrontController) Handle(c *fiber.Ctx) error {
	rc := middleware.FromContext(c)
	if rc == nil {
		return &types.CustomError{Code: fiber.StatusInternalServerError, Message: "Request context missing", Type: "internal"}
	}

	route, matched := f.router.Match(rc.Path)
	if !matched {
		logging.Debug().Str("path", rc.Path).Msg("No route, serving error route")
	}

	if route.AuthRequired {
		if err := middleware.CheckAPIKey(c, f.adminKey); err != nil {
			logging.Warn().Str("request_id", rc.RequestID).Str("path", rc.Path).Msg("Admin request refused")
			return err
		}
	}

	ctrl, ok := f.controllers[route.Controller]
	if !ok {
		logging.Error().Str("controller", route.Controller).Str("path", rc.Path).Msg("No controller registered")
		return &types.CustomError{Code: fiber.StatusInternalServerError, Message: "Route has no controller", Type: "internal"}
	}

	metrics.RecordDispatch(route.Controller)
	return ctrl(c, rc)
}
