// auth.go
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

package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tuskfish/internal/types"
)

// APIKeyHeader carries the admin API key.
const APIKeyHeader = "X-API-KEY"

// RequireAPIKey rejects requests that do not present the admin API key
func RequireAPIKey(adminKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := CheckAPIKey(c, adminKey); err != nil {
			return err
		}
		return c.Next()
	}
}

// CheckAPIKey performs the authorization check. With no admin key configured every request is refused.
func CheckAPIKey(c *fiber.Ctx, adminKey string) error {
	if adminKey == "" {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: "Administration is disabled, ADMIN_API_KEY is not set",
			Type:    "authorization.admin",
		}
	}

	presented := c.Get(APIKeyHeader)
	if presented == "" {
		return types.Unauthorized("authorization.admin", "API key header \"X-API-KEY\" not found")
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(adminKey)) != 1 {
		return types.Unauthorized("authorization.admin", "Invalid API key")
	}
	return nil
}
