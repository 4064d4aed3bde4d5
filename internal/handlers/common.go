// common.go
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
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tuskfish/internal/criteria"
	"github.com/localnerve/tuskfish/internal/database"
	"github.com/localnerve/tuskfish/internal/logging"
	"github.com/localnerve/tuskfish/internal/models"
	"github.com/localnerve/tuskfish/internal/types"
	"github.com/localnerve/tuskfish/internal/utils"
	"github.com/localnerve/tuskfish/internal/validation"
)

// toCustomError maps package sentinels onto the status reported to the client.
// Statement failures are reported without detail.
func toCustomError(err error) *types.CustomError {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return ce
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return &types.CustomError{Code: fe.Code, Message: fe.Message, Type: "http"}
	}

	var ve *validation.RequestValidationError
	switch {
	case errors.Is(err, database.ErrNoRows):
		return notFoundError("Not found")
	case errors.As(err, &ve),
		errors.Is(err, criteria.ErrInvalidArgument),
		errors.Is(err, criteria.ErrInvalidColumn),
		errors.Is(err, database.ErrUnknownColumn),
		errors.Is(err, database.ErrUnknownTable),
		errors.Is(err, models.ErrInvalidField),
		errors.Is(err, models.ErrUnknownType):
		return types.BadRequest("request.invalid", "%v", err)
	}

	return &types.CustomError{Code: fiber.StatusInternalServerError, Message: "Operation failed", Type: "database"}
}

// ErrorHandler is the fiber error handler. Every error leaves as the standard JSON envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	ce := toCustomError(err)
	if ce.Code >= fiber.StatusInternalServerError {
		logging.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}
	if ce.Code == fiber.StatusNotFound {
		return utils.NotFoundResponse(c, ce.Message)
	}
	return utils.ErrorResponse(c, ce.Message, ce.Code, ce.Type)
}

func notFoundError(message string) *types.CustomError {
	return &types.CustomError{Code: fiber.StatusNotFound, Message: message, Type: "notFound"}
}

// allowMethods rejects a request whose method is not listed.
func allowMethods(c *fiber.Ctx, methods ...string) error {
	for _, m := range methods {
		if c.Method() == m {
			return nil
		}
	}
	return &types.CustomError{
		Code:    fiber.StatusMethodNotAllowed,
		Message: "Method " + c.Method() + " not allowed",
		Type:    "http",
	}
}

// requireID returns the id query parameter, which must be present.
func requireID(id int64) error {
	if id < 1 {
		return types.BadRequest("request.params", "a positive id parameter is required")
	}
	return nil
}

// asContent returns the content columns of a content entity.
func asContent(entity models.Entity) (*models.Content, bool) {
	b, ok := entity.(interface{ Base() *models.Content })
	if !ok {
		return nil, false
	}
	return b.Base(), true
}

// itemResponse sends one entity with its tag ids.
func itemResponse(c *fiber.Ctx, entity models.Entity, tagIDs []int64) error {
	return utils.SuccessResponse(c, fiber.Map{
		"ok":     true,
		"item":   entity,
		"tagIds": tagIDs,
	}, fiber.StatusOK)
}
