package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/localnerve/tuskfish/internal/logging"
	"github.com/localnerve/tuskfish/internal/router"
	"github.com/localnerve/tuskfish/internal/types"
	"github.com/localnerve/tuskfish/internal/validation"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestContextKey = "requestContext"

// Params are the typed query string parameters a controller may read.
type Params struct {
	ID           int64  `query:"id" validate:"min=0"`
	Start        int    `query:"start" validate:"min=0"`
	Tag          int64  `query:"tag" validate:"min=0"`
	Type         string `query:"type" validate:"omitempty,identifier"`
	Sort         string `query:"sort" validate:"omitempty,identifier"`
	Order        string `query:"order" validate:"omitempty,oneof=asc desc ASC DESC"`
	OnlineStatus *int64 `query:"onlineStatus" validate:"omitempty,boolint"`
	Terms        string `query:"searchTerms" validate:"max=255"`
	Mode         string `query:"searchType" validate:"omitempty,oneof=AND OR exact"`
	Country      int64  `query:"country" validate:"min=0"`
	Initial      string `query:"initial" validate:"omitempty,len=1,alpha"`
}

// RequestContext is the parsed, validated request state handed to controllers.
type RequestContext struct {
	RequestID string
	Path      string
	Method    string
	Params    Params
}

// RequestContextMiddleware parses the query string into a RequestContext stored in the fiber locals,
// assigns a request id and logs the request when it completes.
func RequestContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)

		rc := &RequestContext{
			RequestID: requestID,
			Path:      router.Normalize(c.Path()),
			Method:    c.Method(),
		}
		c.Locals(requestContextKey, rc)

		err := parseParams(c, &rc.Params)
		if err == nil {
			err = c.Next()
		}

		status := c.Response().StatusCode()
		if ce, ok := err.(*types.CustomError); ok {
			status = ce.Code
		} else if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		logging.Info().
			Str("request_id", requestID).
			Str("method", rc.Method).
			Str("path", rc.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("Request")

		return err
	}
}

func parseParams(c *fiber.Ctx, p *Params) error {
	if err := c.QueryParser(p); err != nil {
		return types.BadRequest("request.params", "invalid query parameters: %v", err)
	}
	if err := validation.ValidateStruct(p); err != nil {
		return types.BadRequest("request.params", "%v", err)
	}
	return nil
}

// FromContext returns the RequestContext stored by RequestContextMiddleware, or nil.
func FromContext(c *fiber.Ctx) *RequestContext {
	rc, _ := c.Locals(requestContextKey).(*RequestContext)
	return rc
}
