package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tuskfish/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if ce, ok := err.(*types.CustomError); ok {
				return c.Status(ce.Code).SendString(ce.Type)
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})
	app.Use(RequestContextMiddleware())
	app.All("/*", handler)
	return app
}

func TestRequestContextParsesParams(t *testing.T) {
	var got *RequestContext
	app := newTestApp(func(c *fiber.Ctx) error {
		got = FromContext(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/gallery//?id=7&start=20&tag=3&onlineStatus=0&sort=date&order=asc", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, got)
	assert.Equal(t, "/gallery/", got.Path)
	assert.Equal(t, int64(7), got.Params.ID)
	assert.Equal(t, 20, got.Params.Start)
	assert.Equal(t, int64(3), got.Params.Tag)
	require.NotNil(t, got.Params.OnlineStatus)
	assert.Equal(t, int64(0), *got.Params.OnlineStatus)
	assert.Equal(t, "date", got.Params.Sort)
	assert.Equal(t, "asc", got.Params.Order)
	assert.Len(t, got.RequestID, 36)
}

func TestRequestContextAbsentOnlineStatus(t *testing.T) {
	var got *RequestContext
	app := newTestApp(func(c *fiber.Ctx) error {
		got = FromContext(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, got.Params.OnlineStatus)
	assert.Equal(t, "/", got.Path)
}

func TestRequestContextRejectsBadParams(t *testing.T) {
	called := false
	app := newTestApp(func(c *fiber.Ctx) error {
		called = true
		return c.SendStatus(fiber.StatusOK)
	})

	for _, target := range []string{
		"/?id=seven",
		"/?id=-1",
		"/?onlineStatus=2",
		"/?order=sideways",
		"/?type=Tf%20Article",
		"/?searchType=NEAR",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
	assert.False(t, called)
}

func TestRequireAPIKey(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if ce, ok := err.(*types.CustomError); ok {
				return c.SendStatus(ce.Code)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Get("/open", RequireAPIKey("k3y"), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/closed", RequireAPIKey(""), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	tests := []struct {
		name   string
		path   string
		key    string
		status int
	}{
		{"matching key", "/open", "k3y", fiber.StatusOK},
		{"wrong key", "/open", "k3y!", fiber.StatusUnauthorized},
		{"missing key", "/open", "", fiber.StatusUnauthorized},
		{"admin disabled", "/closed", "", fiber.StatusForbidden},
		{"admin disabled ignores key", "/closed", "anything", fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
