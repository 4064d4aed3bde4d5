package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/tuskfish/internal/config"
	"github.com/localnerve/tuskfish/internal/database"
	"github.com/localnerve/tuskfish/internal/handlers"
	"github.com/localnerve/tuskfish/internal/middleware"
	"github.com/localnerve/tuskfish/internal/models"
	"github.com/localnerve/tuskfish/internal/router"
	"github.com/localnerve/tuskfish/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "s3cret-admin-key"

// setupTestApp wires the front controller over a sqlite database in a temp dir.
func setupTestApp(t *testing.T, adminKey string) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		DBType:     "sqlite",
		DBDatabase: filepath.Join(t.TempDir(), "handlers.db"),
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))

	d, err := database.New(db)
	require.NoError(t, err)

	registry := models.NewRegistry()
	links := models.Links{SiteURL: "https://tuskfish.example/"}
	site := &handlers.Site{
		Content:           services.NewContentModel(d, registry, links, 3),
		Experts:           services.NewExpertModel(d, registry, links),
		Registry:          registry,
		PaginationLimit:   10,
		GalleryPagination: 12,
	}

	front := handlers.NewFrontController(router.Default(), adminKey)
	site.Register(front)
	require.Empty(t, front.Missing())

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(middleware.RequestContextMiddleware())
	app.All("/*", front.Handle)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.APIKeyHeader, testAdminKey)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func insertContent(t *testing.T, app *fiber.App, body map[string]any) int64 {
	t.Helper()
	status, out := doRequest(t, app, http.MethodPost, "/admin/content/", body)
	require.Equal(t, http.StatusOK, status, out)
	return int64(out["id"].(float64))
}

func TestAdminInsertThenPublicRead(t *testing.T) {
	app := setupTestApp(t, testAdminKey)

	tagID := insertContent(t, app, map[string]any{
		"type": models.TypeTag, "title": "Marine", "language": "en", "onlineStatus": 1,
	})
	articleID := insertContent(t, app, map[string]any{
		"type": models.TypeArticle, "title": "Dugong survey", "language": "en",
		"date": "2026-03-01", "onlineStatus": 1,
		"tags": []any{tagID, strconv.FormatInt(tagID, 10)},
	})

	status, out := doRequest(t, app, http.MethodGet, "/?id="+strconv.FormatInt(articleID, 10), nil)
	require.Equal(t, http.StatusOK, status, out)
	item := out["item"].(map[string]any)
	assert.Equal(t, "Dugong survey", item["title"])
	assert.Equal(t, []any{float64(tagID)}, out["tagIds"])

	status, out = doRequest(t, app, http.MethodGet, "/?tag="+strconv.FormatInt(tagID, 10), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), out["total"])

	// the view above was counted
	status, out = doRequest(t, app, http.MethodGet, "/admin/content/?id="+strconv.FormatInt(articleID, 10), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), out["item"].(map[string]any)["counter"])
}

func TestPublicHidesOfflineContent(t *testing.T) {
	app := setupTestApp(t, testAdminKey)

	id := insertContent(t, app, map[string]any{
		"type": models.TypeArticle, "title": "Draft", "language": "en", "onlineStatus": 0,
	})

	status, _ := doRequest(t, app, http.MethodGet, "/?id="+strconv.FormatInt(id, 10), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, out := doRequest(t, app, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), out["total"])

	status, _ = doRequest(t, app, http.MethodPatch, "/admin/content/?id="+strconv.FormatInt(id, 10), nil)
	require.Equal(t, http.StatusOK, status)

	status, out = doRequest(t, app, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), out["total"])
}

func TestUnknownPathServesErrorRoute(t *testing.T) {
	app := setupTestApp(t, testAdminKey)

	status, out := doRequest(t, app, http.MethodGet, "/no/such/page", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, out["ok"])
}

func TestBadQueryParameter(t *testing.T) {
	app := setupTestApp(t, testAdminKey)

	status, out := doRequest(t, app, http.MethodGet, "/?start=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status, out)

	status, _ = doRequest(t, app, http.MethodGet, "/?sort=title;drop", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodGet, "/?sort=nosuchcolumn", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminRequiresKey(t *testing.T) {
	app := setupTestApp(t, testAdminKey)

	req := httptest.NewRequest(http.MethodGet, "/admin/content/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/admin/content/", nil)
	req.Header.Set(middleware.APIKeyHeader, "wrong")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	disabled := setupTestApp(t, "")
	status, _ := doRequest(t, disabled, http.MethodGet, "/admin/content/", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAdminDeleteRemovesItem(t *testing.T) {
	app := setupTestApp(t, testAdminKey)

	id := insertContent(t, app, map[string]any{
		"type": models.TypeArticle, "title": "Short lived", "language": "en", "onlineStatus": 1,
	})
	target := "/admin/content/?id=" + strconv.FormatInt(id, 10)

	status, _ := doRequest(t, app, http.MethodDelete, target, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, app, http.MethodGet, target, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doRequest(t, app, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doRequest(t, app, http.MethodDelete, "/admin/content/", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminRejectsInvalidEntity(t *testing.T) {
	app := setupTestApp(t, testAdminKey)

	status, _ := doRequest(t, app, http.MethodPost, "/admin/content/", map[string]any{
		"type": "TfNope", "title": "x",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodPost, "/admin/content/", map[string]any{
		"type": models.TypeArticle, "title": "Bad date", "language": "en", "date": "01/02/2026",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodPost, "/admin/content/", map[string]any{
		"type": models.TypeExpert, "lastName": "Wrong place", "language": "en",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSearchAndEnclosure(t *testing.T) {
	app := setupTestApp(t, testAdminKey)

	insertContent(t, app, map[string]any{
		"type": models.TypeArticle, "title": "Seagrass meadows", "language": "en", "onlineStatus": 1,
	})
	downloadID := insertContent(t, app, map[string]any{
		"type": models.TypeDownload, "title": "Seagrass report", "language": "en", "onlineStatus": 1,
		"media": "report.pdf", "format": "application/pdf", "fileSize": 2048,
	})

	status, out := doRequest(t, app, http.MethodGet, "/search/?searchTerms=seagrass", nil)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, float64(2), out["total"])

	status, out = doRequest(t, app, http.MethodGet, "/search/", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), out["total"])

	status, out = doRequest(t, app, http.MethodGet, "/enclosure/?id="+strconv.FormatInt(downloadID, 10), nil)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "report.pdf", out["media"])
	assert.Equal(t, float64(1), out["counter"])

	status, _ = doRequest(t, app, http.MethodPost, "/search/", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestExpertsDirectory(t *testing.T) {
	app := setupTestApp(t, testAdminKey)

	status, out := doRequest(t, app, http.MethodPost, "/admin/experts/", map[string]any{
		"firstName": "Ada", "lastName": "Lovelace", "language": "en", "onlineStatus": 1,
	})
	require.Equal(t, http.StatusOK, status, out)
	id := int64(out["id"].(float64))

	status, out = doRequest(t, app, http.MethodGet, "/experts/?initial=L", nil)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, float64(1), out["total"])

	status, out = doRequest(t, app, http.MethodGet, "/experts/?id="+strconv.FormatInt(id, 10), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Lovelace", out["item"].(map[string]any)["lastName"])
}

func TestRequestIDHeader(t *testing.T) {
	app := setupTestApp(t, testAdminKey)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "7b6d1c2e-0f53-4c1a-9a54-1f0d3b2c4e5f")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "7b6d1c2e-0f53-4c1a-9a54-1f0d3b2c4e5f", resp.Header.Get(middleware.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "not-a-uuid")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(middleware.RequestIDHeader))
	assert.Len(t, resp.Header.Get(middleware.RequestIDHeader), 36)
}
