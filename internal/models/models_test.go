package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLinks = Links{SiteURL: "https://tuskfish.example/"}

func fullContentRow() map[string]any {
	return map[string]any{
		"id":              int64(42),
		"type":            TypeArticle,
		"template":        "article",
		"title":           "Dugong survey",
		"teaser":          `<p>See <a href="TFISH_LINK?id=3">the map</a></p>`,
		"description":     `<img src="TFISH_LINK/uploads/image/dugong.jpg">`,
		"creator":         "Marine Unit",
		"media":           "survey.pdf",
		"externalMedia":   "https://cdn.example/survey.pdf",
		"format":          "application/pdf",
		"fileSize":        int64(20480),
		"image":           "dugong.jpg",
		"caption":         "A dugong",
		"date":            "2026-10-01",
		"parent":          int64(7),
		"language":        "en",
		"rights":          int64(1),
		"publisher":       "Tuskfish",
		"onlineStatus":    int64(1),
		"submissionTime":  int64(1760000000),
		"lastUpdated":     int64(1760000500),
		"expiresOn":       "2027-01-01",
		"counter":         int64(12),
		"minimumViews":    int64(0),
		"inFeed":          int64(1),
		"metaTitle":       "Dugong survey",
		"metaDescription": "Results",
		"metaSeo":         "dugong-survey",
	}
}

func TestContentRoundTrip(t *testing.T) {
	row := fullContentRow()
	registry := NewRegistry()

	entity, err := registry.Hydrate(row, testLinks)
	require.NoError(t, err)

	article, ok := entity.(*Article)
	require.True(t, ok)
	assert.Equal(t, int64(42), article.Key())
	assert.Contains(t, article.Teaser, `href="https://tuskfish.example/?id=3"`)

	persisted := entity.Persistable(testLinks)
	for col, want := range row {
		if col == "id" {
			assert.NotContains(t, persisted, "id")
			continue
		}
		assert.Equal(t, want, persisted[col], col)
	}
}

func TestLoadCoercesDriverValues(t *testing.T) {
	row := fullContentRow()
	row["onlineStatus"] = []byte("1")
	row["counter"] = "12"
	row["title"] = []byte("Dugong survey")

	c := &Content{}
	require.NoError(t, c.Load(row, testLinks))
	assert.Equal(t, int64(1), c.OnlineStatus)
	assert.Equal(t, int64(12), c.Counter)
	assert.Equal(t, "Dugong survey", c.Title)
}

func TestContentValidation(t *testing.T) {
	row := fullContentRow()
	row["onlineStatus"] = int64(2)
	_, err := NewRegistry().Hydrate(row, testLinks)
	assert.ErrorIs(t, err, ErrInvalidField)

	row = fullContentRow()
	row["date"] = "01/10/2026"
	_, err = NewRegistry().Hydrate(row, testLinks)
	assert.ErrorIs(t, err, ErrInvalidField)

	row = fullContentRow()
	row["type"] = TypeTag
	_, err = NewRegistry().Hydrate(row, testLinks)
	assert.ErrorIs(t, err, ErrInvalidField, "tags cannot have a parent")

	row = fullContentRow()
	row["type"] = TypeAudio
	row["format"] = "image/png"
	_, err = NewRegistry().Hydrate(row, testLinks)
	assert.ErrorIs(t, err, ErrInvalidField)

	row["format"] = "audio/mpeg"
	_, err = NewRegistry().Hydrate(row, testLinks)
	assert.NoError(t, err)
}

func TestRegistryUnknownType(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Hydrate(map[string]any{"type": "TfPodcast"}, testLinks)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = registry.Hydrate(map[string]any{"title": "no type"}, testLinks)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = registry.HydrateTable("content", map[string]any{"type": TypeBlockHTML, "title": "block"}, testLinks)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = registry.HydrateTable("content", map[string]any{"type": TypeExpert, "lastName": "Grant"}, testLinks)
	assert.ErrorIs(t, err, ErrUnknownType)

	entity, err := registry.HydrateTable("content", map[string]any{"type": TypeArticle, "title": "ok", "language": "en"}, testLinks)
	require.NoError(t, err)
	assert.IsType(t, &Article{}, entity)

	assert.Contains(t, registry.Types(), TypeExpert)
	assert.Contains(t, registry.Types(), TypeBlockSpotlight)
	for _, kind := range ContentTypes {
		entity, err := registry.New(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, entity.ContentType())
		assert.Equal(t, "content", entity.TableName())
	}
}

func TestExpertRoundTrip(t *testing.T) {
	row := map[string]any{
		"id":           int64(5),
		"type":         TypeExpert,
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"experience":   `<a href="TFISH_LINK">home</a>`,
		"email":        "ada@example.org",
		"language":     "en",
		"onlineStatus": int64(1),
	}
	entity, err := NewRegistry().Hydrate(row, testLinks)
	require.NoError(t, err)

	expert := entity.(*Expert)
	assert.Equal(t, "Ada Lovelace", expert.FullName())
	assert.Equal(t, `<a href="https://tuskfish.example/">home</a>`, expert.Experience)

	persisted := expert.Persistable(testLinks)
	assert.Equal(t, row["experience"], persisted["experience"])
	assert.Equal(t, "Lovelace", persisted["lastName"])

	row["email"] = "not-an-email"
	_, err = NewRegistry().Hydrate(row, testLinks)
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestBlockConfig(t *testing.T) {
	row := map[string]any{
		"id":           int64(1),
		"type":         TypeBlockRecentContent,
		"position":     "sidebar",
		"config":       `{"items":5,"types":["TfArticle"]}`,
		"onlineStatus": int64(1),
	}
	entity, err := NewRegistry().Hydrate(row, testLinks)
	require.NoError(t, err)

	block := entity.(*Block)
	var cfg RecentContentConfig
	require.NoError(t, block.Config.Decode(&cfg))
	assert.Equal(t, 5, cfg.Items)
	assert.Equal(t, row["config"], block.Persistable(testLinks)["config"])

	row["config"] = `{"items":500}`
	_, err = NewRegistry().Hydrate(row, testLinks)
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestUserValidation(t *testing.T) {
	u := &User{}
	err := u.Load(map[string]any{"adminEmail": "admin@example.org", "userGroup": int64(1), "passwordHash": "x"}, testLinks)
	require.NoError(t, err)

	err = u.Load(map[string]any{"yubikeyId": "short"}, testLinks)
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestLinksCompactExpand(t *testing.T) {
	html := `<a href="https://tuskfish.example/?id=1">x</a>`
	compact := testLinks.Compact(html)
	assert.Equal(t, `<a href="TFISH_LINK?id=1">x</a>`, compact)
	assert.Equal(t, html, testLinks.Expand(compact))
	assert.Equal(t, html, Links{}.Compact(html))
}
