package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchAdminContent(t *testing.T) {
	r := Default()

	route, matched := r.Match("/admin/content/")
	assert.True(t, matched)
	assert.Equal(t, AdminContentController, route.Controller)
	assert.True(t, route.AuthRequired)
}

func TestMatchFallsBackToError(t *testing.T) {
	r := Default()

	route, matched := r.Match("/nonexistent/")
	assert.False(t, matched)
	assert.Equal(t, ErrorController, route.Controller)
	assert.Equal(t, r.ErrorRoute(), route)

	_, err := r.Lookup("/nonexistent/")
	assert.ErrorIs(t, err, ErrNoSuchRoute)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"search", "/search/"},
		{"/search", "/search/"},
		{"/search/", "/search/"},
		{"//admin//content", "/admin/content/"},
		{"/gallery/?tag=3", "/gallery/"},
		{"/admin/../experts/", "/experts/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestLookupIsLiteral(t *testing.T) {
	r := Default()

	route, err := r.Lookup("/search")
	require.NoError(t, err)
	assert.Equal(t, SearchController, route.Controller)
	assert.False(t, route.AuthRequired)

	_, err = r.Lookup("/search/extra/")
	assert.ErrorIs(t, err, ErrNoSuchRoute)

	_, err = r.Lookup("/SEARCH/")
	assert.ErrorIs(t, err, ErrNoSuchRoute)
}

func TestNewRequiresErrorRoute(t *testing.T) {
	_, err := New(map[string]Route{"/": {Controller: ContentController}}, "/error/")
	assert.Error(t, err)

	_, err = New(map[string]Route{"/": {}}, "/")
	assert.Error(t, err)

	r, err := New(map[string]Route{"home": {Controller: ContentController}}, "home")
	require.NoError(t, err)
	assert.Equal(t, []string{"/home/"}, r.Paths())
}

func TestDefaultRoutesCopy(t *testing.T) {
	routes := DefaultRoutes()
	delete(routes, "/")

	_, err := Default().Lookup("/")
	assert.NoError(t, err)
	assert.Contains(t, Default().Paths(), "/admin/experts/")
}
