// Package router resolves a request path to the static route bundle that handles it.
//
// The table is a literal path => Route mapping. There are no path parameters; controllers
// disambiguate with query string parameters.
package router

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

// ErrNoSuchRoute is returned by Lookup for a path outside the table.
var ErrNoSuchRoute = errors.New("no such route")

// Controller names, the keys of the front controller registry.
const (
	ContentController      = "ContentController"
	GalleryController      = "GalleryController"
	SearchController       = "SearchController"
	ExpertsController      = "ExpertsController"
	EnclosureController    = "EnclosureController"
	AdminContentController = "AdminContentController"
	AdminExpertsController = "AdminExpertsController"
	ErrorController        = "ErrorController"
)

// DefaultErrorPath is the fallback route for unmatched paths.
const DefaultErrorPath = "/error/"

// Route names the four collaborators that serve a path.
type Route struct {
	Model        string `json:"model"`
	ViewModel    string `json:"viewModel"`
	View         string `json:"view"`
	Controller   string `json:"controller"`
	AuthRequired bool   `json:"authRequired"`
}

// Router is an immutable route table with an error fallback.
type Router struct {
	routes    map[string]Route
	errorPath string
}

// New builds a router. Every path is normalized; errorPath must be in the table.
func New(routes map[string]Route, errorPath string) (*Router, error) {
	table := make(map[string]Route, len(routes))
	for p, route := range routes {
		if route.Controller == "" {
			return nil, fmt.Errorf("route %q has no controller", p)
		}
		table[Normalize(p)] = route
	}
	errorPath = Normalize(errorPath)
	if _, ok := table[errorPath]; !ok {
		return nil, fmt.Errorf("error route %q is not in the route table", errorPath)
	}
	return &Router{routes: table, errorPath: errorPath}, nil
}

// Default returns the site route table.
func Default() *Router {
	r, err := New(DefaultRoutes(), DefaultErrorPath)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRoutes returns a fresh copy of the site route table.
func DefaultRoutes() map[string]Route {
	return map[string]Route{
		"/": {
			Model: "ContentModel", ViewModel: "ContentListing", View: "listing",
			Controller: ContentController,
		},
		"/gallery/": {
			Model: "ContentModel", ViewModel: "GalleryListing", View: "gallery",
			Controller: GalleryController,
		},
		"/search/": {
			Model: "ContentModel", ViewModel: "SearchResults", View: "search",
			Controller: SearchController,
		},
		"/experts/": {
			Model: "ExpertModel", ViewModel: "ExpertListing", View: "experts",
			Controller: ExpertsController,
		},
		"/enclosure/": {
			Model: "ContentModel", ViewModel: "Enclosure", View: "enclosure",
			Controller: EnclosureController,
		},
		"/admin/": {
			Model: "ContentModel", ViewModel: "ContentEdit", View: "admin",
			Controller: AdminContentController, AuthRequired: true,
		},
		"/admin/content/": {
			Model: "ContentModel", ViewModel: "ContentEdit", View: "admin",
			Controller: AdminContentController, AuthRequired: true,
		},
		"/admin/experts/": {
			Model: "ExpertModel", ViewModel: "ExpertEdit", View: "admin",
			Controller: AdminExpertsController, AuthRequired: true,
		},
		DefaultErrorPath: {
			Model: "ErrorModel", ViewModel: "Error", View: "error",
			Controller: ErrorController,
		},
	}
}

// Normalize cleans p and guarantees a leading and trailing slash.
func Normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = path.Clean("/" + p)
	if p == "/" {
		return p
	}
	return p + "/"
}

// Lookup returns the route registered for path, or ErrNoSuchRoute.
func (r *Router) Lookup(p string) (Route, error) {
	route, ok := r.routes[Normalize(p)]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrNoSuchRoute, Normalize(p))
	}
	return route, nil
}

// Match returns the route for path, falling back to the error route.
// The returned bool reports whether the path itself matched.
func (r *Router) Match(p string) (Route, bool) {
	route, err := r.Lookup(p)
	if err != nil {
		return r.routes[r.errorPath], false
	}
	return route, true
}

// ErrorRoute returns the fallback route.
func (r *Router) ErrorRoute() Route {
	return r.routes[r.errorPath]
}

// Paths returns the registered paths, sorted.
func (r *Router) Paths() []string {
	out := make([]string, 0, len(r.routes))
	for p := range r.routes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
