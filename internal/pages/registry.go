// Package pages maps logical page names to their canonical paths so that routing
// decisions can compare URLs without asking the HTTP framework.
package pages

import (
	"fmt"
	"sort"
)

// Logical page names.
const (
	Home        = "home"
	Dashboard   = "dashboard"
	Login       = "login"
	Logout      = "logout"
	Token       = "token"
	Call        = "call"
	HealthLive  = "health_live"
	HealthReady = "health_ready"
)

// Registry is an immutable name -> path table.
type Registry struct {
	paths map[string]string
}

// NewRegistry builds a registry. Names and paths must both be unique.
func NewRegistry(paths map[string]string) (*Registry, error) {
	seen := make(map[string]string, len(paths))
	copied := make(map[string]string, len(paths))
	for name, path := range paths {
		if name == "" || path == "" {
			return nil, fmt.Errorf("page %q: empty name or path", name)
		}
		if other, ok := seen[path]; ok {
			return nil, fmt.Errorf("path %s registered for both %q and %q", path, other, name)
		}
		seen[path] = name
		copied[name] = path
	}
	return &Registry{paths: copied}, nil
}

// Default returns the registry used by the HTTP server.
func Default() *Registry {
	r, err := NewRegistry(map[string]string{
		Home:        "/",
		Dashboard:   "/dashboard",
		Login:       "/login",
		Logout:      "/logout",
		Token:       "/token",
		Call:        "/call",
		HealthLive:  "/health/live",
		HealthReady: "/health/ready",
	})
	if err != nil {
		panic(err)
	}
	return r
}

// Path returns the canonical path for name.
func (r *Registry) Path(name string) (string, bool) {
	path, ok := r.paths[name]
	return path, ok
}

// MustPath is Path for names known at compile time.
func (r *Registry) MustPath(name string) string {
	path, ok := r.paths[name]
	if !ok {
		panic(fmt.Sprintf("pages: unknown page %q", name))
	}
	return path
}

// Is reports whether path is exactly the canonical path of name.
func (r *Registry) Is(name, path string) bool {
	canonical, ok := r.paths[name]
	return ok && canonical == path
}

// Names returns the registered page names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.paths))
	for name := range r.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
