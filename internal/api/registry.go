package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

// Group places endpoint commands under a shared parent command.
type Group struct {
	Name  string
	Short string
}

type entry struct {
	ep    Endpoint
	group *Group
}

// Registry holds all registered endpoints.
type Registry struct {
	entries []entry
}

// NewRegistry creates a new endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an endpoint whose command sits directly under "api".
func (r *Registry) Register(ep Endpoint) {
	r.entries = append(r.entries, entry{ep: ep})
}

// RegisterGroup adds endpoints whose commands sit under "api <group>".
func (r *Registry) RegisterGroup(g Group, eps ...Endpoint) {
	gp := &g
	for _, ep := range eps {
		r.entries = append(r.entries, entry{ep: ep, group: gp})
	}
}

// RegisterRoutes registers all endpoint HTTP routes with the given router.
// initMiddleware wraps handlers that require full server initialization.
func (r *Registry) RegisterRoutes(router chi.Router, initMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	for _, e := range r.entries {
		method, path, handler := e.ep.Route()
		if e.ep.RequiresInit() {
			handler = initMiddleware(handler)
		}
		router.MethodFunc(method, path, handler)
	}
}

// BuildCommands returns a cobra.Command tree for all registered endpoints.
// getServerURL is called at runtime to get the server URL.
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running careplan server via HTTP.

These commands require a running server (careplan serve).
Use --server to specify a custom server URL.

Examples:
  careplan api health                               # Check server health
  careplan api sessions create                      # Start a session
  careplan api sessions edit <id> symptoms "fev"    # Edit a field
  careplan api sessions plan <id>                   # Generate a treatment plan`,
	}

	groups := make(map[string]*cobra.Command)
	for _, e := range r.entries {
		cmd := e.ep.Command(getServerURL)
		if e.group == nil {
			apiCmd.AddCommand(cmd)
			continue
		}
		parent, ok := groups[e.group.Name]
		if !ok {
			parent = &cobra.Command{Use: e.group.Name, Short: e.group.Short}
			groups[e.group.Name] = parent
			apiCmd.AddCommand(parent)
		}
		parent.AddCommand(cmd)
	}

	return apiCmd
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	eps := make([]Endpoint, len(r.entries))
	for i, e := range r.entries {
		eps[i] = e.ep
	}
	return eps
}
