package registry

import (
	"fmt"
	"sort"

	"github.com/attribution-io/ledger-core/internal/domain"
)

// ViewRegistry is the immutable catalog of refreshable views
type ViewRegistry interface {
	// Get returns the view registered under name
	Get(name string) (*View, bool)

	// Names returns all registered view names in sorted order
	Names() []string

	// TopologicalOrder returns every view after all of its dependencies.
	// Ties are broken by name, so the order does not depend on registration order.
	TopologicalOrder() []*View
}

type viewRegistry struct {
	views map[string]*View
	order []*View
}

// New validates the views and builds a registry.
// Duplicate names, unknown dependencies, malformed bodies and dependency cycles are rejected.
func New(routines Routines, views ...View) (ViewRegistry, error) {
	r := &viewRegistry{
		views: make(map[string]*View, len(views)),
	}

	for i := range views {
		v := views[i]
		v.Dependencies = append([]string(nil), views[i].Dependencies...)

		if err := v.bind(routines); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidView, err)
		}
		if _, exists := r.views[v.Name]; exists {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateView, v.Name)
		}
		r.views[v.Name] = &v
	}

	graph := make(dependencyGraph, len(r.views))
	for name, v := range r.views {
		deps := make([]string, 0, len(v.Dependencies))
		for _, dep := range v.Dependencies {
			if _, ok := r.views[dep]; !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", domain.ErrUnknownDependency, name, dep)
			}
			// Global views refresh once per sweep, before any tenant batch
			if !v.TenantScoped && r.views[dep].TenantScoped {
				return nil, fmt.Errorf("%w: global view %s depends on tenant-scoped view %s", domain.ErrInvalidView, name, dep)
			}
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		graph[name] = deps
	}

	if cycle := findCycle(graph); cycle != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDependencyCycle, formatCycle(cycle))
	}

	for _, name := range topologicalSort(graph) {
		r.order = append(r.order, r.views[name])
	}

	return r, nil
}

// Get returns the view registered under name
func (r *viewRegistry) Get(name string) (*View, bool) {
	v, ok := r.views[name]
	return v, ok
}

// Names returns all registered view names in sorted order
func (r *viewRegistry) Names() []string {
	names := make([]string, 0, len(r.views))
	for name := range r.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TopologicalOrder returns every view after all of its dependencies
func (r *viewRegistry) TopologicalOrder() []*View {
	order := make([]*View, len(r.order))
	copy(order, r.order)
	return order
}
