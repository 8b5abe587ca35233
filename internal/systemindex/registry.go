package systemindex

// Registry is a minimal default implementation of the system-index
// registry spec.md §1 lists as an external collaborator ("classifies
// names as system / net-new system / data-stream-owned", described
// only at its interface). The resolution pipeline itself never needs
// more than the two predicates a Registry produces; whether a given
// index is_system/net-new is otherwise carried directly on
// clustermeta.IndexMetadata. A Registry exists for the product-level
// decision of which caller may reach a given system name — e.g. an
// allowlisted internal feature reading ".security-7" while no other
// caller may.
type Registry struct {
	allowed map[string]struct{}
	netNew  map[string]struct{}
}

// NewRegistry returns an empty registry: nothing is allowed, nothing
// is net-new.
func NewRegistry() *Registry {
	return &Registry{
		allowed: make(map[string]struct{}),
		netNew:  make(map[string]struct{}),
	}
}

// Allow grants system_access to the given index names.
func (r *Registry) Allow(names ...string) *Registry {
	for _, n := range names {
		r.allowed[n] = struct{}{}
	}
	return r
}

// MarkNetNew flags the given index names as introduced after the
// backwards-compatibility cutoff.
func (r *Registry) MarkNetNew(names ...string) *Registry {
	for _, n := range names {
		r.netNew[n] = struct{}{}
	}
	return r
}

// SystemAccess implements the system_access(name) predicate.
func (r *Registry) SystemAccess(name string) bool {
	_, ok := r.allowed[name]
	return ok
}

// IsNetNewSystem implements the is_net_new_system(name) predicate.
func (r *Registry) IsNetNewSystem(name string) bool {
	_, ok := r.netNew[name]
	return ok
}
