// Package sysaccess defines the system-index access level enum shared
// by every pipeline stage that has to decide whether a "." -prefixed
// name may be touched by the current request (spec.md §4.4). It lives
// in its own leaf package so that internal/wildcard, internal/
// materialize, internal/systemindex, and the iner facade can all
// depend on the same small type without an import cycle through iner.
package sysaccess

// Level is the system-index access level attached to a resolution
// Context.
type Level int

const (
	// All: every system abstraction is visible, regardless of age.
	All Level = iota
	// BackwardsCompatibleOnly: historic system indices are visible;
	// net-new system indices are not, even if system_access admits them.
	BackwardsCompatibleOnly
	// Restricted: both historic and net-new system abstractions are
	// gated by the system_access/is_net_new_system predicates.
	Restricted
	// None: the all-indices selection (internal/wildcard) drops every
	// system index. The other stages handle None as they handle
	// Restricted: the system_access/is_net_new_system predicates decide
	// which system abstractions pass, and a historic one that
	// system_access rejects is still returned with a deprecation notice.
	None
)

func (l Level) String() string {
	switch l {
	case All:
		return "ALL"
	case BackwardsCompatibleOnly:
		return "BACKWARDS_COMPATIBLE_ONLY"
	case Restricted:
		return "RESTRICTED"
	case None:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// Filter bundles the per-request system-index access level with the two
// predicates spec.md §3's Context carries: system_access and
// is_net_new_system. Every pipeline stage that has to decide whether a
// system abstraction is visible takes one of these rather than the raw
// predicates, so the decision logic lives in one place (Access/NetNew).
type Filter struct {
	AccessLevel    Level
	SystemAccess   func(name string) bool
	IsNetNewSystem func(name string) bool
}

// Access reports whether the system_access predicate admits name. A nil
// predicate admits nothing.
func (f Filter) Access(name string) bool {
	if f.SystemAccess == nil {
		return false
	}
	return f.SystemAccess(name)
}

// NetNew reports whether name is a net-new system abstraction. A nil
// predicate reports false (treats every system name as historic).
func (f Filter) NetNew(name string) bool {
	if f.IsNetNewSystem == nil {
		return false
	}
	return f.IsNetNewSystem(name)
}
