package iner

// WildcardStates is the expand_wildcards_open/closed/hidden triple of
// spec.md §3.
type WildcardStates struct {
	Open   bool
	Closed bool
	Hidden bool
}

// IndicesOptions is the per-call policy record spec.md §3 defines.
// Represented as a packed struct of booleans, per §9's "avoid per-call
// allocation" note — no field here escapes to the heap on its own.
type IndicesOptions struct {
	IgnoreUnavailable             bool
	AllowNoIndices                bool
	ExpandWildcards               WildcardStates
	AllowAliasesToMultipleIndices bool
	ForbidClosedIndices           bool
	IgnoreAliases                 bool
	IgnoreThrottled               bool
	ExpandWildcardExpressions     bool
}

// StrictExpandOpen returns the conservative defaults most request
// handlers start from: wildcards expand to open indices only, missing
// names are errors, and an empty final result is an error.
func StrictExpandOpen() IndicesOptions {
	return IndicesOptions{
		ExpandWildcardExpressions: true,
		ExpandWildcards:           WildcardStates{Open: true},
	}
}

// LenientExpandOpenHidden implements the lenient defaults
// resolve_expressions_set (spec.md §6.8) uses: wildcards expand to
// open and hidden abstractions, missing names are tolerated, and an
// empty final result is allowed.
func LenientExpandOpenHidden() IndicesOptions {
	return IndicesOptions{
		ExpandWildcardExpressions:     true,
		ExpandWildcards:               WildcardStates{Open: true, Hidden: true},
		IgnoreUnavailable:             true,
		AllowNoIndices:                true,
		AllowAliasesToMultipleIndices: true,
	}
}
