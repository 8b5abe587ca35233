// Package wildcard implements spec.md §4.2: expansion of wildcard and
// literal index-abstraction tokens against a clustermeta.Snapshot into
// an ordered, deduplicated collection of abstraction names.
package wildcard

import (
	"fmt"
	"strings"

	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/internal/rkind"
	"github.com/indexkit/iner/internal/sysaccess"
	"github.com/indexkit/iner/util"
)

// States is the expand_wildcards open/closed/hidden tri-state.
type States struct {
	Open   bool
	Closed bool
	Hidden bool
}

// Options mirrors the subset of iner.IndicesOptions that governs
// wildcard expansion.
type Options struct {
	// Expand is expand_wildcard_expressions: when false, every token is
	// passed through untouched and nothing else in this package runs.
	Expand bool

	States States

	IgnoreUnavailable   bool
	IgnoreAliases       bool
	IncludeDataStreams  bool
	AllowNoIndices      bool
	PreserveAliases     bool
	PreserveDataStreams bool
}

// Resolve expands exprs (already date-math resolved) against snap,
// returning the ordered, deduplicated set of abstraction names they
// select.
func Resolve(snap *clustermeta.Snapshot, exprs []string, opts Options, sf sysaccess.Filter) ([]string, error) {
	if !opts.Expand {
		return append([]string(nil), exprs...), nil
	}
	if isAllSelector(exprs) {
		return allIndices(snap, opts, sf)
	}

	set := util.NewOrderedSet[string](len(exprs))
	wildcardSeen := false

	for _, token := range exprs {
		add := true
		t := token
		if wildcardSeen && strings.HasPrefix(t, "-") {
			add = false
			t = t[1:]
		}

		if t == "" {
			return nil, rkind.New(rkind.InvalidExpression, "expression must not be empty", token)
		}
		if strings.HasPrefix(t, "_") {
			return nil, rkind.New(rkind.InvalidExpression,
				fmt.Sprintf("expression %q must not start with '_'", t), token)
		}

		if abs, ok := snap.Lookup(t); ok && !forbidden(snap, abs, opts) {
			if add {
				set.Add(t)
			} else {
				set.Remove(t)
			}
			continue
		}

		if !HasWildcard(t) {
			if err := resolveLiteral(snap, t, add, opts, set); err != nil {
				return nil, err
			}
			continue
		}

		wildcardSeen = true
		if err := resolveGlob(snap, t, add, opts, sf, set); err != nil {
			return nil, err
		}
	}

	return set.Values(), nil
}

// resolveLiteral handles a non-wildcard token that either does not
// exist in the snapshot, or exists but is rejected by options (an
// alias while ignore_aliases, or a data-stream-related name while
// include_data_streams is false).
func resolveLiteral(snap *clustermeta.Snapshot, t string, add bool, opts Options, set *util.OrderedSet[string]) error {
	if !opts.IgnoreUnavailable {
		if abs, ok := snap.Lookup(t); ok {
			if opts.IgnoreAliases && abs.Kind == clustermeta.KindAlias {
				return rkind.New(rkind.AliasNotAllowed,
					fmt.Sprintf("%q resolves to an alias but aliases are not allowed here", t), t)
			}
			return rkind.New(rkind.IndexNotFound,
				fmt.Sprintf("%q resolves to a data stream or its backing index, which is not permitted here", t), t)
		}
		return rkind.New(rkind.IndexNotFound, fmt.Sprintf("no such index, alias, or data stream: %q", t), t)
	}
	if add {
		set.Add(t)
	} else {
		set.Remove(t)
	}
	return nil
}

// resolveGlob handles a token containing '*' or '?': it matches every
// abstraction whose name satisfies the pattern and the visibility
// filters, expands each match to open/closed-filtered index names, and
// adds or removes the union.
func resolveGlob(snap *clustermeta.Snapshot, pattern string, add bool, opts Options, sf sysaccess.Filter, set *util.OrderedSet[string]) error {
	var candidates []*clustermeta.IndexAbstraction
	if prefix, ok := SuffixPrefix(pattern); ok {
		candidates = snap.AbstractionsByPrefix(prefix)
	} else {
		candidates = snap.AllAbstractions()
	}

	var matchedNames []string
	for _, abs := range candidates {
		if !Match(pattern, abs.Name) {
			continue
		}
		if opts.IgnoreAliases && abs.Kind == clustermeta.KindAlias {
			continue
		}
		if !opts.IncludeDataStreams && isDataStreamRelated(snap, abs) {
			continue
		}
		if !opts.States.Hidden && abs.Hidden {
			if !(strings.HasPrefix(pattern, ".") && strings.HasPrefix(abs.Name, ".")) {
				continue
			}
		}
		if abs.IsSystem && sf.NetNew(abs.Name) && !sf.Access(abs.Name) {
			continue
		}
		matchedNames = append(matchedNames, expandToOpenClosed(snap, abs, opts)...)
	}

	if add && len(matchedNames) == 0 && !opts.AllowNoIndices {
		return rkind.New(rkind.IndexNotFound,
			fmt.Sprintf("no index, alias, or data stream matches %q", pattern), pattern)
	}

	for _, name := range matchedNames {
		if add {
			set.Add(name)
		} else {
			set.Remove(name)
		}
	}
	return nil
}

// expandToOpenClosed turns a matched abstraction into the concrete
// names it contributes, honoring preserve_aliases/preserve_data_streams
// and the open/closed exclusion table.
func expandToOpenClosed(snap *clustermeta.Snapshot, abs *clustermeta.IndexAbstraction, opts Options) []string {
	if opts.PreserveAliases && abs.Kind == clustermeta.KindAlias {
		return []string{abs.Name}
	}
	if opts.PreserveDataStreams && abs.Kind == clustermeta.KindDataStream {
		return []string{abs.Name}
	}

	var out []string
	for _, idxName := range abs.Indices {
		meta, ok := snap.Index(idxName)
		if !ok {
			continue
		}
		switch {
		case opts.States.Open && opts.States.Closed:
			out = append(out, idxName)
		case opts.States.Open:
			if meta.State != clustermeta.Closed {
				out = append(out, idxName)
			}
		case opts.States.Closed:
			if meta.State != clustermeta.Open {
				out = append(out, idxName)
			}
		}
	}
	return out
}

// allIndices implements the "input is empty or a single _all/*
// selector" branch of spec.md §4.2, honoring the open/closed/hidden
// selection table and the system-index access level.
func allIndices(snap *clustermeta.Snapshot, opts Options, sf sysaccess.Filter) ([]string, error) {
	set := util.NewOrderedSet[string](snap.Len())

	for _, abs := range snap.AllAbstractions() {
		switch abs.Kind {
		case clustermeta.KindAlias:
			continue
		case clustermeta.KindDataStream:
			if !opts.IncludeDataStreams {
				continue
			}
			if !opts.States.Hidden && abs.Hidden {
				continue
			}
			set.Add(abs.Name)
		case clustermeta.KindConcreteIndex:
			meta, ok := snap.Index(abs.Name)
			if !ok {
				continue
			}
			if !selectedByStates(meta, opts.States) {
				continue
			}
			if !systemVisible(meta, sf) {
				continue
			}
			set.Add(abs.Name)
		}
	}

	if set.Len() == 0 && !opts.AllowNoIndices {
		return nil, rkind.New(rkind.IndexNotFound, "no indices match the all-indices selection")
	}
	return set.Values(), nil
}

func selectedByStates(meta *clustermeta.IndexMetadata, st States) bool {
	switch {
	case st.Open && st.Closed:
		return st.Hidden || !meta.Hidden
	case st.Open:
		if meta.State == clustermeta.Closed {
			return false
		}
		return st.Hidden || !meta.Hidden
	case st.Closed:
		if meta.State == clustermeta.Open {
			return false
		}
		return st.Hidden || !meta.Hidden
	default:
		return false
	}
}

// systemVisible applies the system-index access-level filtering of
// spec.md §4.2's all-indices table: historic system indices are always
// visible; net-new, non-data-stream system indices are gated by access
// level and system_access; data-stream-owned system indices are gated
// by system_access alone.
func systemVisible(meta *clustermeta.IndexMetadata, sf sysaccess.Filter) bool {
	if !meta.IsSystem || sf.AccessLevel == sysaccess.All {
		return true
	}
	if sf.AccessLevel == sysaccess.None {
		return false
	}
	if meta.Parent != "" {
		return sf.Access(meta.Name)
	}
	if sf.NetNew(meta.Name) {
		if sf.AccessLevel == sysaccess.BackwardsCompatibleOnly {
			return false
		}
		return sf.Access(meta.Name)
	}
	return true
}

func forbidden(snap *clustermeta.Snapshot, abs *clustermeta.IndexAbstraction, opts Options) bool {
	if opts.IgnoreAliases && abs.Kind == clustermeta.KindAlias {
		return true
	}
	if !opts.IncludeDataStreams && isDataStreamRelated(snap, abs) {
		return true
	}
	return false
}

func isDataStreamRelated(snap *clustermeta.Snapshot, abs *clustermeta.IndexAbstraction) bool {
	if abs.Kind == clustermeta.KindDataStream {
		return true
	}
	if abs.Kind == clustermeta.KindConcreteIndex {
		if meta, ok := snap.Index(abs.Name); ok {
			return meta.Parent != ""
		}
	}
	return false
}

func isAllSelector(exprs []string) bool {
	if len(exprs) == 0 {
		return true
	}
	return len(exprs) == 1 && (exprs[0] == "_all" || exprs[0] == "*")
}
