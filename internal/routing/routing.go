// Package routing implements spec.md §4.6: projecting a caller-supplied
// search-routing string onto the concrete indices an expression set
// resolves to.
package routing

import (
	"strings"

	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/internal/sysaccess"
	"github.com/indexkit/iner/internal/wildcard"
)

// Resolve computes the concrete-index -> routing-value-set projection
// described in §4.6. routing is the caller-supplied comma-separated
// routing string (may be empty). It returns nil when no routing
// applies to any resolved index.
func Resolve(snap *clustermeta.Snapshot, routing string, exprs []string, sf sysaccess.Filter) (map[string]map[string]struct{}, error) {
	callerRouting := splitRouting(routing)

	opts := wildcard.Options{
		Expand:              true,
		States:              wildcard.States{Open: true, Closed: true, Hidden: true},
		IncludeDataStreams:  true,
		PreserveAliases:     true,
		PreserveDataStreams: true,
	}
	resolved, err := wildcard.Resolve(snap, exprs, opts, sf)
	if err != nil {
		return nil, err
	}

	if isAllIndicesForm(exprs) {
		if len(callerRouting) == 0 {
			return nil, nil
		}
		out := make(map[string]map[string]struct{})
		for _, meta := range snap.AllIndexMetadata() {
			out[meta.Name] = cloneSet(callerRouting)
		}
		return nilIfEmpty(out), nil
	}

	out := make(map[string]map[string]struct{})
	for _, name := range resolved {
		abs, ok := snap.Lookup(name)
		if !ok {
			continue
		}
		switch abs.Kind {
		case clustermeta.KindAlias:
			for _, c := range abs.Indices {
				if perIndex, ok := abs.RoutingValues[c]; ok && len(perIndex) > 0 {
					out[c] = intersect(setOf(perIndex), callerRouting)
				} else {
					markNoRoutingRequired(out, c, callerRouting)
				}
			}
		case clustermeta.KindDataStream:
			if !abs.AllowCustomRouting {
				continue
			}
			for _, c := range abs.Indices {
				markNoRoutingRequired(out, c, callerRouting)
			}
		default:
			markNoRoutingRequired(out, name, callerRouting)
		}
	}
	return nilIfEmpty(out), nil
}

// markNoRoutingRequired records that concrete index c needs no alias-
// imposed routing restriction: if the caller supplied routing values,
// those are recorded; otherwise any existing entry for c is cleared.
func markNoRoutingRequired(out map[string]map[string]struct{}, c string, callerRouting map[string]struct{}) {
	if len(callerRouting) > 0 {
		out[c] = cloneSet(callerRouting)
		return
	}
	delete(out, c)
}

func splitRouting(routing string) map[string]struct{} {
	if routing == "" {
		return nil
	}
	out := make(map[string]struct{})
	for _, v := range strings.Split(routing, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}

func setOf(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// intersect returns a∩b, or a itself (cloned) when b is empty (no
// caller-supplied routing to narrow against).
func intersect(a, b map[string]struct{}) map[string]struct{} {
	if len(b) == 0 {
		return cloneSet(a)
	}
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func nilIfEmpty(m map[string]map[string]struct{}) map[string]map[string]struct{} {
	if len(m) == 0 {
		return nil
	}
	return m
}

func isAllIndicesForm(exprs []string) bool {
	if len(exprs) == 0 {
		return true
	}
	return len(exprs) == 1 && (exprs[0] == "_all" || exprs[0] == "*")
}
