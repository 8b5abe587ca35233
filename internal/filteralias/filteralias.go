// Package filteralias implements spec.md §4.5: per-index selection of
// the filtering alias (if any) that should scope a search against a
// concrete index.
package filteralias

import (
	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/util"
)

// Resolve returns the alias names on index that should filter a search
// against it, given the pre-resolved expression set resolved (ordered,
// the wildcard-resolved set the caller's request expanded to) and
// whether resolved is the all-indices set. A candidate alias is
// "required" when its own IsFilteringAlias metadata is set, matching
// real Elasticsearch's requiredAlias = AliasMetadata::filteringRequired
// default; if any candidate in the intersection isn't required, the
// non-filtering path wins and Resolve returns nil. skipIdentity, when
// false, short-circuits to nil whenever index itself is a member of
// resolved (the caller asked for this index by name, not only via an
// alias).
//
// Iteration runs over whichever of (aliases on index, resolved) is
// smaller, per spec.md §4.5.
func Resolve(snap *clustermeta.Snapshot, index string, resolved []string, isAllIndices bool, skipIdentity bool) []string {
	if isAllIndices {
		return nil
	}
	if !skipIdentity && containsString(resolved, index) {
		return nil
	}

	candidates := aliasCandidates(snap, index)
	if len(resolved) < len(candidates) {
		return intersectSmallerResolved(snap, candidates, resolved)
	}
	return intersectSmallerCandidates(snap, candidates, resolved)
}

// aliasCandidates returns every alias (plain or data-stream) that can
// select index: ordinary aliases whose Indices include it, plus
// data-stream aliases whose member data streams include index's parent.
func aliasCandidates(snap *clustermeta.Snapshot, index string) []string {
	var out []string
	for _, abs := range snap.AllAbstractions() {
		if abs.Kind != clustermeta.KindAlias {
			continue
		}
		if containsString(abs.Indices, index) {
			out = append(out, abs.Name)
		}
	}

	meta, ok := snap.Index(index)
	if ok && meta.Parent != "" {
		for name, dsa := range util.CanonicalMapIter(snap.DataStreamAliases()) {
			if containsString(dsa.DataStreams, meta.Parent) {
				out = append(out, name)
			}
		}
	}
	return out
}

// isRequiredAlias reports whether alias must filter the search
// whenever it's selected, i.e. whether the non-filtering path must
// lose if this candidate is in play.
func isRequiredAlias(snap *clustermeta.Snapshot, alias string) bool {
	abs, ok := snap.Lookup(alias)
	return ok && abs.IsFilteringAlias
}

func intersectSmallerResolved(snap *clustermeta.Snapshot, candidates []string, resolved []string) []string {
	var out []string
	for _, name := range resolved {
		if !containsString(candidates, name) {
			continue
		}
		if !isRequiredAlias(snap, name) {
			return nil
		}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func intersectSmallerCandidates(snap *clustermeta.Snapshot, candidates []string, resolved []string) []string {
	var out []string
	for _, name := range candidates {
		if !containsString(resolved, name) {
			continue
		}
		if !isRequiredAlias(snap, name) {
			return nil
		}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
