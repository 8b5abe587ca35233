// Package materialize implements spec.md §4.3: turning a wildcard-
// resolved name collection into the final, deduplicated ordered set of
// concrete backing index ids, enforcing options, alias/data-stream
// policy, write-index selection, and per-index admission.
package materialize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/internal/rkind"
	"github.com/indexkit/iner/internal/sysaccess"
	"github.com/indexkit/iner/util"
)

// Options mirrors the subset of iner.IndicesOptions consulted here.
type Options struct {
	IgnoreUnavailable             bool
	AllowNoIndices                bool
	AllowAliasesToMultipleIndices bool
	ForbidClosedIndices           bool
	IgnoreAliases                 bool
	IgnoreThrottled               bool
	IncludeDataStreams            bool
	ResolveToWriteIndex           bool
}

// failsOnMissing implements the arity-dependent missing-expression
// policy of §4.3: a single top-level expression fails on
// allow_no_indices=false; multiple expressions fail on
// ignore_unavailable=false. origExprCount is the caller's original,
// pre-wildcard-expansion expression count.
func (o Options) failsOnMissing(origExprCount int) bool {
	if origExprCount <= 1 {
		return !o.AllowNoIndices
	}
	return !o.IgnoreUnavailable
}

// Materialize consumes names (the wildcard-resolved collection) and
// returns the final ordered set of concrete backing index ids.
func Materialize(snap *clustermeta.Snapshot, names []string, origExprCount int, opts Options, sf sysaccess.Filter) ([]string, error) {
	if err := CrossClusterPreCheck(names, opts.IgnoreUnavailable); err != nil {
		return nil, err
	}

	set := util.NewOrderedSet[string](len(names))
	excludedDataStreams := false

	for _, name := range names {
		abs, ok := snap.Lookup(name)
		if !ok {
			// A data stream's backing index has metadata but no abstraction
			// of its own; the wildcard stage emits such names when it
			// expands a data stream.
			if _, isBacking := snap.Index(name); isBacking {
				abs = &clustermeta.IndexAbstraction{Name: name, Kind: clustermeta.KindConcreteIndex, Indices: []string{name}}
				ok = true
			}
		}
		if !ok {
			if opts.failsOnMissing(origExprCount) {
				return nil, rkind.New(rkind.IndexNotFound, fmt.Sprintf("no such index, alias, or data stream: %q", name), name)
			}
			continue
		}

		if opts.IgnoreAliases && abs.Kind == clustermeta.KindAlias {
			if opts.failsOnMissing(origExprCount) {
				return nil, rkind.New(rkind.AliasNotAllowed, fmt.Sprintf("%q resolves to an alias but aliases are not allowed here", name), name)
			}
			continue
		}
		if !opts.IncludeDataStreams && isDataStreamRelated(snap, abs) {
			excludedDataStreams = true
			continue
		}

		if opts.ResolveToWriteIndex {
			writeIndex, err := writeIndexOf(abs, name)
			if err != nil {
				return nil, err
			}
			if err := admit(snap, writeIndex, opts, sf, set); err != nil {
				return nil, err
			}
			continue
		}

		if len(abs.Indices) > 1 && !opts.AllowAliasesToMultipleIndices {
			return nil, rkind.New(rkind.MultipleIndicesForbidden,
				fmt.Sprintf("%q resolves to %d indices, which is not permitted here", name, len(abs.Indices)), name)
		}
		for _, backing := range abs.Indices {
			if err := admit(snap, backing, opts, sf, set); err != nil {
				return nil, err
			}
		}
	}

	if set.Len() == 0 && !opts.AllowNoIndices {
		err := rkind.New(rkind.IndexNotFound, "no concrete indices matched the resolved expressions")
		if excludedDataStreams {
			err = err.WithMetadata("es.excluded_ds", "true")
		}
		return nil, err
	}
	return set.Values(), nil
}

func writeIndexOf(abs *clustermeta.IndexAbstraction, name string) (string, error) {
	if abs.WriteIndex == "" {
		return "", rkind.New(rkind.NoWriteIndex, fmt.Sprintf("%q has no designated write index", name), name)
	}
	return abs.WriteIndex, nil
}

// admit applies §4.3.1's should_track per-index admission logic,
// adding backing to set when it passes.
func admit(snap *clustermeta.Snapshot, backing string, opts Options, sf sysaccess.Filter, set *util.OrderedSet[string]) error {
	if sf.AccessLevel == sysaccess.BackwardsCompatibleOnly && sf.NetNew(backing) {
		return nil
	}

	meta, ok := snap.Index(backing)
	if !ok {
		if opts.IgnoreUnavailable {
			return nil
		}
		return rkind.New(rkind.IndexNotFound, fmt.Sprintf("no such backing index: %q", backing), backing)
	}

	switch meta.State {
	case clustermeta.Closed:
		if opts.ForbidClosedIndices {
			if !opts.IgnoreUnavailable {
				return rkind.New(rkind.IndexClosed, fmt.Sprintf("index %q is closed", backing), backing)
			}
			return nil
		}
	case clustermeta.Open:
		// always admitted, subject to the throttled filter below
	default:
		return rkind.New(rkind.InvalidState, fmt.Sprintf("index %q has an unrecognized state", backing), backing)
	}

	if opts.IgnoreThrottled && meta.Frozen {
		return nil
	}

	set.Add(backing)
	return nil
}

// CrossClusterPreCheck implements §4.3's pre-check: any token
// containing ':' is a cross-cluster reference. Exported so the iner
// facade can run it on the post-date-math expression list before
// invoking the wildcard resolver, which would otherwise raise the
// wrong error kind for a colon-bearing name it doesn't recognize.
func CrossClusterPreCheck(names []string, ignoreUnavailable bool) error {
	var remote []string
	for _, n := range names {
		if strings.Contains(n, ":") {
			remote = append(remote, n)
		}
	}
	if len(remote) == 0 {
		return nil
	}
	if ignoreUnavailable {
		return nil
	}
	sort.Strings(remote)
	return rkind.New(rkind.CrossClusterUnsupported,
		fmt.Sprintf("cross-cluster expressions are not supported: %s", strings.Join(remote, ", ")), remote...)
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
