// Package iner is the facade for the Index Name Expression Resolver:
// it wires the date-math, wildcard, and materialize stages together
// behind the public operations spec.md §6 enumerates.
package iner

import (
	"time"

	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/internal/datemath"
	"github.com/indexkit/iner/internal/filteralias"
	"github.com/indexkit/iner/internal/materialize"
	"github.com/indexkit/iner/internal/rkind"
	"github.com/indexkit/iner/internal/routing"
	"github.com/indexkit/iner/internal/systemindex"
	"github.com/indexkit/iner/internal/wildcard"
)

func timeNowFunc() time.Time { return time.Now() }

// Request bundles the per-call inputs resolve_write_abstraction needs
// beyond a bare expression list.
type Request struct {
	Expressions []string
}

// wildcardOptions projects ctx into internal/wildcard.Options.
func (ctx *Context) wildcardOptions() wildcard.Options {
	return wildcard.Options{
		Expand:              ctx.Options.ExpandWildcardExpressions,
		States:              wildcard.States(ctx.Options.ExpandWildcards),
		IgnoreUnavailable:   ctx.Options.IgnoreUnavailable,
		IgnoreAliases:       ctx.Options.IgnoreAliases,
		IncludeDataStreams:  ctx.IncludeDataStreams,
		AllowNoIndices:      ctx.Options.AllowNoIndices,
		PreserveAliases:     ctx.PreserveAliases,
		PreserveDataStreams: ctx.PreserveDataStreams,
	}
}

func (ctx *Context) materializeOptions() materialize.Options {
	return materialize.Options{
		IgnoreUnavailable:             ctx.Options.IgnoreUnavailable,
		AllowNoIndices:                ctx.Options.AllowNoIndices,
		AllowAliasesToMultipleIndices: ctx.Options.AllowAliasesToMultipleIndices,
		ForbidClosedIndices:           ctx.Options.ForbidClosedIndices,
		IgnoreAliases:                 ctx.Options.IgnoreAliases,
		IgnoreThrottled:               ctx.Options.IgnoreThrottled,
		IncludeDataStreams:            ctx.IncludeDataStreams,
		ResolveToWriteIndex:           ctx.ResolveToWriteIndex,
	}
}

// resolveNames runs the date-math and wildcard stages, returning the
// wildcard-resolved abstraction name collection plus the original
// (post-date-math) expression count the materializer's arity-sensitive
// missing-expression policy needs.
func (ctx *Context) resolveNames(exprs []string) ([]string, int, error) {
	resolved, err := datemath.ResolveExpressions(exprs, ctx.clock())
	if err != nil {
		return nil, 0, rkind.New(rkind.InvalidExpression, err.Error())
	}
	if err := materialize.CrossClusterPreCheck(resolved, ctx.Options.IgnoreUnavailable); err != nil {
		return nil, 0, err
	}
	names, err := wildcard.Resolve(ctx.Snapshot, resolved, ctx.wildcardOptions(), ctx.systemFilter())
	if err != nil {
		return nil, 0, err
	}
	return names, len(resolved), nil
}

// Resolver runs the full pipeline and exposes the ten operations
// spec.md §6 names. The zero value discards deprecation events, as
// NewResolver(nil) does.
type Resolver struct {
	Deprecations systemindex.DeprecationSink
}

// NewResolver returns a Resolver that emits deprecation events to sink
// (nil discards them).
func NewResolver(sink systemindex.DeprecationSink) *Resolver {
	return &Resolver{Deprecations: sink}
}

// ResolveConcreteIndexNames implements operation 1:
// resolve_concrete_index_names(ctx, exprs) -> [name].
func (r *Resolver) ResolveConcreteIndexNames(ctx *Context, exprs []string) ([]string, error) {
	names, origCount, err := ctx.resolveNames(exprs)
	if err != nil {
		return nil, err
	}
	materialized, err := materialize.Materialize(ctx.Snapshot, names, origCount, ctx.materializeOptions(), ctx.systemFilter())
	if err != nil {
		return nil, err
	}
	return systemindex.Gate(ctx.Snapshot, materialized, ctx.systemFilter(), r.Deprecations)
}

// ResolveConcreteIndices implements operation 1's index_id variant.
// This model's backing-index id and name coincide (clustermeta.
// IndexMetadata's doc comment), so it delegates directly.
func (r *Resolver) ResolveConcreteIndices(ctx *Context, exprs []string) ([]string, error) {
	return r.ResolveConcreteIndexNames(ctx, exprs)
}

// ResolveDataStreamNames implements operation 2: restricts the
// wildcard-resolved collection to names whose abstraction is a data
// stream.
func (r *Resolver) ResolveDataStreamNames(ctx *Context, exprs []string) ([]string, error) {
	// Data streams must survive as their own name, not expand to their
	// backing indices, or nothing below would ever match KindDataStream.
	dsCtx := *ctx
	dsCtx.PreserveDataStreams = true

	names, _, err := dsCtx.resolveNames(exprs)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range names {
		if abs, ok := ctx.Snapshot.Lookup(name); ok && abs.Kind == clustermeta.KindDataStream {
			out = append(out, name)
		}
	}
	return out, nil
}

// ResolveWriteAbstraction implements operation 3: requires the
// resolved collection to be exactly one abstraction; for aliases, that
// abstraction must define a write index.
func (r *Resolver) ResolveWriteAbstraction(ctx *Context, req Request) (*clustermeta.IndexAbstraction, error) {
	// The result must be the single abstraction itself (so its write
	// index can be inspected), not its expanded backing indices.
	absCtx := *ctx
	absCtx.PreserveAliases = true
	absCtx.PreserveDataStreams = true

	names, _, err := absCtx.resolveNames(req.Expressions)
	if err != nil {
		return nil, err
	}
	if len(names) != 1 {
		return nil, rkind.New(rkind.MultipleIndicesForbidden,
			"exactly one index abstraction is required for a write operation", req.Expressions...)
	}
	abs, ok := ctx.Snapshot.Lookup(names[0])
	if !ok {
		return nil, rkind.New(rkind.IndexNotFound, "resolved name no longer present in the snapshot", names[0])
	}
	if abs.Kind == clustermeta.KindAlias && abs.WriteIndex == "" {
		return nil, rkind.New(rkind.NoWriteIndex, "alias has no designated write index", names[0])
	}
	return abs, nil
}

// ResolveSingleConcreteIndex implements operation 4: requires exactly
// one admitted index.
func (r *Resolver) ResolveSingleConcreteIndex(ctx *Context, expr string) (string, error) {
	ids, err := r.ResolveConcreteIndexNames(ctx, []string{expr})
	if err != nil {
		return "", err
	}
	if len(ids) != 1 {
		return "", rkind.New(rkind.MultipleIndicesForbidden,
			"expression must resolve to exactly one concrete index", expr)
	}
	return ids[0], nil
}

// ResolveSingleWriteIndex implements operation 5: as
// ResolveSingleConcreteIndex, but with resolve_to_write_index set, and
// null permitted when allowNoIndex.
func (r *Resolver) ResolveSingleWriteIndex(ctx *Context, expr string, allowNoIndex bool) (string, error) {
	writeCtx := *ctx
	writeCtx.ResolveToWriteIndex = true

	ids, err := r.ResolveConcreteIndexNames(&writeCtx, []string{expr})
	if err != nil {
		if allowNoIndex {
			if rerr, ok := err.(*rkind.Error); ok && rerr.Kind == rkind.IndexNotFound {
				return "", nil
			}
		}
		return "", err
	}
	if len(ids) == 0 {
		if allowNoIndex {
			return "", nil
		}
		return "", rkind.New(rkind.IndexNotFound, "expression resolved to no write index", expr)
	}
	if len(ids) != 1 {
		return "", rkind.New(rkind.MultipleIndicesForbidden,
			"expression must resolve to exactly one write index", expr)
	}
	return ids[0], nil
}

// HasIndexAbstraction implements operation 6: date-math-resolves name
// and queries the snapshot.
func HasIndexAbstraction(name string, snap *clustermeta.Snapshot) (bool, error) {
	resolved, err := datemath.ResolveExpression(name, timeNowFunc)
	if err != nil {
		return false, rkind.New(rkind.InvalidExpression, err.Error())
	}
	_, ok := snap.Lookup(resolved)
	return ok, nil
}

// ResolveDateMath implements operation 7: pure date-math rewrite. A nil
// clock uses the real wall clock.
func ResolveDateMath(expr string, clock datemath.Clock) (string, error) {
	if clock == nil {
		clock = timeNowFunc
	}
	resolved, err := datemath.ResolveExpression(expr, clock)
	if err != nil {
		return "", rkind.New(rkind.InvalidExpression, err.Error())
	}
	return resolved, nil
}

// ResolveExpressionsSet implements operation 8: wildcard-resolved with
// lenient defaults.
func ResolveExpressionsSet(snap *clustermeta.Snapshot, exprs []string) ([]string, error) {
	ctx := &Context{
		Snapshot:           snap,
		Options:            LenientExpandOpenHidden(),
		PreserveAliases:    true,
		IncludeDataStreams: true,
		StartTime:          timeNowFunc(),
	}
	names, _, err := ctx.resolveNames(exprs)
	return names, err
}

// FilteringAliases implements operation 9 (§4.5). Which candidate
// aliases are "required" (must filter, or the non-filtering path
// wins) is decided from each alias's own IsFilteringAlias metadata,
// not a caller-supplied predicate — there is no real caller that knows
// better than the alias's own definition.
func FilteringAliases(snap *clustermeta.Snapshot, index string, resolved []string, isAllIndices, skipIdentity bool) []string {
	return filteralias.Resolve(snap, index, resolved, isAllIndices, skipIdentity)
}

// ResolveSearchRouting implements operation 10 (§4.6).
func ResolveSearchRouting(snap *clustermeta.Snapshot, routingStr string, exprs []string, level SystemIndexAccessLevel, systemAccess, isNetNewSystem func(string) bool) (map[string]map[string]struct{}, error) {
	ctx := &Context{SystemAccessLevel: level, SystemAccess: systemAccess, IsNetNewSystem: isNetNewSystem}
	return routing.Resolve(snap, routingStr, exprs, ctx.systemFilter())
}
