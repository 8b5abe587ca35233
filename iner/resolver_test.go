package iner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/internal/rkind"
)

// buildSnapshot constructs the fixture spec.md §8's scenario list is
// stated against: open logs-1/logs-2, closed logs-old, alias logs ->
// {logs-1, logs-2} with no write index, data stream events ->
// {events-000001, events-000002} with write index events-000002, and
// system index .tasks.
func buildSnapshot() *clustermeta.Snapshot {
	b := clustermeta.NewBuilder()
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: "logs-1"})
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: "logs-2"})
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: "logs-old", State: clustermeta.Closed})
	b.AddAlias(clustermeta.IndexAbstraction{Name: "logs", Indices: []string{"logs-1", "logs-2"}})
	b.AddIndexMetadata(clustermeta.IndexMetadata{Name: "events-000001"})
	b.AddIndexMetadata(clustermeta.IndexMetadata{Name: "events-000002"})
	b.AddDataStream(clustermeta.IndexAbstraction{
		Name:       "events",
		Indices:    []string{"events-000001", "events-000002"},
		WriteIndex: "events-000002",
	})
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: ".tasks", IsSystem: true, Hidden: true})
	return b.Build()
}

func scenarioCtx(snap *clustermeta.Snapshot, opts IndicesOptions) *Context {
	return &Context{Snapshot: snap, Options: opts, StartTime: time.Now()}
}

func TestScenario1_SuffixWildcardExpandsToOpenOnly(t *testing.T) {
	snap := buildSnapshot()
	r := NewResolver(nil)
	ctx := scenarioCtx(snap, IndicesOptions{
		ExpandWildcardExpressions: true,
		ExpandWildcards:           WildcardStates{Open: true},
		AllowNoIndices:            true,
	})
	got, err := r.ResolveConcreteIndexNames(ctx, []string{"logs-*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"logs-1", "logs-2"}, got)
}

func TestScenario2_AllMinusExclusion(t *testing.T) {
	snap := buildSnapshot()
	r := NewResolver(nil)
	opts := IndicesOptions{
		ExpandWildcardExpressions: true,
		ExpandWildcards:           WildcardStates{Open: true},
		AllowNoIndices:            true,
	}

	withDS := scenarioCtx(snap, opts)
	withDS.IncludeDataStreams = true
	got, err := r.ResolveConcreteIndexNames(withDS, []string{"*", "-logs-1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"logs-2", "events-000001", "events-000002"}, got)

	withoutDS := scenarioCtx(snap, opts)
	got, err = r.ResolveConcreteIndexNames(withoutDS, []string{"*", "-logs-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"logs-2"}, got)
}

func TestScenario3_ResolveToWriteIndex(t *testing.T) {
	snap := buildSnapshot()
	r := NewResolver(nil)
	ctx := scenarioCtx(snap, IndicesOptions{})
	ctx.ResolveToWriteIndex = true
	ctx.IncludeDataStreams = true
	got, err := r.ResolveConcreteIndexNames(ctx, []string{"events"})
	require.NoError(t, err)
	assert.Equal(t, []string{"events-000002"}, got)
}

func TestScenario4_DateMathTemplateThenMissing(t *testing.T) {
	snap := buildSnapshot()
	b := clustermeta.NewBuilder()
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: "logs-2024.01.15"})
	withIndex := b.Build()

	r := NewResolver(nil)
	ctx := &Context{
		Snapshot:  withIndex,
		Options:   IndicesOptions{},
		StartTime: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	got, err := r.ResolveConcreteIndexNames(ctx, []string{"<logs-{now/d{yyyy.MM.dd|UTC}}>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"logs-2024.01.15"}, got)

	absentCtx := &Context{
		Snapshot:  snap,
		Options:   IndicesOptions{},
		StartTime: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	_, err = r.ResolveConcreteIndexNames(absentCtx, []string{"<logs-{now/d{yyyy.MM.dd|UTC}}>"})
	require.Error(t, err)
	assert.Equal(t, rkind.IndexNotFound, err.(*rkind.Error).Kind)
}

func TestScenario5_MissingExpressionArityPolicy(t *testing.T) {
	snap := buildSnapshot()
	r := NewResolver(nil)

	strict := scenarioCtx(snap, IndicesOptions{ExpandWildcardExpressions: true, AllowNoIndices: true})
	_, err := r.ResolveConcreteIndexNames(strict, []string{"missing"})
	require.Error(t, err)
	assert.Equal(t, rkind.IndexNotFound, err.(*rkind.Error).Kind)

	lenient := scenarioCtx(snap, IndicesOptions{ExpandWildcardExpressions: true, IgnoreUnavailable: true, AllowNoIndices: true})
	got, err := r.ResolveConcreteIndexNames(lenient, []string{"missing"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScenario6_SystemIndexAccess(t *testing.T) {
	snap := buildSnapshot()

	netNewCtx := scenarioCtx(snap, IndicesOptions{})
	netNewCtx.SystemAccessLevel = SystemAccessNone
	netNewCtx.IsNetNewSystem = func(name string) bool { return name == ".tasks" }
	r := NewResolver(nil)
	_, err := r.ResolveConcreteIndexNames(netNewCtx, []string{".tasks"})
	require.Error(t, err)
	assert.Equal(t, rkind.SystemNetNewAccessDenied, err.(*rkind.Error).Kind)

	sink := &recordingSink{}
	historicCtx := scenarioCtx(snap, IndicesOptions{})
	historicCtx.SystemAccessLevel = SystemAccessRestricted
	r = NewResolver(sink)
	got, err := r.ResolveConcreteIndexNames(historicCtx, []string{".tasks"})
	require.NoError(t, err)
	assert.Equal(t, []string{".tasks"}, got)
	require.Len(t, sink.events, 1)
	assert.Equal(t, "open_system_index_access", sink.events[0].key)
}

type recordingSink struct {
	events []struct{ category, key string }
}

func (s *recordingSink) Emit(category, key string, payload any) {
	s.events = append(s.events, struct{ category, key string }{category, key})
}

func TestScenario7_CrossClusterRejected(t *testing.T) {
	snap := buildSnapshot()
	r := NewResolver(nil)
	ctx := scenarioCtx(snap, IndicesOptions{})
	_, err := r.ResolveConcreteIndexNames(ctx, []string{"logs-1:foo"})
	require.Error(t, err)
	assert.Equal(t, rkind.CrossClusterUnsupported, err.(*rkind.Error).Kind)
}

func TestScenario8_AliasToMultipleIndicesForbidden(t *testing.T) {
	snap := buildSnapshot()
	r := NewResolver(nil)
	ctx := scenarioCtx(snap, IndicesOptions{})
	_, err := r.ResolveConcreteIndexNames(ctx, []string{"logs"})
	require.Error(t, err)
	assert.Equal(t, rkind.MultipleIndicesForbidden, err.(*rkind.Error).Kind)
}

func TestResolveSingleWriteIndex_AllowNoIndex(t *testing.T) {
	snap := buildSnapshot()
	r := NewResolver(nil)
	ctx := scenarioCtx(snap, IndicesOptions{AllowNoIndices: true, IgnoreUnavailable: true})
	got, err := r.ResolveSingleWriteIndex(ctx, "missing", true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveBatch_IndependentRequests(t *testing.T) {
	snap := buildSnapshot()
	r := NewResolver(nil)
	ok := scenarioCtx(snap, IndicesOptions{AllowNoIndices: true})
	bad := scenarioCtx(snap, IndicesOptions{AllowNoIndices: true})

	results := r.ResolveBatch([]BatchRequest{
		{Ctx: ok, Expressions: []string{"logs-1"}},
		{Ctx: bad, Expressions: []string{"logs"}},
	}, 2)

	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	assert.Equal(t, []string{"logs-1"}, results[0].Names)
	require.Error(t, results[1].Err)
	assert.Equal(t, rkind.MultipleIndicesForbidden, results[1].Err.(*rkind.Error).Kind)
}
