package materialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/internal/rkind"
	"github.com/indexkit/iner/internal/sysaccess"
)

func buildSnapshot() *clustermeta.Snapshot {
	b := clustermeta.NewBuilder()
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: "logs-1"})
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: "logs-2"})
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: "logs-old", State: clustermeta.Closed})
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: "logs-frozen", Frozen: true})
	b.AddAlias(clustermeta.IndexAbstraction{
		Name:       "logs",
		Indices:    []string{"logs-1", "logs-2"},
		WriteIndex: "",
	})
	b.AddIndexMetadata(clustermeta.IndexMetadata{Name: "events-000001"})
	b.AddIndexMetadata(clustermeta.IndexMetadata{Name: "events-000002"})
	b.AddDataStream(clustermeta.IndexAbstraction{
		Name:    "events",
		Indices: []string{"events-000001", "events-000002"},
	})
	return b.Build()
}

func defaultOptions() Options {
	return Options{IncludeDataStreams: true}
}

func TestMaterialize_SimplePassThrough(t *testing.T) {
	snap := buildSnapshot()
	got, err := Materialize(snap, []string{"logs-1"}, 1, defaultOptions(), sysaccess.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"logs-1"}, got)
}

func TestMaterialize_AliasMultipleIndicesForbidden(t *testing.T) {
	snap := buildSnapshot()
	opts := defaultOptions()
	_, err := Materialize(snap, []string{"logs"}, 1, opts, sysaccess.Filter{})
	require.Error(t, err)
	assert.Equal(t, rkind.MultipleIndicesForbidden, err.(*rkind.Error).Kind)
}

func TestMaterialize_AliasMultipleIndicesAllowed(t *testing.T) {
	snap := buildSnapshot()
	opts := defaultOptions()
	opts.AllowAliasesToMultipleIndices = true
	got, err := Materialize(snap, []string{"logs"}, 1, opts, sysaccess.Filter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"logs-1", "logs-2"}, got)
}

func TestMaterialize_ResolveToWriteIndex(t *testing.T) {
	snap := buildSnapshot()
	opts := defaultOptions()
	opts.ResolveToWriteIndex = true
	got, err := Materialize(snap, []string{"events"}, 1, opts, sysaccess.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"events-000002"}, got)
}

func TestMaterialize_NoWriteIndexOnAlias(t *testing.T) {
	snap := buildSnapshot()
	opts := defaultOptions()
	opts.ResolveToWriteIndex = true
	_, err := Materialize(snap, []string{"logs"}, 1, opts, sysaccess.Filter{})
	require.Error(t, err)
	assert.Equal(t, rkind.NoWriteIndex, err.(*rkind.Error).Kind)
}

func TestMaterialize_ClosedIndexForbidden(t *testing.T) {
	snap := buildSnapshot()
	opts := defaultOptions()
	opts.ForbidClosedIndices = true
	_, err := Materialize(snap, []string{"logs-old"}, 1, opts, sysaccess.Filter{})
	require.Error(t, err)
	assert.Equal(t, rkind.IndexClosed, err.(*rkind.Error).Kind)
}

func TestMaterialize_ClosedIndexSkippedWhenIgnoreUnavailable(t *testing.T) {
	snap := buildSnapshot()
	opts := defaultOptions()
	opts.ForbidClosedIndices = true
	opts.IgnoreUnavailable = true
	opts.AllowNoIndices = true
	got, err := Materialize(snap, []string{"logs-old"}, 1, opts, sysaccess.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMaterialize_ThrottledFilterSkipsFrozen(t *testing.T) {
	snap := buildSnapshot()
	opts := defaultOptions()
	opts.IgnoreThrottled = true
	opts.AllowNoIndices = true
	got, err := Materialize(snap, []string{"logs-frozen"}, 1, opts, sysaccess.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMaterialize_MissingSingleExpressionPolicy(t *testing.T) {
	snap := buildSnapshot()
	opts := defaultOptions()
	_, err := Materialize(snap, []string{"missing"}, 1, opts, sysaccess.Filter{})
	require.Error(t, err)
	assert.Equal(t, rkind.IndexNotFound, err.(*rkind.Error).Kind)

	opts.IgnoreUnavailable = true
	got, err := Materialize(snap, []string{"missing"}, 1, opts, sysaccess.Filter{})
	require.Error(t, err, "single-expression arity is governed by allow_no_indices, not ignore_unavailable")
	_ = got
}

func TestMaterialize_MissingMultiExpressionPolicy(t *testing.T) {
	snap := buildSnapshot()
	opts := defaultOptions()
	opts.IgnoreUnavailable = true
	got, err := Materialize(snap, []string{"missing", "logs-1"}, 2, opts, sysaccess.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"logs-1"}, got)
}

func TestMaterialize_CrossClusterRejected(t *testing.T) {
	snap := buildSnapshot()
	_, err := Materialize(snap, []string{"remote:logs-1"}, 1, defaultOptions(), sysaccess.Filter{})
	require.Error(t, err)
	assert.Equal(t, rkind.CrossClusterUnsupported, err.(*rkind.Error).Kind)
}

func TestMaterialize_ExcludedDataStreamAnnotatesError(t *testing.T) {
	snap := buildSnapshot()
	opts := Options{IncludeDataStreams: false}
	_, err := Materialize(snap, []string{"events"}, 1, opts, sysaccess.Filter{})
	require.Error(t, err)
	rerr := err.(*rkind.Error)
	assert.Equal(t, rkind.IndexNotFound, rerr.Kind)
	assert.Equal(t, "true", rerr.Metadata["es.excluded_ds"])
}

func TestMaterialize_BackwardsCompatibleSkipsNetNew(t *testing.T) {
	snap := buildSnapshot()
	opts := defaultOptions()
	opts.AllowNoIndices = true
	sf := sysaccess.Filter{
		AccessLevel:    sysaccess.BackwardsCompatibleOnly,
		IsNetNewSystem: func(name string) bool { return name == "logs-1" },
	}
	got, err := Materialize(snap, []string{"logs-1"}, 1, opts, sf)
	require.NoError(t, err)
	assert.Empty(t, got)
}
