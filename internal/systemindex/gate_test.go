package systemindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/internal/rkind"
	"github.com/indexkit/iner/internal/sysaccess"
)

type fakeSink struct {
	category, key string
	payload       any
}

func (f *fakeSink) Emit(category, key string, payload any) {
	f.category, f.key, f.payload = category, key, payload
}

func buildSnapshot() *clustermeta.Snapshot {
	b := clustermeta.NewBuilder()
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: ".tasks", IsSystem: true})
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: ".new-feature", IsSystem: true})
	b.AddIndexMetadata(clustermeta.IndexMetadata{Name: ".ds-events-000001", IsSystem: true, Parent: ".events"})
	b.AddConcreteIndex(clustermeta.IndexMetadata{Name: "logs-1"})
	return b.Build()
}

func TestGate_AccessLevelAllSkipsEverything(t *testing.T) {
	snap := buildSnapshot()
	got, err := Gate(snap, []string{".tasks", "logs-1"}, sysaccess.Filter{AccessLevel: sysaccess.All}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".tasks", "logs-1"}, got)
}

func TestGate_HistoricRejectionEmitsDeprecationNotErrors(t *testing.T) {
	snap := buildSnapshot()
	sink := &fakeSink{}
	got, err := Gate(snap, []string{".tasks", "logs-1"}, sysaccess.Filter{AccessLevel: sysaccess.Restricted}, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{".tasks", "logs-1"}, got)
	assert.Equal(t, "API", sink.category)
	assert.Equal(t, "open_system_index_access", sink.key)
	assert.Equal(t, []string{".tasks"}, sink.payload)
}

func TestGate_NetNewRejected(t *testing.T) {
	snap := buildSnapshot()
	sf := sysaccess.Filter{
		AccessLevel:    sysaccess.Restricted,
		IsNetNewSystem: func(name string) bool { return name == ".new-feature" },
	}
	_, err := Gate(snap, []string{".new-feature"}, sf, nil)
	require.Error(t, err)
	assert.Equal(t, rkind.SystemNetNewAccessDenied, err.(*rkind.Error).Kind)
}

func TestGate_DataStreamOwnedRejected(t *testing.T) {
	snap := buildSnapshot()
	_, err := Gate(snap, []string{".ds-events-000001"}, sysaccess.Filter{AccessLevel: sysaccess.Restricted}, nil)
	require.Error(t, err)
	rerr := err.(*rkind.Error)
	assert.Equal(t, rkind.SystemDataStreamAccessDenied, rerr.Kind)
	assert.Equal(t, []string{".events"}, rerr.Expressions)
}

func TestGate_AccessGrantedAdmitsName(t *testing.T) {
	snap := buildSnapshot()
	sf := sysaccess.Filter{
		AccessLevel:  sysaccess.Restricted,
		SystemAccess: func(name string) bool { return name == ".tasks" },
	}
	got, err := Gate(snap, []string{".tasks"}, sf, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".tasks"}, got)
}

func TestRegistry_PredicatesReflectAllowAndNetNew(t *testing.T) {
	reg := NewRegistry().Allow(".tasks").MarkNetNew(".new-feature")
	assert.True(t, reg.SystemAccess(".tasks"))
	assert.False(t, reg.SystemAccess(".new-feature"))
	assert.True(t, reg.IsNetNewSystem(".new-feature"))
	assert.False(t, reg.IsNetNewSystem(".tasks"))
}
