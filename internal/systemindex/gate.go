// Package systemindex implements spec.md §4.4: the post-materialization
// access gate that enforces system-index visibility against an already
// materialized concrete-index set, and its supporting registry.
package systemindex

import (
	"sort"

	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/internal/rkind"
	"github.com/indexkit/iner/internal/sysaccess"
)

// DeprecationSink receives the one deprecation event §4.4 allows:
// historic system index access, fixed category "API" and key
// "open_system_index_access".
type DeprecationSink interface {
	Emit(category, key string, payload any)
}

// Gate enforces access rules against a materialized set of concrete
// index names. It returns the set unchanged (historic-system rejection
// is not an error, only a deprecation notice) or an error for
// data-stream/net-new rejections.
func Gate(snap *clustermeta.Snapshot, names []string, sf sysaccess.Filter, sink DeprecationSink) ([]string, error) {
	if sf.AccessLevel == sysaccess.All {
		return names, nil
	}

	historic := make(map[string]struct{})
	netNew := make(map[string]struct{})
	dataStreams := make(map[string]struct{})

	for _, name := range names {
		meta, ok := snap.Index(name)
		if !ok || !meta.IsSystem {
			continue
		}
		if sf.Access(name) {
			continue
		}

		switch {
		case meta.Parent != "":
			dataStreams[meta.Parent] = struct{}{}
		case sf.NetNew(name):
			netNew[name] = struct{}{}
		default:
			historic[name] = struct{}{}
		}
	}

	if len(historic) > 0 && sink != nil {
		sink.Emit("API", "open_system_index_access", sortedKeys(historic))
	}
	if len(dataStreams) > 0 {
		return nil, rkind.New(rkind.SystemDataStreamAccessDenied,
			"system data streams are not accessible with the current access level", sortedKeys(dataStreams)...)
	}
	if len(netNew) > 0 {
		return nil, rkind.New(rkind.SystemNetNewAccessDenied,
			"net-new system indices are not accessible with the current access level", sortedKeys(netNew)...)
	}
	return names, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
