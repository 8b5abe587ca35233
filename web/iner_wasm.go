// This is a light wasm wrapper around the resolver pipeline. You don't
// need to include this in your website.
package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/indexkit/iner"
	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/deprecation"
)

// wasmSnapshot is the JSON shape a browser caller hands in: the same
// concrete-index/alias/data-stream triple clustermeta.Builder expects,
// spelled with lowercase field names for plain JS object literals.
type wasmSnapshot struct {
	Indices []struct {
		Name     string `json:"name"`
		State    string `json:"state"`
		IsSystem bool   `json:"is_system"`
		Hidden   bool   `json:"hidden"`
		Frozen   bool   `json:"frozen"`
	} `json:"indices"`
	Aliases []struct {
		Name       string   `json:"name"`
		Indices    []string `json:"indices"`
		WriteIndex string   `json:"write_index"`
	} `json:"aliases"`
	DataStreams []struct {
		Name               string   `json:"name"`
		Indices            []string `json:"indices"`
		WriteIndex         string   `json:"write_index"`
		AllowCustomRouting bool     `json:"allow_custom_routing"`
	} `json:"data_streams"`
}

func (s wasmSnapshot) build() *clustermeta.Snapshot {
	b := clustermeta.NewBuilder()
	for _, idx := range s.Indices {
		meta := clustermeta.IndexMetadata{
			Name:     idx.Name,
			IsSystem: idx.IsSystem,
			Hidden:   idx.Hidden,
			Frozen:   idx.Frozen,
		}
		if idx.State == "CLOSE" {
			meta.State = clustermeta.Closed
		}
		b.AddConcreteIndex(meta)
	}
	for _, ds := range s.DataStreams {
		for _, name := range ds.Indices {
			b.AddIndexMetadata(clustermeta.IndexMetadata{Name: name, Parent: ds.Name})
		}
		b.AddDataStream(clustermeta.IndexAbstraction{
			Name:               ds.Name,
			Indices:            ds.Indices,
			WriteIndex:         ds.WriteIndex,
			AllowCustomRouting: ds.AllowCustomRouting,
		})
	}
	for _, alias := range s.Aliases {
		b.AddAlias(clustermeta.IndexAbstraction{
			Name:       alias.Name,
			Indices:    alias.Indices,
			WriteIndex: alias.WriteIndex,
		})
	}
	return b.Build()
}

// wasmOptions mirrors iner.IndicesOptions for JSON decoding.
type wasmOptions struct {
	IgnoreUnavailable             bool `json:"ignore_unavailable"`
	AllowNoIndices                bool `json:"allow_no_indices"`
	ExpandOpen                    bool `json:"expand_open"`
	ExpandClosed                  bool `json:"expand_closed"`
	ExpandHidden                  bool `json:"expand_hidden"`
	AllowAliasesToMultipleIndices bool `json:"allow_aliases_to_multiple_indices"`
	ForbidClosedIndices           bool `json:"forbid_closed_indices"`
	IgnoreAliases                 bool `json:"ignore_aliases"`
	IgnoreThrottled               bool `json:"ignore_throttled"`
	ResolveToWriteIndex           bool `json:"resolve_to_write_index"`
	IncludeDataStreams            bool `json:"include_data_streams"`
}

func (o wasmOptions) indicesOptions() iner.IndicesOptions {
	return iner.IndicesOptions{
		IgnoreUnavailable: o.IgnoreUnavailable,
		AllowNoIndices:    o.AllowNoIndices,
		ExpandWildcards: iner.WildcardStates{
			Open:   o.ExpandOpen,
			Closed: o.ExpandClosed,
			Hidden: o.ExpandHidden,
		},
		AllowAliasesToMultipleIndices: o.AllowAliasesToMultipleIndices,
		ForbidClosedIndices:           o.ForbidClosedIndices,
		IgnoreAliases:                 o.IgnoreAliases,
		IgnoreThrottled:               o.IgnoreThrottled,
		ExpandWildcardExpressions:     true,
	}
}

var resolver = iner.NewResolver(deprecation.NewLogger(nil))

// resolve(snapshotJSON, expressionsJSON, optionsJSON, callback) mirrors
// the teacher's diff(): decode the JS-supplied arguments, run the real
// Go pipeline, and hand the result back through a Node-style
// (err, result) callback since wasm has no way to return a Go error
// directly to JS.
func resolve(this js.Value, args []js.Value) interface{} {
	var snap wasmSnapshot
	var exprs []string
	var opts wasmOptions
	callback := args[3]

	if err := json.Unmarshal([]byte(args[0].String()), &snap); err != nil {
		callback.Invoke(err.Error(), js.Null())
		return nil
	}
	if err := json.Unmarshal([]byte(args[1].String()), &exprs); err != nil {
		callback.Invoke(err.Error(), js.Null())
		return nil
	}
	if err := json.Unmarshal([]byte(args[2].String()), &opts); err != nil {
		callback.Invoke(err.Error(), js.Null())
		return nil
	}

	ctx := &iner.Context{
		Snapshot:            snap.build(),
		Options:             opts.indicesOptions(),
		ResolveToWriteIndex: opts.ResolveToWriteIndex,
		IncludeDataStreams:  opts.IncludeDataStreams,
	}

	names, err := resolver.ResolveConcreteIndexNames(ctx, exprs)
	if err != nil {
		callback.Invoke(err.Error(), js.Null())
		return nil
	}

	out, err := json.Marshal(names)
	if err != nil {
		callback.Invoke(err.Error(), js.Null())
		return nil
	}
	callback.Invoke(js.Null(), string(out))
	return true
}

func main() {
	c := make(chan bool)
	// I wish this wasn't global!
	js.Global().Set("_INER", js.FuncOf(resolve))
	<-c
}
