package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/snapshotstore"
)

// fixture is the YAML snapshot shape inerctl reads from --snapshot,
// the same field names testutil.SnapshotFixture uses for scenario
// fixtures (kept as a separate, testing-free type here so this binary
// doesn't pull the testing package into its import graph).
type fixture struct {
	Indices []struct {
		Name     string
		State    string
		IsSystem bool `yaml:"is_system"`
		Hidden   bool
		Frozen   bool
	}
	Aliases []struct {
		Name       string
		Indices    []string
		WriteIndex string `yaml:"write_index"`
	}
	DataStreams []struct {
		Name               string
		Indices            []string
		WriteIndex         string `yaml:"write_index"`
		AllowCustomRouting bool   `yaml:"allow_custom_routing"`
	} `yaml:"data_streams"`
}

func (f fixture) build() *clustermeta.Snapshot {
	b := clustermeta.NewBuilder()
	for _, idx := range f.Indices {
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
	for _, ds := range f.DataStreams {
		for _, name := range ds.Indices {
			b.AddIndexMetadata(clustermeta.IndexMetadata{Name: name})
		}
		b.AddDataStream(clustermeta.IndexAbstraction{
			Name:               ds.Name,
			Indices:            ds.Indices,
			WriteIndex:         ds.WriteIndex,
			AllowCustomRouting: ds.AllowCustomRouting,
		})
	}
	for _, alias := range f.Aliases {
		b.AddAlias(clustermeta.IndexAbstraction{
			Name:       alias.Name,
			Indices:    alias.Indices,
			WriteIndex: alias.WriteIndex,
		})
	}
	return b.Build()
}

// loadSnapshot reads a clustermeta.Snapshot from whichever source
// opts specifies: a YAML fixture or a snapshotstore SQLite file.
func loadSnapshot(opts *Options) (*clustermeta.Snapshot, error) {
	if opts.DBFile != "" {
		store, err := snapshotstore.Open(opts.DBFile)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", opts.DBFile, err)
		}
		defer store.Close()
		return store.Load()
	}

	buf, err := os.ReadFile(opts.SnapshotFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.SnapshotFile, err)
	}
	var f fixture
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", opts.SnapshotFile, err)
	}
	return f.build(), nil
}
