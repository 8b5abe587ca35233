// Package testutil is a YAML-driven scenario harness, grounded on the
// teacher's testutil.ReadTests/RunTest pattern: each YAML file maps a
// test name to a TestCase describing a cluster shape, an expression
// list, an option set, and the expected outcome.
package testutil

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/indexkit/iner"
	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/deprecation"
)

// IndexFixture describes one backing index in a TestCase's Snapshot.
type IndexFixture struct {
	Name     string
	State    string // "OPEN" (default) or "CLOSE"
	IsSystem bool   `yaml:"is_system"`
	Hidden   bool
	Frozen   bool
}

// AliasFixture describes one alias in a TestCase's Snapshot.
type AliasFixture struct {
	Name             string
	Indices          []string
	WriteIndex       string `yaml:"write_index"`
	IsFilteringAlias bool   `yaml:"is_filtering_alias"`
}

// DataStreamFixture describes one data stream in a TestCase's Snapshot.
type DataStreamFixture struct {
	Name               string
	Indices            []string
	WriteIndex         string `yaml:"write_index"`
	AllowCustomRouting bool   `yaml:"allow_custom_routing"`
}

// SnapshotFixture is the cluster shape a TestCase resolves against.
type SnapshotFixture struct {
	Indices     []IndexFixture
	Aliases     []AliasFixture
	DataStreams []DataStreamFixture `yaml:"data_streams"`
}

// Build materializes the fixture into a clustermeta.Snapshot.
func (f SnapshotFixture) Build() *clustermeta.Snapshot {
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
			Name:             alias.Name,
			Indices:          alias.Indices,
			WriteIndex:       alias.WriteIndex,
			IsFilteringAlias: alias.IsFilteringAlias,
		})
	}
	return b.Build()
}

// OptionsFixture mirrors iner.IndicesOptions in YAML-friendly form.
type OptionsFixture struct {
	IgnoreUnavailable             bool `yaml:"ignore_unavailable"`
	AllowNoIndices                bool `yaml:"allow_no_indices"`
	ExpandWildcardsOpen           bool `yaml:"expand_wildcards_open"`
	ExpandWildcardsClosed         bool `yaml:"expand_wildcards_closed"`
	ExpandWildcardsHidden         bool `yaml:"expand_wildcards_hidden"`
	AllowAliasesToMultipleIndices bool `yaml:"allow_aliases_to_multiple_indices"`
	ForbidClosedIndices           bool `yaml:"forbid_closed_indices"`
	IgnoreAliases                 bool `yaml:"ignore_aliases"`
	IgnoreThrottled               bool `yaml:"ignore_throttled"`
	ExpandWildcardExpressions     bool `yaml:"expand_wildcard_expressions"`
}

func (f OptionsFixture) Build() iner.IndicesOptions {
	return iner.IndicesOptions{
		IgnoreUnavailable: f.IgnoreUnavailable,
		AllowNoIndices:    f.AllowNoIndices,
		ExpandWildcards: iner.WildcardStates{
			Open:   f.ExpandWildcardsOpen,
			Closed: f.ExpandWildcardsClosed,
			Hidden: f.ExpandWildcardsHidden,
		},
		AllowAliasesToMultipleIndices: f.AllowAliasesToMultipleIndices,
		ForbidClosedIndices:           f.ForbidClosedIndices,
		IgnoreAliases:                 f.IgnoreAliases,
		IgnoreThrottled:               f.IgnoreThrottled,
		ExpandWildcardExpressions:     f.ExpandWildcardExpressions,
	}
}

// TestCase is one named resolution scenario.
type TestCase struct {
	Snapshot            SnapshotFixture
	Expressions         []string
	Options             OptionsFixture
	ResolveToWriteIndex bool     `yaml:"resolve_to_write_index"`
	IncludeDataStreams  bool     `yaml:"include_data_streams"`
	ExpectNames         []string `yaml:"expect_names"`
	ExpectErrorKind     string   `yaml:"expect_error_kind"`
}

// ReadTests loads every YAML file matching pattern (via filepath.Glob)
// into a map of test name to TestCase. Duplicate names across files
// are a fatal error, matching the teacher's ReadTests.
func ReadTests(pattern string) (map[string]TestCase, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	ret := map[string]TestCase{}
	for _, file := range files {
		buf, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}

		var tests map[string]*TestCase
		dec := yaml.NewDecoder(bytes.NewReader(buf))
		dec.KnownFields(true)
		if err := dec.Decode(&tests); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}

		for name, test := range tests {
			if _, ok := ret[name]; ok {
				log.Fatalf("there are multiple test cases named %q", name)
			}
			ret[name] = *test
		}
	}
	return ret, nil
}

// RunTest builds tc's snapshot, resolves its expressions, and asserts
// the result against tc's expectation.
func RunTest(t *testing.T, tc TestCase) {
	t.Helper()

	snap := tc.Snapshot.Build()
	ctx := &iner.Context{
		Snapshot:            snap,
		Options:             tc.Options.Build(),
		ResolveToWriteIndex: tc.ResolveToWriteIndex,
		IncludeDataStreams:  tc.IncludeDataStreams,
	}

	r := iner.NewResolver(deprecation.NullLogger{})
	got, err := r.ResolveConcreteIndexNames(ctx, tc.Expressions)

	if tc.ExpectErrorKind != "" {
		if err == nil {
			t.Fatalf("expected error kind %s, got no error", tc.ExpectErrorKind)
		}
		rerr, ok := err.(*iner.ResolutionError)
		if !ok {
			t.Fatalf("expected a *iner.ResolutionError, got %T: %v", err, err)
		}
		assert.Equal(t, tc.ExpectErrorKind, rerr.Kind.String())
		return
	}

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, tc.ExpectNames, got)
}
