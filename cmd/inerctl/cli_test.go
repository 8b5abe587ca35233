package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptions_IndicesOptionsProjection(t *testing.T) {
	opts := &Options{
		IgnoreUnavailable: true,
		AllowNoIndices:    true,
		ExpandOpen:        true,
		ExpandHidden:      true,
	}
	got := opts.indicesOptions()
	assert.True(t, got.IgnoreUnavailable)
	assert.True(t, got.AllowNoIndices)
	assert.True(t, got.ExpandWildcards.Open)
	assert.True(t, got.ExpandWildcards.Hidden)
	assert.False(t, got.ExpandWildcards.Closed)
	assert.True(t, got.ExpandWildcardExpressions)
}

func TestFixture_BuildRegistersAbstractions(t *testing.T) {
	f := fixture{
		Indices: []struct {
			Name     string
			State    string
			IsSystem bool `yaml:"is_system"`
			Hidden   bool
			Frozen   bool
		}{
			{Name: "logs-1"},
		},
	}
	snap := f.build()
	_, ok := snap.Lookup("logs-1")
	assert.True(t, ok)
}
