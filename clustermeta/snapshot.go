package clustermeta

import (
	iradix "github.com/hashicorp/go-immutable-radix"
)

// Snapshot is an immutable, point-in-time view of cluster metadata. A
// Snapshot is safe to share across any number of concurrent resolution
// calls without locking: the backing radix tree is a persistent data
// structure, so no reader ever observes a partial mutation, and nothing
// about resolution ever writes back into it.
//
// The abstraction lookup is backed by an immutable radix tree rather
// than a plain map specifically because the wildcard resolver needs an
// ordered, prefix-scannable index (spec.md §4.2, the "prefix*" fast
// path): an unordered map would force a full O(N) scan for every
// suffix wildcard.
type Snapshot struct {
	abstractions *iradix.Tree // name -> *IndexAbstraction, ordered by name
	indices      map[string]*IndexMetadata
	dsAliases    map[string]*DataStreamAlias
}

// Lookup returns the abstraction registered under name, if any.
func (s *Snapshot) Lookup(name string) (*IndexAbstraction, bool) {
	v, ok := s.abstractions.Get([]byte(name))
	if !ok {
		return nil, false
	}
	return v.(*IndexAbstraction), true
}

// Index returns the metadata for the backing index identified by id
// (in this model, a backing index's id and name coincide).
func (s *Snapshot) Index(id string) (*IndexMetadata, bool) {
	m, ok := s.indices[id]
	return m, ok
}

// DataStreamAliases returns the full name -> DataStreamAlias mapping.
func (s *Snapshot) DataStreamAliases() map[string]*DataStreamAlias {
	return s.dsAliases
}

// AllAbstractions returns every abstraction in the snapshot, ordered by
// name. Used for the "all indices" selection and for full (non-prefix)
// wildcard scans.
func (s *Snapshot) AllAbstractions() []*IndexAbstraction {
	out := make([]*IndexAbstraction, 0, s.abstractions.Len())
	it := s.abstractions.Root().Iterator()
	for {
		_, v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v.(*IndexAbstraction))
	}
	return out
}

// AbstractionsByPrefix returns every abstraction whose name begins with
// prefix, ordered by name. This is the suffix-wildcard ("prefix*") fast
// path: rather than scanning every abstraction, it range-scans the
// subtree rooted at prefix.
func (s *Snapshot) AbstractionsByPrefix(prefix string) []*IndexAbstraction {
	var out []*IndexAbstraction
	it := s.abstractions.Root().Iterator()
	it.SeekPrefix([]byte(prefix))
	for {
		_, v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v.(*IndexAbstraction))
	}
	return out
}

// Len reports the number of registered abstractions.
func (s *Snapshot) Len() int {
	return s.abstractions.Len()
}

// AllIndexMetadata returns every backing index's metadata, including
// indices that are only ever referenced as a data stream's backing
// index (and so have no standalone CONCRETE_INDEX abstraction). Order
// is unspecified.
func (s *Snapshot) AllIndexMetadata() []*IndexMetadata {
	out := make([]*IndexMetadata, 0, len(s.indices))
	for _, m := range s.indices {
		out = append(out, m)
	}
	return out
}

// Builder assembles an immutable Snapshot. A Builder is not safe for
// concurrent use; Build() the result and share the Snapshot instead.
type Builder struct {
	tree      *iradix.Tree
	indices   map[string]*IndexMetadata
	dsAliases map[string]*DataStreamAlias
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		tree:      iradix.New(),
		indices:   make(map[string]*IndexMetadata),
		dsAliases: make(map[string]*DataStreamAlias),
	}
}

// AddIndexMetadata registers the metadata for a backing index without
// creating a CONCRETE_INDEX abstraction for it. Used when the index is
// only ever referenced as a data-stream backing index.
func (b *Builder) AddIndexMetadata(meta IndexMetadata) *Builder {
	m := meta
	b.indices[meta.Name] = &m
	return b
}

// AddConcreteIndex registers a standalone index: both its metadata and
// its CONCRETE_INDEX abstraction.
func (b *Builder) AddConcreteIndex(meta IndexMetadata) *Builder {
	b.AddIndexMetadata(meta)
	abs := &IndexAbstraction{
		Name:     meta.Name,
		Kind:     KindConcreteIndex,
		Indices:  []string{meta.Name},
		Hidden:   meta.Hidden,
		IsSystem: meta.IsSystem,
	}
	b.tree, _, _ = b.tree.Insert([]byte(meta.Name), abs)
	return b
}

// AddAlias registers an alias abstraction over the given (already
// registered) backing index names.
func (b *Builder) AddAlias(alias IndexAbstraction) *Builder {
	alias.Kind = KindAlias
	a := alias
	b.tree, _, _ = b.tree.Insert([]byte(alias.Name), &a)
	return b
}

// AddDataStream registers a data-stream abstraction over the given
// (already registered) backing index names, which must be supplied in
// write-order with the last element as the write index.
func (b *Builder) AddDataStream(ds IndexAbstraction) *Builder {
	ds.Kind = KindDataStream
	if ds.WriteIndex == "" && len(ds.Indices) > 0 {
		ds.WriteIndex = ds.Indices[len(ds.Indices)-1]
	}
	for _, name := range ds.Indices {
		if m, ok := b.indices[name]; ok {
			m.Parent = ds.Name
		}
	}
	d := ds
	b.tree, _, _ = b.tree.Insert([]byte(ds.Name), &d)
	return b
}

// AddDataStreamAlias registers a data-stream alias.
func (b *Builder) AddDataStreamAlias(dsa DataStreamAlias) *Builder {
	a := dsa
	b.dsAliases[dsa.Name] = &a
	return b
}

// Build finalizes the snapshot. The Builder remains usable afterward;
// each Build() call is cheap since the underlying tree is persistent.
func (b *Builder) Build() *Snapshot {
	indices := make(map[string]*IndexMetadata, len(b.indices))
	for k, v := range b.indices {
		m := *v
		indices[k] = &m
	}
	dsAliases := make(map[string]*DataStreamAlias, len(b.dsAliases))
	for k, v := range b.dsAliases {
		a := *v
		dsAliases[k] = &a
	}
	return &Snapshot{
		abstractions: b.tree,
		indices:      indices,
		dsAliases:    dsAliases,
	}
}
