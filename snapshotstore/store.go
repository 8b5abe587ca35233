// Package snapshotstore persists a clustermeta.Snapshot to a SQLite
// file and reloads it, so the CLI and integration tests can work
// against a saved cluster shape without standing up a live cluster.
// This is not the resolver's hot path: nothing in internal/datemath,
// internal/wildcard, or internal/materialize depends on this package.
package snapshotstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/indexkit/iner/clustermeta"
)

const schema = `
create table if not exists indices (
	name      text primary key,
	state     text not null,
	is_system integer not null default 0,
	hidden    integer not null default 0,
	frozen    integer not null default 0,
	parent    text not null default ''
);
create table if not exists aliases (
	name                text primary key,
	indices_json        text not null,
	write_index         text not null default '',
	is_filtering_alias  integer not null default 0,
	routing_values_json text not null default '{}',
	hidden              integer not null default 0,
	is_system           integer not null default 0
);
create table if not exists data_streams (
	name                 text primary key,
	indices_json         text not null,
	write_index          text not null default '',
	allow_custom_routing integer not null default 0,
	hidden               integer not null default 0,
	is_system            integer not null default 0
);
`

// Store is a handle onto a SQLite-backed snapshot file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite file at path and ensures
// its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshotstore: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the store's contents with snap's. Runs inside a single
// transaction: a failure leaves the previous contents untouched.
func (s *Store) Save(snap *clustermeta.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"indices", "aliases", "data_streams"} {
		if _, err := tx.Exec("delete from " + table); err != nil {
			return fmt.Errorf("snapshotstore: clear %s: %w", table, err)
		}
	}

	for _, meta := range snap.AllIndexMetadata() {
		_, err := tx.Exec(
			`insert into indices (name, state, is_system, hidden, frozen, parent) values (?, ?, ?, ?, ?, ?)`,
			meta.Name, meta.State.String(), meta.IsSystem, meta.Hidden, meta.Frozen, meta.Parent,
		)
		if err != nil {
			return fmt.Errorf("snapshotstore: insert index %q: %w", meta.Name, err)
		}
	}

	for _, abs := range snap.AllAbstractions() {
		switch abs.Kind {
		case clustermeta.KindAlias:
			indicesJSON, err := json.Marshal(abs.Indices)
			if err != nil {
				return err
			}
			routingJSON, err := json.Marshal(abs.RoutingValues)
			if err != nil {
				return err
			}
			_, err = tx.Exec(
				`insert into aliases (name, indices_json, write_index, is_filtering_alias, routing_values_json, hidden, is_system) values (?, ?, ?, ?, ?, ?, ?)`,
				abs.Name, string(indicesJSON), abs.WriteIndex, abs.IsFilteringAlias, string(routingJSON), abs.Hidden, abs.IsSystem,
			)
			if err != nil {
				return fmt.Errorf("snapshotstore: insert alias %q: %w", abs.Name, err)
			}
		case clustermeta.KindDataStream:
			indicesJSON, err := json.Marshal(abs.Indices)
			if err != nil {
				return err
			}
			_, err = tx.Exec(
				`insert into data_streams (name, indices_json, write_index, allow_custom_routing, hidden, is_system) values (?, ?, ?, ?, ?, ?)`,
				abs.Name, string(indicesJSON), abs.WriteIndex, abs.AllowCustomRouting, abs.Hidden, abs.IsSystem,
			)
			if err != nil {
				return fmt.Errorf("snapshotstore: insert data stream %q: %w", abs.Name, err)
			}
		}
	}

	return tx.Commit()
}

// Load rebuilds a clustermeta.Snapshot from the store's contents.
func (s *Store) Load() (*clustermeta.Snapshot, error) {
	b := clustermeta.NewBuilder()

	concreteNames, err := s.loadIndices(b)
	if err != nil {
		return nil, err
	}
	if err := s.loadDataStreams(b, concreteNames); err != nil {
		return nil, err
	}
	if err := s.loadAliases(b); err != nil {
		return nil, err
	}

	return b.Build(), nil
}

// loadIndices loads every backing index's metadata and registers a
// CONCRETE_INDEX abstraction for ones with no recorded parent data
// stream; it returns the set of names it registered as standalone.
// loadDataStreams takes that set but does not consult it:
// AddDataStream never registers backing indices as abstractions.
func (s *Store) loadIndices(b *clustermeta.Builder) (map[string]bool, error) {
	rows, err := s.db.Query(`select name, state, is_system, hidden, frozen, parent from indices`)
	if err != nil {
		return nil, fmt.Errorf("snapshotstore: query indices: %w", err)
	}
	defer rows.Close()

	standalone := make(map[string]bool)
	for rows.Next() {
		var name, state, parent string
		var isSystem, hidden, frozen bool
		if err := rows.Scan(&name, &state, &isSystem, &hidden, &frozen, &parent); err != nil {
			return nil, err
		}
		meta := clustermeta.IndexMetadata{
			Name:     name,
			IsSystem: isSystem,
			Hidden:   hidden,
			Frozen:   frozen,
			Parent:   parent,
		}
		if state == "CLOSE" {
			meta.State = clustermeta.Closed
		}
		if parent == "" {
			b.AddConcreteIndex(meta)
			standalone[name] = true
		} else {
			b.AddIndexMetadata(meta)
		}
	}
	return standalone, rows.Err()
}

func (s *Store) loadDataStreams(b *clustermeta.Builder, standalone map[string]bool) error {
	rows, err := s.db.Query(`select name, indices_json, write_index, allow_custom_routing, hidden, is_system from data_streams`)
	if err != nil {
		return fmt.Errorf("snapshotstore: query data_streams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, indicesJSON, writeIndex string
		var allowCustomRouting, hidden, isSystem bool
		if err := rows.Scan(&name, &indicesJSON, &writeIndex, &allowCustomRouting, &hidden, &isSystem); err != nil {
			return err
		}
		var indices []string
		if err := json.Unmarshal([]byte(indicesJSON), &indices); err != nil {
			return fmt.Errorf("snapshotstore: decode data stream %q indices: %w", name, err)
		}
		b.AddDataStream(clustermeta.IndexAbstraction{
			Name:               name,
			Indices:            indices,
			WriteIndex:         writeIndex,
			AllowCustomRouting: allowCustomRouting,
			Hidden:             hidden,
			IsSystem:           isSystem,
		})
	}
	return rows.Err()
}

func (s *Store) loadAliases(b *clustermeta.Builder) error {
	rows, err := s.db.Query(`select name, indices_json, write_index, is_filtering_alias, routing_values_json, hidden, is_system from aliases`)
	if err != nil {
		return fmt.Errorf("snapshotstore: query aliases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, indicesJSON, writeIndex, routingJSON string
		var isFilteringAlias, hidden, isSystem bool
		if err := rows.Scan(&name, &indicesJSON, &writeIndex, &isFilteringAlias, &routingJSON, &hidden, &isSystem); err != nil {
			return err
		}
		var indices []string
		if err := json.Unmarshal([]byte(indicesJSON), &indices); err != nil {
			return fmt.Errorf("snapshotstore: decode alias %q indices: %w", name, err)
		}
		var routingValues map[string][]string
		if err := json.Unmarshal([]byte(routingJSON), &routingValues); err != nil {
			return fmt.Errorf("snapshotstore: decode alias %q routing values: %w", name, err)
		}
		b.AddAlias(clustermeta.IndexAbstraction{
			Name:             name,
			Indices:          indices,
			WriteIndex:       writeIndex,
			IsFilteringAlias: isFilteringAlias,
			RoutingValues:    routingValues,
			Hidden:           hidden,
			IsSystem:         isSystem,
		})
	}
	return rows.Err()
}
