// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/datalith/catalogd/catalog/partname"
	"github.com/datalith/catalogd/private/kvstore"
)

// AddPartition registers a partition addressed by its explicit value list.
// The canonical name is computed from the owning table's partition keys and
// becomes part of the storage key, so the two addressing modes can never
// diverge. Concurrent adds of the same value list resolve to exactly one
// success; the rest fail with ErrAlreadyExists.
func (db *DB) AddPartition(ctx context.Context, partition Partition) (_ Partition, err error) {
	defer mon.Task()(&ctx)(&err)

	partition.Database = normalizeName(partition.Database)
	partition.Table = normalizeName(partition.Table)

	unlock := db.locks.Lock(tableScope(partition.Database, partition.Table))
	defer unlock()

	table, err := db.GetTable(ctx, partition.Database, partition.Table)
	if err != nil {
		return Partition{}, err
	}

	if len(table.PartitionKeys) == 0 {
		return Partition{}, ErrInvalidSchema.New("table %q.%q is not partitioned", table.Database, table.Name)
	}
	if len(partition.Values) != len(table.PartitionKeys) {
		return Partition{}, ErrInvalidSchema.New(
			"partition of %q.%q has %d values for %d partition keys",
			table.Database, table.Name, len(partition.Values), len(table.PartitionKeys))
	}

	name, err := partname.Encode(table.PartitionKeyNames(), partition.Values)
	if err != nil {
		return Partition{}, ErrInvalidSchema.Wrap(err)
	}
	partition.Name = name

	if partition.LocationURI == "" {
		partition.LocationURI = table.LocationURI + "/" + name
	}
	now := time.Now().UTC()
	partition.CreatedAt = now
	partition.UpdatedAt = now

	record, err := encodeRecord(partition)
	if err != nil {
		return Partition{}, err
	}

	err = db.casCreate(ctx, partitionKey(partition.Database, partition.Table, name), record)
	if kvstore.ErrKeyExists.Has(err) {
		return Partition{}, ErrAlreadyExists.New("partition %q of %q.%q", name, partition.Database, partition.Table)
	}
	if err != nil {
		return Partition{}, err
	}

	db.log.Info("partition added",
		zap.String("database", partition.Database),
		zap.String("table", partition.Table),
		zap.String("partition", name))
	return partition, nil
}

// AppendPartition creates a partition from its value list alone, deriving
// location and properties defaults from the owning table.
func (db *DB) AppendPartition(ctx context.Context, database, table string, values []string) (_ Partition, err error) {
	defer mon.Task()(&ctx)(&err)

	return db.AddPartition(ctx, Partition{
		Database: database,
		Table:    table,
		Values:   values,
	})
}

// AppendPartitionByName creates a partition from its encoded name,
// decoding the value list against the table's partition keys first.
func (db *DB) AppendPartitionByName(ctx context.Context, database, table, name string) (_ Partition, err error) {
	defer mon.Task()(&ctx)(&err)

	values, err := db.decodePartitionName(ctx, database, table, name)
	if err != nil {
		return Partition{}, err
	}
	return db.AppendPartition(ctx, database, table, values)
}

// decodePartitionName resolves a partition name to its value list using the
// table's partition-key schema for arity and order.
func (db *DB) decodePartitionName(ctx context.Context, database, table, name string) ([]string, error) {
	stored, err := db.GetTable(ctx, database, table)
	if err != nil {
		return nil, err
	}
	return partname.Decode(stored.PartitionKeyNames(), name)
}

// GetPartition returns the partition addressed by its value list.
func (db *DB) GetPartition(ctx context.Context, database, table string, values []string) (_ Partition, err error) {
	defer mon.Task()(&ctx)(&err)

	database, table = normalizeName(database), normalizeName(table)

	stored, err := db.GetTable(ctx, database, table)
	if err != nil {
		return Partition{}, err
	}
	return db.getPartition(ctx, &stored, values)
}

// GetPartitionByName returns the partition addressed by its encoded name.
// For any logical partition the result is identical to GetPartition with
// the decoded value list.
func (db *DB) GetPartitionByName(ctx context.Context, database, table, name string) (_ Partition, err error) {
	defer mon.Task()(&ctx)(&err)

	database, table = normalizeName(database), normalizeName(table)

	stored, err := db.GetTable(ctx, database, table)
	if err != nil {
		return Partition{}, err
	}
	values, err := partname.Decode(stored.PartitionKeyNames(), name)
	if err != nil {
		return Partition{}, err
	}
	return db.getPartition(ctx, &stored, values)
}

// getPartition is the single lookup path behind both addressing modes.
func (db *DB) getPartition(ctx context.Context, table *Table, values []string) (Partition, error) {
	if len(values) != len(table.PartitionKeys) {
		return Partition{}, ErrInvalidSchema.New(
			"partition of %q.%q has %d values for %d partition keys",
			table.Database, table.Name, len(values), len(table.PartitionKeys))
	}

	name, err := partname.Encode(table.PartitionKeyNames(), values)
	if err != nil {
		return Partition{}, ErrInvalidSchema.Wrap(err)
	}

	value, err := db.get(ctx, partitionKey(table.Database, table.Name, name))
	if err != nil {
		if kvstore.ErrKeyNotFound.Has(err) {
			return Partition{}, ErrNotFound.New("partition %q of %q.%q", name, table.Database, table.Name)
		}
		return Partition{}, err
	}

	var partition Partition
	if err := decodeRecord(value, &partition); err != nil {
		return Partition{}, err
	}
	partition.Name = name
	return partition, nil
}

// DropPartition removes the partition addressed by its value list. The
// deleteData flag is forwarded to the data sink.
func (db *DB) DropPartition(ctx context.Context, database, table string, values []string, deleteData bool) (err error) {
	defer mon.Task()(&ctx)(&err)

	database, table = normalizeName(database), normalizeName(table)

	unlock := db.locks.Lock(tableScope(database, table))
	defer unlock()

	stored, err := db.GetTable(ctx, database, table)
	if err != nil {
		return err
	}
	return db.dropPartitionLocked(ctx, &stored, values, deleteData)
}

// DropPartitionByName removes the partition addressed by its encoded name.
func (db *DB) DropPartitionByName(ctx context.Context, database, table, name string, deleteData bool) (err error) {
	defer mon.Task()(&ctx)(&err)

	database, table = normalizeName(database), normalizeName(table)

	unlock := db.locks.Lock(tableScope(database, table))
	defer unlock()

	stored, err := db.GetTable(ctx, database, table)
	if err != nil {
		return err
	}
	values, err := partname.Decode(stored.PartitionKeyNames(), name)
	if err != nil {
		return err
	}
	return db.dropPartitionLocked(ctx, &stored, values, deleteData)
}

// dropPartitionLocked resolves both addressing modes to the same value-list
// key before mutating. Caller holds the table scope.
func (db *DB) dropPartitionLocked(ctx context.Context, table *Table, values []string, deleteData bool) error {
	partition, err := db.getPartition(ctx, table, values)
	if err != nil {
		return err
	}

	if err := db.delete(ctx, partitionKey(table.Database, table.Name, partition.Name)); err != nil {
		return err
	}

	if deleteData {
		db.dropData(ctx, partition.LocationURI)
	}

	db.log.Info("partition dropped",
		zap.String("database", table.Database),
		zap.String("table", table.Name),
		zap.String("partition", partition.Name),
		zap.Bool("delete data", deleteData))
	return nil
}

// AlterPartition replaces the mutable attributes (location, properties) of
// the partition whose value list exactly matches. Partition identity is
// immutable; there is no way to move a record between value lists.
func (db *DB) AlterPartition(ctx context.Context, database, table string, updated Partition) (err error) {
	defer mon.Task()(&ctx)(&err)

	database, table = normalizeName(database), normalizeName(table)
	updated.Database = database
	updated.Table = table

	unlock := db.locks.Lock(tableScope(database, table))
	defer unlock()

	stored, err := db.GetTable(ctx, database, table)
	if err != nil {
		return err
	}
	if len(updated.Values) != len(stored.PartitionKeys) {
		return ErrInvalidOperation.New(
			"partition of %q.%q has %d values for %d partition keys",
			database, table, len(updated.Values), len(stored.PartitionKeys))
	}

	name, err := partname.Encode(stored.PartitionKeyNames(), updated.Values)
	if err != nil {
		return ErrInvalidOperation.Wrap(err)
	}

	current, err := db.getPartition(ctx, &stored, updated.Values)
	if err != nil {
		return err
	}

	updated.Name = name
	if updated.LocationURI == "" {
		updated.LocationURI = current.LocationURI
	}
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	record, err := encodeRecord(updated)
	if err != nil {
		return err
	}
	if err := db.put(ctx, partitionKey(database, table, name), record); err != nil {
		return err
	}

	db.log.Info("partition altered",
		zap.String("database", database),
		zap.String("table", table),
		zap.String("partition", name))
	return nil
}

// Unbounded is the maxParts sentinel for "no limit"; any negative limit
// means the same. Zero returns an empty list.
const Unbounded = -1

// GetPartitions returns the table's partitions in natural enumeration order
// (lexicographic by canonical name), at most maxParts of them.
func (db *DB) GetPartitions(ctx context.Context, database, table string, maxParts int) (_ []Partition, err error) {
	defer mon.Task()(&ctx)(&err)

	return db.listPartitions(ctx, database, table, nil, maxParts)
}

// GetPartitionNames returns the table's partition names in natural
// enumeration order, at most maxParts of them.
func (db *DB) GetPartitionNames(ctx context.Context, database, table string, maxParts int) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)

	partitions, err := db.listPartitions(ctx, database, table, nil, maxParts)
	if err != nil {
		return nil, err
	}
	return partitionNames(partitions), nil
}

// GetPartitionsPs returns the partitions whose values agree with partial on
// every non-wildcard position. A wildcard is the empty string; partial may
// also be shorter than the key count, leaving the tail unconstrained.
func (db *DB) GetPartitionsPs(ctx context.Context, database, table string, partial []string, maxParts int) (_ []Partition, err error) {
	defer mon.Task()(&ctx)(&err)

	return db.listPartitions(ctx, database, table, partial, maxParts)
}

// GetPartitionNamesPs is GetPartitionsPs returning canonical names only.
func (db *DB) GetPartitionNamesPs(ctx context.Context, database, table string, partial []string, maxParts int) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)

	partitions, err := db.listPartitions(ctx, database, table, partial, maxParts)
	if err != nil {
		return nil, err
	}
	return partitionNames(partitions), nil
}

func partitionNames(partitions []Partition) []string {
	names := make([]string, len(partitions))
	for i := range partitions {
		names[i] = partitions[i].Name
	}
	return names
}

// listPartitions is the shared enumeration path. partial == nil means no
// filter; maxParts < 0 means unbounded.
func (db *DB) listPartitions(ctx context.Context, database, table string, partial []string, maxParts int) ([]Partition, error) {
	database, table = normalizeName(database), normalizeName(table)

	stored, err := db.GetTable(ctx, database, table)
	if err != nil {
		return nil, err
	}
	if len(partial) > len(stored.PartitionKeys) {
		return nil, ErrInvalidSchema.New(
			"partial value list of %q.%q has %d values for %d partition keys",
			database, table, len(partial), len(stored.PartitionKeys))
	}

	partitions := []Partition{}
	if maxParts == 0 {
		return partitions, nil
	}

	keyNames := stored.PartitionKeyNames()
	prefix := partitionsPrefix(database, table)

	items, err := db.scanAll(ctx, prefix)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		var partition Partition
		if err := decodeRecord(item.Value, &partition); err != nil {
			return nil, err
		}
		if !matchesPartial(partition.Values, partial) {
			continue
		}
		partition.Name, err = partname.Encode(keyNames, partition.Values)
		if err != nil {
			return nil, Error.Wrap(err)
		}

		partitions = append(partitions, partition)
		if maxParts > 0 && len(partitions) >= maxParts {
			break
		}
	}
	return partitions, nil
}

// matchesPartial reports whether values agree with partial on every
// non-wildcard position.
func matchesPartial(values, partial []string) bool {
	if len(partial) > len(values) {
		return false
	}
	for i, want := range partial {
		if want == "" {
			continue
		}
		if values[i] != want {
			return false
		}
	}
	return true
}
