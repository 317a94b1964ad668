// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/datalith/catalogd/private/kvstore"
)

// CreateTable registers a new table under an existing database. Every field
// and partition-key type must be resolvable, and a partition-key column may
// not double as a data column. The partition-key schema is immutable for the
// lifetime of the table.
func (db *DB) CreateTable(ctx context.Context, table Table) (err error) {
	defer mon.Task()(&ctx)(&err)

	if err := validateName("database", table.Database); err != nil {
		return err
	}
	if err := validateName("table", table.Name); err != nil {
		return err
	}
	table.Database = normalizeName(table.Database)
	table.Name = normalizeName(table.Name)
	normalizeFields(table.Fields)
	normalizeFields(table.PartitionKeys)

	// Types lock: a type referenced here must not disappear between
	// validation and the table record landing. Database lock: the owning
	// database must not complete a drop underneath us.
	unlockTypes := db.locks.Lock(typesScope)
	defer unlockTypes()
	unlock := db.locks.Lock(databaseScope(table.Database))
	defer unlock()

	database, err := db.GetDatabase(ctx, table.Database)
	if err != nil {
		return err
	}

	if err := db.validateTableSchema(ctx, &table); err != nil {
		return err
	}

	if table.LocationURI == "" {
		table.LocationURI = database.LocationURI + "/" + table.Name
	}
	table.CreatedAt = time.Now().UTC()

	record, err := encodeRecord(table)
	if err != nil {
		return err
	}

	err = db.casCreate(ctx, tableKey(table.Database, table.Name), record)
	if kvstore.ErrKeyExists.Has(err) {
		return ErrAlreadyExists.New("table %q.%q", table.Database, table.Name)
	}
	if err != nil {
		return err
	}

	db.log.Info("table created",
		zap.String("database", table.Database),
		zap.String("table", table.Name),
		zap.Int("fields", len(table.Fields)),
		zap.Int("partition keys", len(table.PartitionKeys)))
	return nil
}

func normalizeFields(fields []FieldSchema) {
	for i := range fields {
		fields[i].Name = normalizeName(fields[i].Name)
		fields[i].Type = normalizeName(fields[i].Type)
	}
}

// validateTableSchema checks field shape and type references. Caller holds
// the types lock.
func (db *DB) validateTableSchema(ctx context.Context, table *Table) error {
	if len(table.Fields) == 0 {
		return ErrInvalidSchema.New("table %q.%q has no fields", table.Database, table.Name)
	}

	dataColumns := make(map[string]bool, len(table.Fields))
	for _, field := range table.Fields {
		if field.Name == "" {
			return ErrInvalidSchema.New("table %q.%q has an unnamed field", table.Database, table.Name)
		}
		if dataColumns[field.Name] {
			return ErrInvalidSchema.New("table %q.%q field %q duplicated", table.Database, table.Name, field.Name)
		}
		dataColumns[field.Name] = true

		if err := db.checkTypeExists(ctx, field.Type); err != nil {
			return ErrInvalidSchema.New("table %q.%q field %q: %v", table.Database, table.Name, field.Name, err)
		}
	}

	seenKeys := make(map[string]bool, len(table.PartitionKeys))
	for _, key := range table.PartitionKeys {
		if key.Name == "" {
			return ErrInvalidSchema.New("table %q.%q has an unnamed partition key", table.Database, table.Name)
		}
		if dataColumns[key.Name] {
			// ambiguous addressing: the column would be both data and key
			return ErrInvalidSchema.New("table %q.%q partition key %q is also a data column", table.Database, table.Name, key.Name)
		}
		if seenKeys[key.Name] {
			return ErrInvalidSchema.New("table %q.%q partition key %q duplicated", table.Database, table.Name, key.Name)
		}
		seenKeys[key.Name] = true

		if err := db.checkTypeExists(ctx, key.Type); err != nil {
			return ErrInvalidSchema.New("table %q.%q partition key %q: %v", table.Database, table.Name, key.Name, err)
		}
	}
	return nil
}

// GetTable returns the table with the given name.
func (db *DB) GetTable(ctx context.Context, database, name string) (_ Table, err error) {
	defer mon.Task()(&ctx)(&err)

	database, name = normalizeName(database), normalizeName(name)
	value, err := db.get(ctx, tableKey(database, name))
	if err != nil {
		if kvstore.ErrKeyNotFound.Has(err) {
			return Table{}, ErrNotFound.New("table %q.%q", database, name)
		}
		return Table{}, err
	}

	var table Table
	if err := decodeRecord(value, &table); err != nil {
		return Table{}, err
	}
	return table, nil
}

// AlterTable replaces the mutable attributes of a table: location,
// properties and data columns. The partition-key schema must be unchanged;
// altering it would orphan the addressing of existing partitions.
func (db *DB) AlterTable(ctx context.Context, database, name string, updated Table) (err error) {
	defer mon.Task()(&ctx)(&err)

	database, name = normalizeName(database), normalizeName(name)
	updated.Database = database
	updated.Name = normalizeName(updated.Name)
	if updated.Name == "" {
		updated.Name = name
	}
	if updated.Name != name {
		return ErrInvalidOperation.New("table %q.%q cannot be renamed to %q", database, name, updated.Name)
	}
	normalizeFields(updated.Fields)
	normalizeFields(updated.PartitionKeys)

	unlockTypes := db.locks.Lock(typesScope)
	defer unlockTypes()
	unlock := db.locks.Lock(tableScope(database, name))
	defer unlock()

	stored, err := db.GetTable(ctx, database, name)
	if err != nil {
		return err
	}

	if !fieldsEqual(stored.PartitionKeys, updated.PartitionKeys) {
		return ErrInvalidOperation.New("table %q.%q partition keys are immutable", database, name)
	}

	if err := db.validateTableSchema(ctx, &updated); err != nil {
		return err
	}

	if updated.LocationURI == "" {
		updated.LocationURI = stored.LocationURI
	}
	updated.CreatedAt = stored.CreatedAt

	record, err := encodeRecord(updated)
	if err != nil {
		return err
	}
	if err := db.put(ctx, tableKey(database, name), record); err != nil {
		return err
	}

	db.log.Info("table altered", zap.String("database", database), zap.String("table", name))
	return nil
}

func fieldsEqual(a, b []FieldSchema) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Type != b[i].Type {
			return false
		}
	}
	return true
}

// DropTable removes a table and, transitively, all of its partitions. The
// deleteData flag is forwarded to the data sink; the catalog itself deletes
// only metadata. Partition records go before the table record so that a
// reader can never observe a partition whose table drop has completed.
func (db *DB) DropTable(ctx context.Context, database, name string, deleteData bool) (err error) {
	defer mon.Task()(&ctx)(&err)

	database, name = normalizeName(database), normalizeName(name)

	unlock := db.locks.Lock(tableScope(database, name))
	defer unlock()

	return db.dropTableLocked(ctx, database, name, deleteData)
}

// dropTableLocked implements DropTable; the caller holds either the table
// scope or the owning database scope.
func (db *DB) dropTableLocked(ctx context.Context, database, name string, deleteData bool) error {
	table, err := db.GetTable(ctx, database, name)
	if err != nil {
		return err
	}

	items, err := db.scanAll(ctx, partitionsPrefix(database, name))
	if err != nil {
		return err
	}

	var locations []string
	for _, item := range items {
		if deleteData {
			var partition Partition
			if err := decodeRecord(item.Value, &partition); err == nil {
				locations = append(locations, partition.LocationURI)
			}
		}
		if err := db.delete(ctx, item.Key); err != nil {
			return err
		}
	}

	if err := db.delete(ctx, tableKey(database, name)); err != nil {
		return err
	}

	if deleteData {
		for _, location := range locations {
			db.dropData(ctx, location)
		}
		db.dropData(ctx, table.LocationURI)
	}

	db.log.Info("table dropped",
		zap.String("database", database),
		zap.String("table", name),
		zap.Int("partitions", len(items)),
		zap.Bool("delete data", deleteData))
	return nil
}

// GetTables returns the names of the database's tables matching pattern,
// in scan order. The pattern understands '*' and '|' alternation; empty
// matches all.
func (db *DB) GetTables(ctx context.Context, database, pattern string) (names []string, err error) {
	defer mon.Task()(&ctx)(&err)

	database = normalizeName(database)
	if _, err := db.GetDatabase(ctx, database); err != nil {
		return nil, err
	}

	match, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}

	items, err := db.scanAll(ctx, tablesPrefix(database))
	if err != nil {
		return nil, err
	}

	names = []string{}
	for _, item := range items {
		name := strings.TrimPrefix(item.Key.String(), string(tablesPrefix(database)))
		if match(name) {
			names = append(names, name)
		}
	}
	return names, nil
}
