// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/datalith/catalogd/private/kvstore"
)

// CreateDatabase registers a new database. The location defaults to
// `<warehouse>/<name>.db` when absent.
func (db *DB) CreateDatabase(ctx context.Context, database Database) (err error) {
	defer mon.Task()(&ctx)(&err)

	if err := validateName("database", database.Name); err != nil {
		return err
	}
	database.Name = normalizeName(database.Name)
	if database.LocationURI == "" {
		database.LocationURI = db.warehouseURI + "/" + database.Name + ".db"
	}

	record, err := encodeRecord(database)
	if err != nil {
		return err
	}

	err = db.casCreate(ctx, databaseKey(database.Name), record)
	if kvstore.ErrKeyExists.Has(err) {
		return ErrAlreadyExists.New("database %q", database.Name)
	}
	if err != nil {
		return err
	}

	db.log.Info("database created", zap.String("database", database.Name))
	return nil
}

// GetDatabase returns the database with the given name.
func (db *DB) GetDatabase(ctx context.Context, name string) (_ Database, err error) {
	defer mon.Task()(&ctx)(&err)

	name = normalizeName(name)
	value, err := db.get(ctx, databaseKey(name))
	if err != nil {
		if kvstore.ErrKeyNotFound.Has(err) {
			return Database{}, ErrNotFound.New("database %q", name)
		}
		return Database{}, err
	}

	var database Database
	if err := decodeRecord(value, &database); err != nil {
		return Database{}, err
	}
	return database, nil
}

// DropDatabase removes a database. A database owning tables is rejected with
// ErrNotEmpty unless force is set, in which case its tables (and their
// partitions) are dropped transitively without touching data.
func (db *DB) DropDatabase(ctx context.Context, name string, force bool) (err error) {
	defer mon.Task()(&ctx)(&err)

	name = normalizeName(name)

	unlock := db.locks.Lock(databaseScope(name))
	defer unlock()

	if _, err := db.GetDatabase(ctx, name); err != nil {
		return err
	}

	items, err := db.scanAll(ctx, tablesPrefix(name))
	if err != nil {
		return err
	}
	tables := make([]string, 0, len(items))
	for _, item := range items {
		tables = append(tables, strings.TrimPrefix(item.Key.String(), string(tablesPrefix(name))))
	}

	if len(tables) > 0 && !force {
		return ErrNotEmpty.New("database %q owns %d tables", name, len(tables))
	}

	for _, table := range tables {
		err := func() error {
			unlock := db.locks.Lock(tableScope(name, table))
			defer unlock()
			return db.dropTableLocked(ctx, name, table, false)
		}()
		if err != nil && !ErrNotFound.Has(err) {
			return err
		}
	}

	if err := db.delete(ctx, databaseKey(name)); err != nil {
		return err
	}

	db.log.Info("database dropped", zap.String("database", name), zap.Bool("force", force))
	return nil
}

// GetDatabases returns the names of all databases in scan order.
func (db *DB) GetDatabases(ctx context.Context) (names []string, err error) {
	defer mon.Task()(&ctx)(&err)

	items, err := db.scanAll(ctx, kvstore.Key(databasePrefix))
	if err != nil {
		return nil, err
	}
	names = make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, strings.TrimPrefix(item.Key.String(), databasePrefix))
	}
	return names, nil
}
