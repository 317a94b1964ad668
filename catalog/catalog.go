// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

// Package catalog implements the authoritative metadata registry of
// databases, tables, partitions and types for a tabular warehouse.
//
// All state lives in a transactional key/value store behind kvstore.Store;
// the catalog enforces the hierarchical integrity invariants (no table
// without its database, no partition without its table) and serves the
// listing and filtering operations.
package catalog

import (
	"context"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/datalith/catalogd/private/kvstore"
)

var mon = monkit.Package()

var (
	// Error is the default catalog errs class.
	Error = errs.Class("catalog")

	// ErrNotFound is returned when an addressed entity does not exist.
	ErrNotFound = errs.Class("not found")
	// ErrAlreadyExists is returned when a created entity is already present.
	ErrAlreadyExists = errs.Class("already exists")
	// ErrNotEmpty is returned when dropping a database that still owns tables.
	ErrNotEmpty = errs.Class("not empty")
	// ErrInvalidSchema is returned when a table or partition shape is invalid.
	ErrInvalidSchema = errs.Class("invalid schema")
	// ErrInvalidOperation is returned when a mutation would change immutable state.
	ErrInvalidOperation = errs.Class("invalid operation")
	// ErrUnknownReference is returned when a type reference cannot be resolved.
	ErrUnknownReference = errs.Class("unknown type reference")
	// ErrCyclicDependency is returned when a type would close a reference cycle.
	ErrCyclicDependency = errs.Class("cyclic type dependency")
	// ErrStillReferenced is returned when dropping a type that is in use.
	ErrStillReferenced = errs.Class("still referenced")
	// ErrProtected is returned when dropping a seeded primitive type.
	ErrProtected = errs.Class("protected type")
	// ErrUnavailable is returned when the storage collaborator keeps failing.
	ErrUnavailable = errs.Class("storage unavailable")
)

// DataSink is the external collaborator that owns the bytes behind a
// location. The catalog only ever deletes metadata; deleteData flags are
// forwarded here.
type DataSink interface {
	DeleteLocation(ctx context.Context, location string) error
}

type discardSink struct{}

func (discardSink) DeleteLocation(ctx context.Context, location string) error { return nil }

// Config holds catalog construction parameters.
type Config struct {
	// WarehouseURI is the base location used to derive default database,
	// table and partition locations.
	WarehouseURI string `help:"base location for derived storage locations" default:"file:///tmp/warehouse"`

	// Sink receives deleteData forwards; nil means discard.
	Sink DataSink `internal:"true"`
}

// DB is the catalog over a kvstore.Store.
type DB struct {
	log   *zap.Logger
	store kvstore.Store
	locks *keyedMutex
	sink  DataSink

	warehouseURI string
}

// New creates a catalog DB over the given store.
func New(log *zap.Logger, store kvstore.Store, config Config) *DB {
	sink := config.Sink
	if sink == nil {
		sink = discardSink{}
	}
	return &DB{
		log:          log,
		store:        store,
		locks:        newKeyedMutex(),
		sink:         sink,
		warehouseURI: config.WarehouseURI,
	}
}

// Init seeds the store with the primitive types. Safe to call repeatedly.
func (db *DB) Init(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)
	return db.seedPrimitives(ctx)
}

// readAttempts bounds local retries of idempotent reads on storage failure.
// Mutations never retry; they surface ErrUnavailable immediately.
const readAttempts = 3

// get reads a key, retrying transient storage failures.
func (db *DB) get(ctx context.Context, key kvstore.Key) (_ kvstore.Value, err error) {
	for attempt := 0; ; attempt++ {
		value, err := db.store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if kvstore.ErrKeyNotFound.Has(err) || kvstore.ErrEmptyKey.Has(err) {
			return nil, err
		}
		if ctx.Err() != nil || attempt+1 >= readAttempts {
			return nil, ErrUnavailable.Wrap(err)
		}
		db.log.Warn("retrying read", zap.ByteString("key", key), zap.Error(err))
	}
}

// scanAll materializes every record under a prefix in key order, retrying
// transient storage failures with a fresh result each attempt.
func (db *DB) scanAll(ctx context.Context, prefix kvstore.Key) (kvstore.Items, error) {
	for attempt := 0; ; attempt++ {
		var items kvstore.Items
		err := db.store.Scan(ctx, prefix, func(ctx context.Context, key kvstore.Key, value kvstore.Value) error {
			items = append(items, kvstore.Item{Key: key.Clone(), Value: value.Clone()})
			return nil
		})
		if err == nil {
			return items, nil
		}
		if ctx.Err() != nil || attempt+1 >= readAttempts {
			return nil, ErrUnavailable.Wrap(err)
		}
		db.log.Warn("retrying scan", zap.ByteString("prefix", prefix), zap.Error(err))
	}
}

// casCreate inserts a record conditional on the key being absent.
func (db *DB) casCreate(ctx context.Context, key kvstore.Key, value kvstore.Value) error {
	err := db.store.CompareAndSwap(ctx, key, nil, value)
	switch {
	case err == nil:
		return nil
	case kvstore.ErrKeyExists.Has(err):
		return err
	default:
		return ErrUnavailable.Wrap(err)
	}
}

// delete removes a key, mapping storage failure to ErrUnavailable.
func (db *DB) delete(ctx context.Context, key kvstore.Key) error {
	if err := db.store.Delete(ctx, key); err != nil {
		return ErrUnavailable.Wrap(err)
	}
	return nil
}

// put overwrites a key, mapping storage failure to ErrUnavailable.
func (db *DB) put(ctx context.Context, key kvstore.Key, value kvstore.Value) error {
	if err := db.store.Put(ctx, key, value); err != nil {
		return ErrUnavailable.Wrap(err)
	}
	return nil
}

// dropData forwards a deleteData request to the external data sink. Sink
// failures do not undo the metadata mutation; they are logged and dropped.
func (db *DB) dropData(ctx context.Context, location string) {
	if location == "" {
		return
	}
	if err := db.sink.DeleteLocation(ctx, location); err != nil {
		db.log.Warn("data sink delete failed", zap.String("location", location), zap.Error(err))
	}
}
