// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/datalith/catalogd/catalog"
	"github.com/datalith/catalogd/private/kvstore/teststore"
)

func newCatalog(t *testing.T) (*catalog.DB, *teststore.Client) {
	store := teststore.New()
	db := catalog.New(zaptest.NewLogger(t), store, catalog.Config{
		WarehouseURI: "file:///warehouse",
	})
	require.NoError(t, db.Init(context.Background()))
	return db, store
}

func newCatalogWithSink(t *testing.T, sink catalog.DataSink) *catalog.DB {
	db := catalog.New(zaptest.NewLogger(t), teststore.New(), catalog.Config{
		WarehouseURI: "file:///warehouse",
		Sink:         sink,
	})
	require.NoError(t, db.Init(context.Background()))
	return db
}

func createDatabase(ctx context.Context, t *testing.T, db *catalog.DB, name string) {
	t.Helper()
	require.NoError(t, db.CreateDatabase(ctx, catalog.Database{
		Name:        name,
		Description: "test database",
	}))
}

// createPartitionedTable creates a table with data columns (id:int, payload:string)
// and the given partition keys.
func createPartitionedTable(ctx context.Context, t *testing.T, db *catalog.DB, database, name string, partitionKeys ...catalog.FieldSchema) {
	t.Helper()
	require.NoError(t, db.CreateTable(ctx, catalog.Table{
		Database: database,
		Name:     name,
		Fields: []catalog.FieldSchema{
			{Name: "id", Type: "int"},
			{Name: "payload", Type: "string"},
		},
		PartitionKeys: partitionKeys,
	}))
}

func dsKey() catalog.FieldSchema {
	return catalog.FieldSchema{Name: "ds", Type: "string"}
}
