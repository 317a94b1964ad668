// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalith/catalogd/catalog"
)

func TestGetFields(t *testing.T) {
	ctx := context.Background()
	db, _ := newCatalog(t)
	createDatabase(ctx, t, db, "d")
	createPartitionedTable(ctx, t, db, "d", "t", dsKey())

	fields, err := db.GetFields(ctx, "d", "t")
	require.NoError(t, err)
	require.Equal(t, []catalog.FieldSchema{
		{Name: "id", Type: "int"},
		{Name: "payload", Type: "string"},
	}, fields)

	_, err = db.GetFields(ctx, "d", "missing")
	require.True(t, catalog.ErrNotFound.Has(err))
}

func TestGetSchema(t *testing.T) {
	ctx := context.Background()
	db, _ := newCatalog(t)
	createDatabase(ctx, t, db, "d")
	createPartitionedTable(ctx, t, db, "d", "t",
		dsKey(), catalog.FieldSchema{Name: "region", Type: "string"})

	schema, err := db.GetSchema(ctx, "d", "t")
	require.NoError(t, err)
	require.Equal(t, []catalog.FieldSchema{
		{Name: "id", Type: "int"},
		{Name: "payload", Type: "string"},
		{Name: "ds", Type: "string"},
		{Name: "region", Type: "string"},
	}, schema)

	// unpartitioned table: schema equals fields
	require.NoError(t, db.CreateTable(ctx, catalog.Table{
		Database: "d", Name: "flat",
		Fields: []catalog.FieldSchema{{Name: "id", Type: "int"}},
	}))
	schema, err = db.GetSchema(ctx, "d", "flat")
	require.NoError(t, err)
	require.Equal(t, []catalog.FieldSchema{{Name: "id", Type: "int"}}, schema)
}
