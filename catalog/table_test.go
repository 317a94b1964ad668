// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalith/catalogd/catalog"
)

func TestCreateTable(t *testing.T) {
	ctx := context.Background()
	db, _ := newCatalog(t)

	err := db.CreateTable(ctx, catalog.Table{
		Database: "missing",
		Name:     "t",
		Fields:   []catalog.FieldSchema{{Name: "id", Type: "int"}},
	})
	require.True(t, catalog.ErrNotFound.Has(err))

	createDatabase(ctx, t, db, "d")

	require.NoError(t, db.CreateTable(ctx, catalog.Table{
		Database:      "D",
		Name:          "Events",
		Fields:        []catalog.FieldSchema{{Name: "ID", Type: "INT"}},
		PartitionKeys: []catalog.FieldSchema{{Name: "ds", Type: "string"}},
	}))

	err = db.CreateTable(ctx, catalog.Table{
		Database: "d",
		Name:     "events",
		Fields:   []catalog.FieldSchema{{Name: "id", Type: "int"}},
	})
	require.True(t, catalog.ErrAlreadyExists.Has(err))

	table, err := db.GetTable(ctx, "d", "EVENTS")
	require.NoError(t, err)
	require.Equal(t, "events", table.Name)
	require.Equal(t, []catalog.FieldSchema{{Name: "id", Type: "int"}}, table.Fields)
	require.Equal(t, "file:///warehouse/d.db/events", table.LocationURI)
	require.False(t, table.CreatedAt.IsZero())
}

func TestCreateTableInvalidSchema(t *testing.T) {
	ctx := context.Background()
	db, _ := newCatalog(t)
	createDatabase(ctx, t, db, "d")

	// unknown field type
	err := db.CreateTable(ctx, catalog.Table{
		Database: "d", Name: "t",
		Fields: []catalog.FieldSchema{{Name: "id", Type: "uint128"}},
	})
	require.True(t, catalog.ErrInvalidSchema.Has(err))

	// partition key doubling as data column makes addressing ambiguous
	err = db.CreateTable(ctx, catalog.Table{
		Database: "d", Name: "t",
		Fields:        []catalog.FieldSchema{{Name: "ds", Type: "string"}},
		PartitionKeys: []catalog.FieldSchema{{Name: "ds", Type: "string"}},
	})
	require.True(t, catalog.ErrInvalidSchema.Has(err))

	// no fields at all
	err = db.CreateTable(ctx, catalog.Table{Database: "d", Name: "t"})
	require.True(t, catalog.ErrInvalidSchema.Has(err))

	// unknown partition key type
	err = db.CreateTable(ctx, catalog.Table{
		Database: "d", Name: "t",
		Fields:        []catalog.FieldSchema{{Name: "id", Type: "int"}},
		PartitionKeys: []catalog.FieldSchema{{Name: "ds", Type: "datestamp"}},
	})
	require.True(t, catalog.ErrInvalidSchema.Has(err))
}

func TestAlterTable(t *testing.T) {
	ctx := context.Background()
	db, _ := newCatalog(t)
	createDatabase(ctx, t, db, "d")
	createPartitionedTable(ctx, t, db, "d", "t", dsKey())

	stored, err := db.GetTable(ctx, "d", "t")
	require.NoError(t, err)

	// mutable attributes may change
	updated := stored
	updated.Properties = map[string]string{"owner": "etl"}
	updated.Fields = append([]catalog.FieldSchema{}, stored.Fields...)
	updated.Fields = append(updated.Fields, catalog.FieldSchema{Name: "extra", Type: "double"})
	require.NoError(t, db.AlterTable(ctx, "d", "t", updated))

	got, err := db.GetTable(ctx, "d", "t")
	require.NoError(t, err)
	require.Equal(t, "etl", got.Properties["owner"])
	require.Len(t, got.Fields, 3)
	require.Equal(t, stored.CreatedAt, got.CreatedAt)

	// the partition-key schema is immutable
	updated = got
	updated.PartitionKeys = []catalog.FieldSchema{{Name: "region", Type: "string"}}
	err = db.AlterTable(ctx, "d", "t", updated)
	require.True(t, catalog.ErrInvalidOperation.Has(err))

	// renames are not supported
	updated = got
	updated.Name = "t2"
	err = db.AlterTable(ctx, "d", "t", updated)
	require.True(t, catalog.ErrInvalidOperation.Has(err))

	missing := got
	missing.Name = ""
	err = db.AlterTable(ctx, "d", "missing", missing)
	require.True(t, catalog.ErrNotFound.Has(err))
}

func TestDropTableCascades(t *testing.T) {
	ctx := context.Background()
	db, _ := newCatalog(t)
	createDatabase(ctx, t, db, "d")
	createPartitionedTable(ctx, t, db, "d", "t", dsKey())

	for _, ds := range []string{"2024-01-01", "2024-01-02"} {
		_, err := db.AppendPartition(ctx, "d", "t", []string{ds})
		require.NoError(t, err)
	}

	require.NoError(t, db.DropTable(ctx, "d", "t", false))

	err := db.DropTable(ctx, "d", "t", false)
	require.True(t, catalog.ErrNotFound.Has(err))

	// recreating the table starts with an empty partition set
	createPartitionedTable(ctx, t, db, "d", "t", dsKey())
	names, err := db.GetPartitionNames(ctx, "d", "t", -1)
	require.NoError(t, err)
	require.Empty(t, names)
}

type recordingSink struct {
	locations []string
}

func (sink *recordingSink) DeleteLocation(ctx context.Context, location string) error {
	sink.locations = append(sink.locations, location)
	return nil
}

func TestDropTableDeleteData(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}

	db := newCatalogWithSink(t, sink)

	createDatabase(ctx, t, db, "d")
	createPartitionedTable(ctx, t, db, "d", "t", dsKey())
	partition, err := db.AppendPartition(ctx, "d", "t", []string{"2024-01-01"})
	require.NoError(t, err)

	require.NoError(t, db.DropTable(ctx, "d", "t", true))

	table := "file:///warehouse/d.db/t"
	require.Equal(t, []string{partition.LocationURI, table}, sink.locations)
}

func TestGetTablesPattern(t *testing.T) {
	ctx := context.Background()
	db, _ := newCatalog(t)

	_, err := db.GetTables(ctx, "missing", "*")
	require.True(t, catalog.ErrNotFound.Has(err))

	createDatabase(ctx, t, db, "d")
	for _, name := range []string{"events", "events_daily", "users", "stats"} {
		createPartitionedTable(ctx, t, db, "d", name)
	}

	cases := []struct {
		pattern string
		want    []string
	}{
		{"", []string{"events", "events_daily", "stats", "users"}},
		{"*", []string{"events", "events_daily", "stats", "users"}},
		{"events*", []string{"events", "events_daily"}},
		{"users|stats", []string{"stats", "users"}},
		{"*daily", []string{"events_daily"}},
		{"EVENTS", []string{"events"}},
		{"nothing*here", []string{}},
	}
	for _, tc := range cases {
		names, err := db.GetTables(ctx, "d", tc.pattern)
		require.NoError(t, err, "pattern %q", tc.pattern)
		require.Equal(t, tc.want, names, "pattern %q", tc.pattern)
	}
}
