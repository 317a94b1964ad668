// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalith/catalogd/catalog"
)

func TestReadsRetryTransientFailures(t *testing.T) {
	ctx := context.Background()
	db, store := newCatalog(t)
	createDatabase(ctx, t, db, "d")

	// fewer failures than the retry budget: the read still succeeds
	store.ForceErrs = 2
	got, err := db.GetDatabase(ctx, "d")
	require.NoError(t, err)
	require.Equal(t, "d", got.Name)

	// a persistent outage surfaces as unavailable, not as not-found
	store.ForceErrs = 100
	_, err = db.GetDatabase(ctx, "d")
	require.True(t, catalog.ErrUnavailable.Has(err))
	store.ForceErrs = 0

	createPartitionedTable(ctx, t, db, "d", "t", dsKey())
	_, err = db.AppendPartition(ctx, "d", "t", []string{"2024-01-01"})
	require.NoError(t, err)

	store.ForceErrs = 2
	names, err := db.GetPartitionNames(ctx, "d", "t", catalog.Unbounded)
	require.NoError(t, err)
	require.Equal(t, []string{"ds=2024-01-01"}, names)
	store.ForceErrs = 0
}

func TestMutationsDoNotRetry(t *testing.T) {
	ctx := context.Background()
	db, store := newCatalog(t)
	createDatabase(ctx, t, db, "d")

	// a single store failure fails the mutation outright
	store.ForceErrs = 1
	err := db.CreateDatabase(ctx, catalog.Database{Name: "other"})
	require.True(t, catalog.ErrUnavailable.Has(err))
	store.ForceErrs = 0

	// nothing was written
	_, err = db.GetDatabase(ctx, "other")
	require.True(t, catalog.ErrNotFound.Has(err))
}
