// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/datalith/catalogd/catalog"
)

func TestConcurrentAddPartition(t *testing.T) {
	ctx := context.Background()
	db, _ := newCatalog(t)
	createDatabase(ctx, t, db, "d")
	createPartitionedTable(ctx, t, db, "d", "t", dsKey())

	const workers = 16

	var created, exists int64
	var group errgroup.Group
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			_, err := db.AppendPartition(ctx, "d", "t", []string{"2024-01-01"})
			switch {
			case err == nil:
				atomic.AddInt64(&created, 1)
			case catalog.ErrAlreadyExists.Has(err):
				atomic.AddInt64(&exists, 1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())
	require.Equal(t, int64(1), created)
	require.Equal(t, int64(workers-1), exists)

	names, err := db.GetPartitionNames(ctx, "d", "t", catalog.Unbounded)
	require.NoError(t, err)
	require.Equal(t, []string{"ds=2024-01-01"}, names)
}

func TestConcurrentCreateDatabase(t *testing.T) {
	ctx := context.Background()
	db, _ := newCatalog(t)

	const workers = 8

	var created int64
	var group errgroup.Group
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			err := db.CreateDatabase(ctx, catalog.Database{Name: "d"})
			if err == nil {
				atomic.AddInt64(&created, 1)
				return nil
			}
			if catalog.ErrAlreadyExists.Has(err) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, group.Wait())
	require.Equal(t, int64(1), created)
}

func TestConcurrentMixedWorkload(t *testing.T) {
	ctx := context.Background()
	db, _ := newCatalog(t)
	createDatabase(ctx, t, db, "d")
	createPartitionedTable(ctx, t, db, "d", "t", dsKey())

	const workers = 8

	var group errgroup.Group
	for i := 0; i < workers; i++ {
		ds := fmt.Sprintf("2024-01-%02d", i+1)
		group.Go(func() error {
			if _, err := db.AppendPartition(ctx, "d", "t", []string{ds}); err != nil {
				return err
			}
			if _, err := db.GetPartitionByName(ctx, "d", "t", "ds="+ds); err != nil {
				return err
			}
			return nil
		})
		group.Go(func() error {
			_, err := db.GetPartitionNames(ctx, "d", "t", catalog.Unbounded)
			return err
		})
	}
	require.NoError(t, group.Wait())

	names, err := db.GetPartitionNames(ctx, "d", "t", catalog.Unbounded)
	require.NoError(t, err)
	require.Len(t, names, workers)
}
