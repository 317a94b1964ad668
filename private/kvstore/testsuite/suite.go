// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package testsuite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalith/catalogd/private/kvstore"
)

// RunTests runs every conformance test against the given store.
func RunTests(t *testing.T, store kvstore.Store) {
	t.Run("CRUD", func(t *testing.T) { testCRUD(t, store) })
	t.Run("ScanOrder", func(t *testing.T) { testScanOrder(t, store) })
	t.Run("ScanPrefix", func(t *testing.T) { testScanPrefix(t, store) })
	t.Run("CompareAndSwap", func(t *testing.T) { testCompareAndSwap(t, store) })
	t.Run("EmptyKey", func(t *testing.T) { testEmptyKey(t, store) })
}

func cleanup(t *testing.T, store kvstore.Store, keys ...string) {
	t.Helper()
	ctx := context.Background()
	for _, key := range keys {
		_ = store.Delete(ctx, kvstore.Key(key))
	}
}

func testCRUD(t *testing.T, store kvstore.Store) {
	ctx := context.Background()
	defer cleanup(t, store, "crud/a")

	_, err := store.Get(ctx, kvstore.Key("crud/a"))
	require.True(t, kvstore.ErrKeyNotFound.Has(err))

	require.NoError(t, store.Put(ctx, kvstore.Key("crud/a"), kvstore.Value("one")))

	value, err := store.Get(ctx, kvstore.Key("crud/a"))
	require.NoError(t, err)
	require.Equal(t, kvstore.Value("one"), value)

	require.NoError(t, store.Put(ctx, kvstore.Key("crud/a"), kvstore.Value("two")))

	value, err = store.Get(ctx, kvstore.Key("crud/a"))
	require.NoError(t, err)
	require.Equal(t, kvstore.Value("two"), value)

	require.NoError(t, store.Delete(ctx, kvstore.Key("crud/a")))

	_, err = store.Get(ctx, kvstore.Key("crud/a"))
	require.True(t, kvstore.ErrKeyNotFound.Has(err))
}

func testScanOrder(t *testing.T, store kvstore.Store) {
	ctx := context.Background()
	keys := []string{"scan/c", "scan/a", "scan/b", "scan/aa"}
	defer cleanup(t, store, keys...)

	for _, key := range keys {
		require.NoError(t, store.Put(ctx, kvstore.Key(key), kvstore.Value(key)))
	}

	var got []string
	err := store.Scan(ctx, kvstore.Key("scan/"), func(ctx context.Context, key kvstore.Key, value kvstore.Value) error {
		got = append(got, key.String())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"scan/a", "scan/aa", "scan/b", "scan/c"}, got)
}

func testScanPrefix(t *testing.T, store kvstore.Store) {
	ctx := context.Background()
	keys := []string{"pfx/a/1", "pfx/a/2", "pfx/b/1", "pfy/a/1"}
	defer cleanup(t, store, keys...)

	for _, key := range keys {
		require.NoError(t, store.Put(ctx, kvstore.Key(key), kvstore.Value(key)))
	}

	var got []string
	err := store.Scan(ctx, kvstore.Key("pfx/a/"), func(ctx context.Context, key kvstore.Key, value kvstore.Value) error {
		got = append(got, key.String())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"pfx/a/1", "pfx/a/2"}, got)
}

func testCompareAndSwap(t *testing.T, store kvstore.Store) {
	ctx := context.Background()
	defer cleanup(t, store, "cas/a")

	// conditional-on-absent
	require.NoError(t, store.CompareAndSwap(ctx, kvstore.Key("cas/a"), nil, kvstore.Value("one")))

	err := store.CompareAndSwap(ctx, kvstore.Key("cas/a"), nil, kvstore.Value("two"))
	require.True(t, kvstore.ErrKeyExists.Has(err))

	// conditional-on-value
	err = store.CompareAndSwap(ctx, kvstore.Key("cas/a"), kvstore.Value("wrong"), kvstore.Value("two"))
	require.True(t, kvstore.ErrValueChanged.Has(err))

	require.NoError(t, store.CompareAndSwap(ctx, kvstore.Key("cas/a"), kvstore.Value("one"), kvstore.Value("two")))

	value, err := store.Get(ctx, kvstore.Key("cas/a"))
	require.NoError(t, err)
	require.Equal(t, kvstore.Value("two"), value)

	// conditional delete
	require.NoError(t, store.CompareAndSwap(ctx, kvstore.Key("cas/a"), kvstore.Value("two"), nil))

	_, err = store.Get(ctx, kvstore.Key("cas/a"))
	require.True(t, kvstore.ErrKeyNotFound.Has(err))

	err = store.CompareAndSwap(ctx, kvstore.Key("cas/a"), kvstore.Value("two"), nil)
	require.True(t, kvstore.ErrKeyNotFound.Has(err))
}

func testEmptyKey(t *testing.T, store kvstore.Store) {
	ctx := context.Background()

	err := store.Put(ctx, nil, kvstore.Value("x"))
	require.True(t, kvstore.ErrEmptyKey.Has(err))

	_, err = store.Get(ctx, nil)
	require.True(t, kvstore.ErrEmptyKey.Has(err))

	err = store.CompareAndSwap(ctx, nil, nil, kvstore.Value("x"))
	require.True(t, kvstore.ErrEmptyKey.Has(err))
}
