// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/datalith/catalogd/private/kvstore"
	"github.com/datalith/catalogd/service"
)

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	store, err := service.NewStore(log, "mem://")
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, kvstore.Key("k"), kvstore.Value("v")))
	value, err := store.Get(ctx, kvstore.Key("k"))
	require.NoError(t, err)
	require.Equal(t, kvstore.Value("v"), value)
	require.NoError(t, store.Close())

	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err = service.NewStore(log, "bolt://"+path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, kvstore.Key("k"), kvstore.Value("v")))
	require.NoError(t, store.Close())

	// bolt persists across reopen
	store, err = service.NewStore(log, "bolt://"+path)
	require.NoError(t, err)
	value, err = store.Get(ctx, kvstore.Key("k"))
	require.NoError(t, err)
	require.Equal(t, kvstore.Value("v"), value)
	require.NoError(t, store.Close())

	_, err = service.NewStore(log, "redis://localhost")
	require.Error(t, err)
	_, err = service.NewStore(log, "no-scheme")
	require.Error(t, err)
}

func TestViperValuesSnapshot(t *testing.T) {
	values := service.StaticValues{"a": "1"}
	got, ok := values.Lookup("a")
	require.True(t, ok)
	require.Equal(t, "1", got)
	_, ok = values.Lookup("b")
	require.False(t, ok)
}
