// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package teststore

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/datalith/catalogd/private/kvstore"
)

// ErrForced is returned while the store is in forced-error mode.
var ErrForced = errors.New("internal failure")

// Client implements an in-memory key value store, kept in key order.
type Client struct {
	mu sync.Mutex

	Items     kvstore.Items
	ForceErrs int

	CallCount struct {
		Get            int
		Put            int
		Delete         int
		Scan           int
		CompareAndSwap int
		Close          int
	}

	version int
}

// New creates a new in-memory key-value store.
func New() *Client { return &Client{} }

// indexOf finds index of key or where it could be inserted.
func (store *Client) indexOf(key kvstore.Key) (int, bool) {
	i := sort.Search(len(store.Items), func(k int) bool {
		return !store.Items[k].Key.Less(key)
	})

	if i >= len(store.Items) {
		return i, false
	}
	return i, store.Items[i].Key.Equal(key)
}

func (store *Client) forcedError() bool {
	if store.ForceErrs > 0 {
		store.ForceErrs--
		return true
	}
	return false
}

// Put adds a value to store.
func (store *Client) Put(ctx context.Context, key kvstore.Key, value kvstore.Value) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.version++
	store.CallCount.Put++
	if store.forcedError() {
		return ErrForced
	}
	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}

	store.put(key, value)
	return nil
}

func (store *Client) put(key kvstore.Key, value kvstore.Value) {
	keyIndex, found := store.indexOf(key)
	if found {
		store.Items[keyIndex].Value = value.Clone()
		return
	}

	store.Items = append(store.Items, kvstore.Item{})
	copy(store.Items[keyIndex+1:], store.Items[keyIndex:])
	store.Items[keyIndex] = kvstore.Item{
		Key:   key.Clone(),
		Value: value.Clone(),
	}
}

// Get gets a value from the store.
func (store *Client) Get(ctx context.Context, key kvstore.Key) (kvstore.Value, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.CallCount.Get++
	if store.forcedError() {
		return nil, ErrForced
	}
	if key.IsZero() {
		return nil, kvstore.ErrEmptyKey.New("")
	}

	keyIndex, found := store.indexOf(key)
	if !found {
		return nil, kvstore.ErrKeyNotFound.New("%q", key)
	}
	return store.Items[keyIndex].Value.Clone(), nil
}

// Delete deletes key and the value.
func (store *Client) Delete(ctx context.Context, key kvstore.Key) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.version++
	store.CallCount.Delete++
	if store.forcedError() {
		return ErrForced
	}
	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}

	keyIndex, found := store.indexOf(key)
	if !found {
		return nil
	}
	store.delete(keyIndex)
	return nil
}

func (store *Client) delete(keyIndex int) {
	copy(store.Items[keyIndex:], store.Items[keyIndex+1:])
	store.Items = store.Items[:len(store.Items)-1]
}

// Scan iterates over all keys with the given prefix in ascending key order.
func (store *Client) Scan(ctx context.Context, prefix kvstore.Key, fn func(context.Context, kvstore.Key, kvstore.Value) error) error {
	store.mu.Lock()
	store.CallCount.Scan++
	if store.forcedError() {
		store.mu.Unlock()
		return ErrForced
	}

	start, _ := store.indexOf(prefix)
	var items kvstore.Items
	for i := start; i < len(store.Items); i++ {
		if !bytes.HasPrefix(store.Items[i].Key, prefix) {
			break
		}
		items = append(items, kvstore.Item{
			Key:   store.Items[i].Key.Clone(),
			Value: store.Items[i].Value.Clone(),
		})
	}
	store.mu.Unlock()

	for i := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, items[i].Key, items[i].Value); err != nil {
			return err
		}
	}
	return nil
}

// CompareAndSwap atomically compares and swaps oldValue with newValue.
func (store *Client) CompareAndSwap(ctx context.Context, key kvstore.Key, oldValue, newValue kvstore.Value) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.version++
	store.CallCount.CompareAndSwap++
	if store.forcedError() {
		return ErrForced
	}
	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}

	keyIndex, found := store.indexOf(key)

	if oldValue == nil {
		if found {
			return kvstore.ErrKeyExists.New("%q", key)
		}
		if newValue == nil {
			return nil
		}
		store.put(key, newValue)
		return nil
	}

	if !found {
		return kvstore.ErrKeyNotFound.New("%q", key)
	}
	if !bytes.Equal(store.Items[keyIndex].Value, oldValue) {
		return kvstore.ErrValueChanged.New("%q", key)
	}
	if newValue == nil {
		store.delete(keyIndex)
		return nil
	}
	store.Items[keyIndex].Value = newValue.Clone()
	return nil
}

// Close closes the store.
func (store *Client) Close() error {
	store.CallCount.Close++
	return nil
}
