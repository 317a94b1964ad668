// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package kvstore

import (
	"bytes"
	"context"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var mon = monkit.Package()

// Delimiter separates nested paths in storage keys.
const Delimiter = '/'

var (
	// ErrKeyNotFound is returned when a key does not exist.
	ErrKeyNotFound = errs.Class("key not found")

	// ErrKeyExists is returned by a conditional-on-absent CompareAndSwap
	// when the key is already present.
	ErrKeyExists = errs.Class("key exists")

	// ErrEmptyKey is returned when an empty key is used in Put or in CompareAndSwap.
	ErrEmptyKey = errs.Class("empty key")

	// ErrValueChanged is returned when the current value of the key does not
	// match the old value in CompareAndSwap.
	ErrValueChanged = errs.Class("value changed")
)

// Key is the type for the keys in a `Store`.
type Key []byte

// Value is the type for the values in a `Store`.
type Value []byte

// Keys is the type for a slice of keys in a `Store`.
type Keys []Key

// Values is the type for a slice of Values in a `Store`.
type Values []Value

// Items keeps all Item.
type Items []Item

// Item holds a single key and value pair.
type Item struct {
	Key   Key
	Value Value
}

// Store describes transactional key/value stores like boltdb.
//
// Scan iterates entries in ascending key order; the catalog relies on this
// for stable enumeration.
type Store interface {
	// Put adds a value to the provided key, overwriting any existing value.
	Put(context.Context, Key, Value) error
	// Get returns the value for a key, or ErrKeyNotFound.
	Get(context.Context, Key) (Value, error)
	// Delete deletes key and the value.
	Delete(context.Context, Key) error
	// Scan iterates over all keys with the given prefix in ascending key
	// order. The Key and Value are valid only for the duration of callback.
	Scan(ctx context.Context, prefix Key, fn func(context.Context, Key, Value) error) error
	// CompareAndSwap atomically compares and swaps oldValue with newValue.
	// A nil oldValue means the key must be absent (ErrKeyExists otherwise),
	// a nil newValue deletes the key. A mismatch returns ErrValueChanged.
	CompareAndSwap(ctx context.Context, key Key, oldValue, newValue Value) error
	// Close closes the store.
	Close() error
}

// IsZero returns true if the value struct is a zero value.
func (value Value) IsZero() bool {
	return len(value) == 0
}

// IsZero returns true if the key struct is a zero value.
func (key Key) IsZero() bool {
	return len(key) == 0
}

// MarshalBinary implements the encoding.BinaryMarshaler interface for the Value type.
func (value Value) MarshalBinary() ([]byte, error) {
	return value, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface for the Key type.
func (key Key) MarshalBinary() ([]byte, error) {
	return key, nil
}

// Strings returns everything as strings.
func (keys Keys) Strings() []string {
	strs := make([]string, 0, len(keys))
	for _, key := range keys {
		strs = append(strs, string(key))
	}
	return strs
}

// String implements the Stringer interface.
func (key Key) String() string { return string(key) }

// Clone creates a copy of key.
func (key Key) Clone() Key { return append(key[:0:0], key...) }

// Clone creates a copy of value.
func (value Value) Clone() Value { return append(value[:0:0], value...) }

// Len is the number of elements in the collection.
func (items Items) Len() int { return len(items) }

// Less reports whether the element with
// index i should sort before the element with index k.
func (items Items) Less(i, k int) bool { return items[i].Less(items[k]) }

// Swap swaps the elements with indexes i and k.
func (items Items) Swap(i, k int) { items[i], items[k] = items[k], items[i] }

// Less returns whether item should be sorted before b.
func (item Item) Less(b Item) bool { return item.Key.Less(b.Key) }

// Less returns whether key should be sorted before b.
func (key Key) Less(b Key) bool { return bytes.Compare([]byte(key), []byte(b)) < 0 }

// Equal returns whether key and b are equal.
func (key Key) Equal(b Key) bool { return bytes.Equal([]byte(key), []byte(b)) }

// HasPrefix returns whether key begins with prefix.
func (key Key) HasPrefix(prefix Key) bool { return bytes.HasPrefix(key, prefix) }
