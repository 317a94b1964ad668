// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog

import "sync"

// Lock scopes. Mutations lock the smallest subtree they touch; when nested
// scopes are held together they are always acquired types, then database,
// then table, so lock ordering stays acyclic.
func databaseScope(database string) string { return "db/" + database }

func tableScope(database, table string) string { return "tbl/" + database + "/" + table }

const typesScope = "types"

// keyedMutex provides exclusive locking per dynamic key.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*mutexEntry
}

type mutexEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*mutexEntry)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (m *keyedMutex) Lock(key string) (unlock func()) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if !ok {
		entry = &mutexEntry{}
		m.entries[key] = entry
	}
	entry.refs++
	m.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		m.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(m.entries, key)
		}
		m.mu.Unlock()
	}
}
