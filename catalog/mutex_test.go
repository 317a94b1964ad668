// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutex(t *testing.T) {
	locks := newKeyedMutex()

	// distinct keys do not block each other
	unlockA := locks.Lock("a")
	unlockB := locks.Lock("b")
	unlockB()
	unlockA()

	// the same key serializes
	const workers = 32
	counter := 0
	var group sync.WaitGroup
	for i := 0; i < workers; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			unlock := locks.Lock("shared")
			defer unlock()
			counter++
		}()
	}
	group.Wait()
	require.Equal(t, workers, counter)

	// entries are released once unused
	locks.mu.Lock()
	require.Empty(t, locks.entries)
	locks.mu.Unlock()
}
