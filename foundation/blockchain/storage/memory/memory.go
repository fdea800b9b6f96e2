// Package memory implements the ability to read and write chain snapshots
// to memory.
package memory

import (
	"sync"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/storage"
)

// Memory represents the serialization implementation for reading and storing
// snapshots in memory. This implements the storage.Storer interface.
type Memory struct {
	mu     sync.RWMutex
	chain  []database.Block
	writes int
}

// New constructs an Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write replaces the stored snapshot.
func (m *Memory) Write(cd database.ChainData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chain = database.CopyChain(cd.Chain)
	m.writes++

	return nil
}

// Read returns the stored snapshot.
func (m *Memory) Read() (database.ChainData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.chain == nil {
		return database.ChainData{}, storage.ErrNotFound
	}

	return database.ChainData{Chain: database.CopyChain(m.chain)}, nil
}

// Writes returns the number of snapshots written so far.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.writes
}
