// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"slices"
	"sync"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
)

// Mempool represents a cache of pending transactions keyed by content hash.
// Insertion order is preserved so mining batches are deterministic.
type Mempool struct {
	mu    sync.RWMutex
	pool  map[string]database.Tx
	order []string
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.Tx),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds a transaction to the pool. If a transaction with the same
// content hash exists, the pool is left unchanged and false is returned.
func (mp *Mempool) Upsert(tx database.Tx) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[tx.Hash]; exists {
		return false
	}

	mp.pool[tx.Hash] = tx
	mp.order = append(mp.order, tx.Hash)

	return true
}

// Contains reports whether a transaction with the content hash is pending.
func (mp *Mempool) Contains(hash string) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.pool[hash]
	return exists
}

// Delete removes the transactions with the specified content hashes. Hashes
// that are not in the pool are ignored. The number removed is returned.
func (mp *Mempool) Delete(hashes ...string) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	for _, hash := range hashes {
		if _, exists := mp.pool[hash]; exists {
			delete(mp.pool, hash)
			removed++
		}
	}

	if removed > 0 {
		mp.order = slices.DeleteFunc(mp.order, func(hash string) bool {
			_, exists := mp.pool[hash]
			return !exists
		})
	}

	return removed
}

// DeleteFunc removes every transaction the function reports true for.
func (mp *Mempool) DeleteFunc(fn func(tx database.Tx) bool) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	mp.order = slices.DeleteFunc(mp.order, func(hash string) bool {
		if fn(mp.pool[hash]) {
			delete(mp.pool, hash)
			removed++
			return true
		}
		return false
	})

	return removed
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Tx)
	mp.order = nil
}

// Copy returns the pending transactions in insertion order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	trans := make([]database.Tx, len(mp.order))
	for i, hash := range mp.order {
		trans[i] = mp.pool[hash]
	}

	return trans
}
