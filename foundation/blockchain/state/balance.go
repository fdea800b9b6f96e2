package state

import (
	"iter"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
)

// Balance computes the wallet's balance by replaying every transaction in
// the chain.
func (s *State) Balance(wallet database.AccountID) int64 {
	chain := s.currentChain()

	var balance int64
	for _, block := range chain {
		for _, tx := range block.Trans {
			balance += delta(tx, wallet)
		}
	}

	return balance
}

// Balances computes the balance of every account in the chain.
func (s *State) Balances() map[database.AccountID]int64 {
	return Balances(s.currentChain())
}

// TransactionHistory returns the transactions in chain order where the
// wallet is the sender or the receiver. The sequence is evaluated lazily
// over the chain as it was when this was called.
func (s *State) TransactionHistory(wallet database.AccountID) iter.Seq[database.Tx] {
	chain := s.currentChain()

	return func(yield func(database.Tx) bool) {
		for _, block := range chain {
			for _, tx := range block.Trans {
				if !tx.Touches(wallet) {
					continue
				}
				if !yield(tx) {
					return
				}
			}
		}
	}
}

// Balances computes the balance of every account in the specified chain.
func Balances(chain []database.Block) map[database.AccountID]int64 {
	balances := make(map[database.AccountID]int64)
	for _, block := range chain {
		for _, tx := range block.Trans {
			applyTx(balances, tx)
		}
	}

	return balances
}

// =============================================================================

// currentChain returns the chain without copying the blocks. Blocks are
// never modified once they are part of a chain, and appends never write into
// the range visible to this slice.
func (s *State) currentChain() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain[:len(s.chain):len(s.chain)]
}
