package state

import (
	"crypto/ecdsa"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
)

// SubmitTransaction constructs and signs a transaction with the private key
// and adds it to the mempool if it passes validation. The key is only used
// for this call and is never stored.
func (s *State) SubmitTransaction(privateKey *ecdsa.PrivateKey, sender database.AccountID, receiver database.AccountID, amount uint64) (database.Tx, error) {
	tx, err := database.NewTx(sender, receiver, amount, s.now()).Sign(privateKey)
	if err != nil {
		return database.Tx{}, err
	}

	if err := s.SubmitSignedTransaction(tx); err != nil {
		return database.Tx{}, err
	}

	return tx, nil
}

// SubmitSignedTransaction accepts a transaction signed by a wallet for
// inclusion in the mempool. Submitting a transaction already in the mempool
// is not an error and leaves the mempool unchanged.
func (s *State) SubmitSignedTransaction(tx database.Tx) error {
	if tx.IsCoinbase() {
		return newTxError(tx.Hash, ReasonCoinbaseSubmit)
	}

	if !tx.Receiver.IsAccountID() {
		return newTxError(tx.Hash, ReasonInvalidReceiver)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if chainContains(s.chain, tx.Hash) {
		return newTxError(tx.Hash, ReasonAlreadyMined)
	}

	if err := s.IsTransactionValid(tx, s.chain); err != nil {
		return err
	}

	if !s.mempool.Upsert(tx) {
		s.evHandler("state: SubmitSignedTransaction: duplicate: tx[%s]", tx.Hash)
		return nil
	}

	s.evHandler("viewer: state: SubmitSignedTransaction: added: tx[%s]: %s", tx.Hash, tx)

	return nil
}

// UpsertMempool adds the transactions that are not already pending. They are
// not validated here, validation happens when they are mined. The number of
// transactions added is returned.
func (s *State) UpsertMempool(trans []database.Tx) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added int
	for _, tx := range trans {
		if s.mempool.Upsert(tx) {
			added++
		}
	}

	return added
}

// PruneMempool removes pending transactions that are already in the chain.
// The number of transactions removed is returned.
func (s *State) PruneMempool() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pruneMempool()
}

// =============================================================================

// pruneMempool removes mined transactions from the mempool. The caller must
// hold the write lock.
func (s *State) pruneMempool() int {
	mined := chainHashes(s.chain)

	return s.mempool.DeleteFunc(func(tx database.Tx) bool {
		_, exists := mined[tx.Hash]
		return exists
	})
}

// chainHashes returns the set of transaction hashes in the chain.
func chainHashes(chain []database.Block) map[string]struct{} {
	hashes := make(map[string]struct{})
	for _, block := range chain {
		for _, tx := range block.Trans {
			hashes[tx.Hash] = struct{}{}
		}
	}

	return hashes
}

// chainContains reports whether the transaction hash is in the chain.
func chainContains(chain []database.Block, hash string) bool {
	for _, block := range chain {
		if block.ContainsTx(hash) {
			return true
		}
	}

	return false
}
