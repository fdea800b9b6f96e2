package state

import (
	"fmt"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
)

// IsTransactionValid applies the consensus rules to the transaction using
// the chain as context. The sender's balance is computed from the
// transactions that precede this one in the chain. A transaction that isn't
// in the chain is checked against the balance of the whole chain, so pending
// transactions are not checked against each other.
func (s *State) IsTransactionValid(tx database.Tx, chain []database.Block) error {
	return s.checkTx(tx, balanceBefore(chain, tx.Sender, tx.Hash))
}

// IsChainValid validates the links, hashes, proof of work and transactions
// of every block after genesis. The balances used to check transactions are
// computed from the chain being validated. The first violation is returned.
func (s *State) IsChainValid(chain []database.Block) error {
	if len(chain) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChain, database.ErrEmptyChain)
	}

	balances := make(map[database.AccountID]int64)
	for _, tx := range chain[0].Trans {
		applyTx(balances, tx)
	}

	for i := 1; i < len(chain); i++ {
		block := chain[i]

		if block.PrevHash != chain[i-1].Hash {
			return fmt.Errorf("%w: block[%d]: previous hash does not match", ErrInvalidChain, i)
		}

		if !block.IsHashValid() {
			return fmt.Errorf("%w: block[%d]: hash does not match the block content", ErrInvalidChain, i)
		}

		if !database.IsHashSolved(s.genesis.Difficulty, block.Hash) {
			return fmt.Errorf("%w: block[%d]: proof of work not met for difficulty %d", ErrInvalidChain, i, s.genesis.Difficulty)
		}

		for _, tx := range block.Trans {
			if err := s.checkTx(tx, balances[tx.Sender]); err != nil {
				return fmt.Errorf("%w: block[%d]: tx[%s]: %w", ErrInvalidChain, i, tx.Hash, err)
			}
			applyTx(balances, tx)
		}
	}

	return nil
}

// =============================================================================

// checkTx applies the transaction rules given the sender's balance at the
// transaction's position in the chain.
func (s *State) checkTx(tx database.Tx, senderBalance int64) error {
	if tx.IsCoinbase() {
		if tx.Amount > s.genesis.MiningReward {
			return newTxError(tx.Hash, ReasonCoinbaseAmount)
		}

		// The block hash covers only the transaction hash, so the stored
		// hash has to be tied back to the amount.
		if !tx.IsHashValid() {
			return newTxError(tx.Hash, ReasonHashMismatch)
		}

		return nil
	}

	if tx.Sender == tx.Receiver {
		return newTxError(tx.Hash, ReasonSelfTransfer)
	}

	if senderBalance < 0 || tx.Amount > uint64(senderBalance) {
		return newTxError(tx.Hash, ReasonInsufficientFunds)
	}

	if !tx.VerifySignature() {
		return newTxError(tx.Hash, ReasonBadSignature)
	}

	if !tx.IsHashValid() {
		return newTxError(tx.Hash, ReasonHashMismatch)
	}

	return nil
}

// balanceBefore computes the account's balance from the transactions that
// precede the transaction with the specified hash. If the hash isn't found
// the balance of the whole chain is returned.
func balanceBefore(chain []database.Block, account database.AccountID, hash string) int64 {
	var balance int64

	for _, block := range chain {
		for _, tx := range block.Trans {
			if tx.Hash == hash {
				return balance
			}
			balance += delta(tx, account)
		}
	}

	return balance
}

// applyTx moves the transaction amount between the accounts.
func applyTx(balances map[database.AccountID]int64, tx database.Tx) {
	balances[tx.Receiver] += int64(tx.Amount)
	if !tx.IsCoinbase() {
		balances[tx.Sender] -= int64(tx.Amount)
	}
}

// delta returns the signed change the transaction makes to the account.
func delta(tx database.Tx, account database.AccountID) int64 {
	var d int64
	if tx.Receiver == account {
		d += int64(tx.Amount)
	}
	if tx.Sender == account && !tx.IsCoinbase() {
		d -= int64(tx.Amount)
	}

	return d
}
