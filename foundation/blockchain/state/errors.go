package state

import (
	"errors"
	"fmt"
)

// Set of error variables for ledger and registry operations.
var (
	ErrNoTransactions = errors.New("no transactions in mempool")
	ErrChainChanged   = errors.New("chain changed while mining")
	ErrInvalidChain   = errors.New("invalid chain")
	ErrVersionBehind  = errors.New("local version is behind the network, upgrade required")
	ErrVersionAhead   = errors.New("local version is ahead of the network, seed peers are outdated")
)

// Set of reasons a transaction can be rejected.
const (
	ReasonCoinbaseAmount    = "coinbase amount exceeds the mining reward"
	ReasonCoinbaseSubmit    = "coinbase transactions can't be submitted"
	ReasonSelfTransfer      = "sender and receiver are the same account"
	ReasonInsufficientFunds = "insufficient funds"
	ReasonBadSignature      = "signature does not verify"
	ReasonHashMismatch      = "hash does not match the transaction content"
	ReasonInvalidReceiver   = "receiver is not a valid account"
	ReasonAlreadyMined      = "transaction is already in the chain"
)

// TxError is returned when a transaction fails validation. No partial
// state change is made when this error is returned.
type TxError struct {
	Hash   string
	Reason string
}

func newTxError(hash string, reason string) error {
	return &TxError{
		Hash:   hash,
		Reason: reason,
	}
}

// Error implements the error interface.
func (te *TxError) Error() string {
	return fmt.Sprintf("transaction rejected: %s", te.Reason)
}

// IsTxError checks if an error of type TxError exists.
func IsTxError(err error) bool {
	var te *TxError
	return errors.As(err, &te)
}

// GetTxError returns a copy of the TxError pointer.
func GetTxError(err error) *TxError {
	var te *TxError
	if !errors.As(err, &te) {
		return nil
	}
	return te
}
