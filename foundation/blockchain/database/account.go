package database

import (
	"crypto/ecdsa"

	"github.com/ardanlabs/puffin/foundation/blockchain/signature"
)

// CoinbaseSender is the sentinel sender used for mining reward transactions.
// A coinbase transaction has no real sender and carries no signature.
const CoinbaseSender AccountID = "Miner Reward"

// =============================================================================

// AccountID represents a wallet on the ledger. It is the hex encoding of the
// wallet's compressed public key.
type AccountID string

// ToAccountID converts a hex-encoded public key to an account id and
// validates the encoding.
func ToAccountID(hex string) (AccountID, error) {
	a := AccountID(hex)
	if !a.IsAccountID() {
		return "", ErrInvalidAccountID
	}

	return a, nil
}

// PublicKeyToAccountID converts the public key to an account id.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(signature.PublicKeyHex(&pk))
}

// IsAccountID verifies the account id decodes to a valid public key.
func (a AccountID) IsAccountID() bool {
	return signature.IsPublicKey(string(a))
}

// IsCoinbase reports whether this is the coinbase sentinel.
func (a AccountID) IsCoinbase() bool {
	return a == CoinbaseSender
}

// Short returns an abbreviated form of the account for logging.
func (a AccountID) Short() string {
	if len(a) <= 12 {
		return string(a)
	}

	return string(a[:12])
}
