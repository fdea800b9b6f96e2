package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/puffin/foundation/blockchain/signature"
)

// Set of error variables for transaction construction.
var (
	ErrInvalidAccountID = errors.New("account is not a properly formatted public key")
	ErrSignCoinbase     = errors.New("coinbase transactions are not signed")
)

// TimeFormat is the layout used for transaction and block times. The time
// is part of the content hash so every node must render it the same way.
const TimeFormat = "02-01-2006 15:04:05"

// FormatTime renders the time using the ledger's time layout.
func FormatTime(t time.Time) string {
	return t.Format(TimeFormat)
}

// =============================================================================

// Tx represents a transfer of value between two wallets. The json field
// names are part of the wire protocol, including the misspelled receiver.
type Tx struct {
	Sender    AccountID `json:"sender"`              // Public key of the sender or the coinbase sentinel.
	Receiver  AccountID `json:"reciever"`            // Public key of the receiver.
	Amount    uint64    `json:"amount"`              // Value being transferred.
	Time      string    `json:"time"`                // Creation time fixed at construction.
	Hash      string    `json:"hash"`                // Content hash of the fields above.
	Signature string    `json:"signature,omitempty"` // Sender's signature over the content hash.
}

// NewTx constructs an unsigned transaction with its content hash.
func NewTx(sender AccountID, receiver AccountID, amount uint64, t time.Time) Tx {
	tx := Tx{
		Sender:   sender,
		Receiver: receiver,
		Amount:   amount,
		Time:     FormatTime(t),
	}
	tx.Hash = tx.CalculateHash()

	return tx
}

// NewCoinbaseTx constructs the mining reward transaction for the miner.
func NewCoinbaseTx(miner AccountID, reward uint64, t time.Time) Tx {
	return NewTx(CoinbaseSender, miner, reward, t)
}

// CalculateHash recomputes the content hash from the sender, receiver,
// amount and time. The stored Hash is never trusted.
func (tx Tx) CalculateHash() string {
	return signature.Hash(string(tx.Sender) + string(tx.Receiver) + strconv.FormatUint(tx.Amount, 10) + tx.Time)
}

// Sign uses the specified private key to sign the content hash.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (Tx, error) {
	if tx.IsCoinbase() {
		return Tx{}, ErrSignCoinbase
	}

	sig, err := signature.Sign(tx.CalculateHash(), privateKey)
	if err != nil {
		return Tx{}, fmt.Errorf("signing transaction: %w", err)
	}

	tx.Signature = sig

	return tx, nil
}

// VerifySignature checks the signature against the sender's public key and
// the stored content hash. Coinbase transactions carry no signature and are
// reported as verified; their policy is enforced by the ledger.
func (tx Tx) VerifySignature() bool {
	if tx.IsCoinbase() {
		return true
	}

	if tx.Signature == "" {
		return false
	}

	return signature.Verify(string(tx.Sender), tx.Hash, tx.Signature)
}

// IsHashValid reports whether the stored hash matches a recomputation.
func (tx Tx) IsHashValid() bool {
	return tx.Hash == tx.CalculateHash()
}

// IsCoinbase reports whether this is a mining reward transaction.
func (tx Tx) IsCoinbase() bool {
	return tx.Sender.IsCoinbase()
}

// Touches reports whether the account is the sender or receiver.
func (tx Tx) Touches(account AccountID) bool {
	return tx.Sender == account || tx.Receiver == account
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s --> %s %d", tx.Sender.Short(), tx.Receiver.Short(), tx.Amount)
}
