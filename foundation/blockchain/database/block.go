package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/puffin/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together. The json field
// names are part of the wire protocol, including the misspelled nonce.
type Block struct {
	Index    uint64 `json:"index"`        // Position in the chain, genesis is 0.
	Time     string `json:"time"`         // Time the block was constructed.
	PrevHash string `json:"prev"`         // Hash of the previous block, empty for genesis.
	Nonce    uint64 `json:"nonse"`        // Value identified to solve the hash solution.
	Hash     string `json:"hash"`         // Hash of the block contents.
	Trans    []Tx   `json:"transactions"` // Ordered set of transactions.
}

// NewBlock constructs a block that follows the previous block in the chain.
// The block still needs to be mined.
func NewBlock(index uint64, prevHash string, trans []Tx, t time.Time) Block {
	b := Block{
		Index:    index,
		Time:     FormatTime(t),
		PrevHash: prevHash,
		Trans:    trans,
	}
	b.Hash = b.CalculateHash()

	return b
}

// Genesis constructs the genesis block for the specified time. Every node
// on a network must use the same time to share the same genesis hash.
func Genesis(t time.Time) Block {
	return NewBlock(0, "", []Tx{}, t)
}

// CalculateHash recomputes the block hash from the time, the ordered
// transaction hashes, the previous hash and the nonce.
func (b Block) CalculateHash() string {
	var sb strings.Builder
	sb.WriteString(b.Time)
	for _, tx := range b.Trans {
		sb.WriteString(tx.Hash)
	}
	sb.WriteString(b.PrevHash)
	sb.WriteString(strconv.FormatUint(b.Nonce, 10))

	return signature.Hash(sb.String())
}

// IsHashValid reports whether the stored hash matches a recomputation.
func (b Block) IsHashValid() bool {
	return b.Hash == b.CalculateHash()
}

// ContainsTx reports whether a transaction with the content hash is part of
// this block.
func (b Block) ContainsTx(hash string) bool {
	for _, tx := range b.Trans {
		if tx.Hash == hash {
			return true
		}
	}

	return false
}

// POW performs the work of mining to find a valid hash for the block. Pointer
// semantics are being used since a nonce is being discovered. The context is
// checked between every attempt so mining can be cancelled.
func (b *Block) POW(ctx context.Context, difficulty int, ev func(v string, args ...any)) error {
	ev("database: POW: MINING: started: blk[%d]: txs[%d]", b.Index, len(b.Trans))
	defer ev("database: POW: MINING: completed: blk[%d]", b.Index)

	for _, tx := range b.Trans {
		ev("database: POW: MINING: tx[%s]", tx)
	}

	b.Nonce = 0
	b.Hash = b.CalculateHash()

	var attempts uint64
	for {
		if ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED: attempts[%d]", attempts)
			return ctx.Err()
		}

		if IsHashSolved(difficulty, b.Hash) {
			ev("database: POW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", b.PrevHash, b.Hash, attempts)
			return nil
		}

		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: POW: MINING: attempts[%d]", attempts)
		}

		b.Nonce++
		b.Hash = b.CalculateHash()
	}
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%d:%s", b.Index, b.Hash)
}

// =============================================================================

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of leading 0's.
func IsHashSolved(difficulty int, hash string) bool {
	if difficulty <= 0 {
		return true
	}

	if len(hash) < difficulty {
		return false
	}

	return hash[:difficulty] == strings.Repeat("0", difficulty)
}
