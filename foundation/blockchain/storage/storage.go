// Package storage defines the contract for persisting chain snapshots. The
// ledger keeps the chain in memory and periodically hands the whole chain to
// a Storer in the same shape used on the wire.
package storage

import (
	"errors"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
)

// ErrNotFound is returned by Read when no snapshot has been written yet.
var ErrNotFound = errors.New("snapshot not found")

// Storer represents the behavior required to be implemented by any package
// providing support for reading and writing chain snapshots.
type Storer interface {
	Write(cd database.ChainData) error
	Read() (database.ChainData, error)
	Close() error
}
