// Package bolt implements the ability to read and write a chain snapshot to
// a bbolt key/value database.
package bolt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/storage"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketChain = []byte("chain")
	keySnapshot = []byte("snapshot")
)

// Bolt represents the serialization implementation for reading and storing
// the chain snapshot in a bbolt database. This implements the
// storage.Storer interface.
type Bolt struct {
	db *bolt.DB
}

// New opens the database file, creating it and the chain bucket if needed.
func New(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketChain)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Write replaces the stored snapshot inside a single transaction.
func (b *Bolt) Write(cd database.ChainData) error {
	data, err := json.Marshal(cd)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketChain).Put(keySnapshot, data)
	})
}

// Read loads the stored snapshot.
func (b *Bolt) Read() (database.ChainData, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketChain).Get(keySnapshot); v != nil {
			data = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return database.ChainData{}, err
	}

	if data == nil {
		return database.ChainData{}, storage.ErrNotFound
	}

	var cd database.ChainData
	if err := json.Unmarshal(data, &cd); err != nil {
		return database.ChainData{}, fmt.Errorf("decoding snapshot: %w", err)
	}

	return cd, nil
}
