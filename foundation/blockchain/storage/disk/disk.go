// Package disk implements the ability to read and write a chain snapshot to
// a single json file on disk.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/storage"
)

// Disk represents the serialization implementation for reading and storing
// the chain snapshot in a json file. This implements the storage.Storer
// interface.
type Disk struct {
	mu   sync.Mutex
	path string
}

// New constructs a Disk value for use. The directory for the file is
// created if it doesn't exist.
func New(path string) (*Disk, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	return &Disk{path: path}, nil
}

// Close in this implementation has nothing to do since the file is opened
// per operation.
func (d *Disk) Close() error {
	return nil
}

// Write replaces the snapshot file. The data is written to a temporary file
// first and renamed so a crash never leaves a partial snapshot behind.
func (d *Disk) Write(cd database.ChainData) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := json.MarshalIndent(cd, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), d.path)
}

// Read loads the snapshot file.
func (d *Disk) Read() (database.ChainData, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return database.ChainData{}, storage.ErrNotFound
		}
		return database.ChainData{}, err
	}

	var cd database.ChainData
	if err := json.Unmarshal(data, &cd); err != nil {
		return database.ChainData{}, fmt.Errorf("decoding snapshot %s: %w", d.path, err)
	}

	return cd, nil
}
