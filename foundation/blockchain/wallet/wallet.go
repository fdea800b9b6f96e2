// Package wallet handles the key pair file that identifies an account on
// the ledger. The ledger never stores private keys, they only live here.
package wallet

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/signature"
)

// ErrKeyMismatch is returned when the public key in a wallet file doesn't
// belong to the private key.
var ErrKeyMismatch = errors.New("public key does not match the private key")

// Wallet represents the key pair stored in a wallet file.
type Wallet struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// Generate creates a wallet with a new key pair.
func Generate() (Wallet, error) {
	pk, err := signature.GenerateKey()
	if err != nil {
		return Wallet{}, fmt.Errorf("generating key: %w", err)
	}

	return New(pk), nil
}

// New constructs a wallet for the private key.
func New(pk *ecdsa.PrivateKey) Wallet {
	return Wallet{
		PublicKey:  signature.PublicKeyHex(&pk.PublicKey),
		PrivateKey: signature.PrivateKeyHex(pk),
	}
}

// Load reads and validates the wallet file.
func Load(path string) (Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Wallet{}, err
	}

	var w Wallet
	if err := json.Unmarshal(data, &w); err != nil {
		return Wallet{}, fmt.Errorf("decoding wallet %s: %w", path, err)
	}

	if _, err := w.ECDSA(); err != nil {
		return Wallet{}, fmt.Errorf("wallet %s: %w", path, err)
	}

	return w, nil
}

// LoadOrGenerate reads the wallet file, creating it with a new key pair if
// it doesn't exist. The boolean reports whether a wallet was created.
func LoadOrGenerate(path string) (Wallet, bool, error) {
	w, err := Load(path)
	switch {
	case err == nil:
		return w, false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return Wallet{}, false, err
	}

	w, err = Generate()
	if err != nil {
		return Wallet{}, false, err
	}

	if err := w.Save(path); err != nil {
		return Wallet{}, false, err
	}

	return w, true, nil
}

// Save writes the wallet file, only readable by the owner.
func (w Wallet) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ECDSA decodes the private key and checks it matches the public key.
func (w Wallet) ECDSA() (*ecdsa.PrivateKey, error) {
	pk, err := signature.HexToPrivateKey(w.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("decoding private key: %w", err)
	}

	if signature.PublicKeyHex(&pk.PublicKey) != w.PublicKey {
		return nil, ErrKeyMismatch
	}

	return pk, nil
}

// Account returns the ledger account for this wallet.
func (w Wallet) Account() database.AccountID {
	return database.AccountID(w.PublicKey)
}
