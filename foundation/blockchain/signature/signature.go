// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// Hash returns the hex encoded SHA-256 of the JSON string encoding of the
// value. Every peer on the network hashes the quoted string, so the quoting
// is part of the hash. Non-ASCII runes are written as \uXXXX escapes the way
// the rest of the network encodes them.
func Hash(value string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return ZeroHash
	}

	// Encode appends a newline that is not part of the JSON value.
	data := escapeNonASCII(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// escapeNonASCII rewrites every rune above 0x7F as a lower case \uXXXX
// escape. Runes outside the basic multilingual plane become a surrogate pair.
func escapeNonASCII(data []byte) []byte {
	var b bytes.Buffer
	for _, r := range string(data) {
		switch {
		case r < utf8.RuneSelf:
			b.WriteByte(byte(r))
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&b, "\\u%04x\\u%04x", r1, r2)
		default:
			fmt.Fprintf(&b, "\\u%04x", r)
		}
	}

	return b.Bytes()
}

// =============================================================================

// GenerateKey produces a new private key for a wallet.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// PublicKeyHex returns the hex encoding of the compressed public key. This
// is the identifier used as the sender and receiver of transactions.
func PublicKeyHex(publicKey *ecdsa.PublicKey) string {
	return hex.EncodeToString(crypto.CompressPubkey(publicKey))
}

// PrivateKeyHex returns the hex encoding of the private key.
func PrivateKeyHex(privateKey *ecdsa.PrivateKey) string {
	return hex.EncodeToString(crypto.FromECDSA(privateKey))
}

// HexToPrivateKey decodes a hex encoded private key.
func HexToPrivateKey(s string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(s)
}

// HexToPublicKey decodes a hex encoded compressed public key.
func HexToPublicKey(s string) (*ecdsa.PublicKey, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}

	return crypto.DecompressPubkey(data)
}

// IsPublicKey reports whether the string decodes to a valid public key.
func IsPublicKey(s string) bool {
	_, err := HexToPublicKey(s)
	return err == nil
}

// =============================================================================

// Sign uses the specified private key to sign the hex encoded hash.
func Sign(hash string, privateKey *ecdsa.PrivateKey) (string, error) {
	data, err := hex.DecodeString(hash)
	if err != nil {
		return "", err
	}

	if len(data) != sha256.Size {
		return "", errors.New("invalid hash length")
	}

	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	return hexutil.Encode(sig), nil
}

// Verify checks the signature was produced over the hash by the private key
// matching the hex encoded public key. Any decoding failure is reported as
// an invalid signature.
func Verify(publicKey string, hash string, sig string) bool {
	pubKey, err := hex.DecodeString(publicKey)
	if err != nil {
		return false
	}

	data, err := hex.DecodeString(hash)
	if err != nil || len(data) != sha256.Size {
		return false
	}

	sigBytes, err := hexutil.Decode(sig)
	if err != nil || len(sigBytes) != crypto.SignatureLength {
		return false
	}

	// Drop the recovery id, only the [R|S] values are verified.
	return crypto.VerifySignature(pubKey, data, sigBytes[:crypto.RecoveryIDOffset])
}
