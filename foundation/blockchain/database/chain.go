package database

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyChain is returned when a decoded chain does not contain a genesis block.
var ErrEmptyChain = errors.New("chain has no blocks")

// ChainData represents the chain as it is serialized to disk and over the
// network.
type ChainData struct {
	Chain []Block `json:"chain"`
}

// NewChainData constructs the value to serialize to disk and network.
func NewChainData(chain []Block) ChainData {
	cd := ChainData{
		Chain: make([]Block, len(chain)),
	}

	for i, block := range chain {
		if block.Trans == nil {
			block.Trans = []Tx{}
		}
		cd.Chain[i] = block
	}

	return cd
}

// Encode marshals the chain into the wire format.
func Encode(chain []Block) ([]byte, error) {
	return json.Marshal(NewChainData(chain))
}

// Decode unmarshals a chain from the wire format. The stored hashes are kept
// as provided so they can be validated against a recomputation.
func Decode(data []byte) ([]Block, error) {
	var cd ChainData
	if err := json.Unmarshal(data, &cd); err != nil {
		return nil, fmt.Errorf("decoding chain: %w", err)
	}

	if len(cd.Chain) == 0 {
		return nil, ErrEmptyChain
	}

	return cd.Chain, nil
}

// CopyChain returns a deep copy of the chain so callers can't mutate the
// blocks or transactions of the original.
func CopyChain(chain []Block) []Block {
	out := make([]Block, len(chain))
	for i, block := range chain {
		trans := make([]Tx, len(block.Trans))
		copy(trans, block.Trans)
		block.Trans = trans
		out[i] = block
	}

	return out
}
