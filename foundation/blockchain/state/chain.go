package state

import (
	"fmt"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
)

// ReplaceChain replaces the local chain with the candidate if the candidate
// is longer and valid. The candidate is validated against itself. Pending
// transactions that are in the new chain are removed in the same step.
func (s *State) ReplaceChain(chain []database.Block) (bool, error) {
	if len(chain) <= s.ChainLength() {
		return false, nil
	}

	if err := s.IsChainValid(chain); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The local chain might have grown while the candidate was validated.
	if len(chain) <= len(s.chain) {
		return false, nil
	}

	s.chain = database.CopyChain(chain)
	pruned := s.pruneMempool()

	s.evHandler("viewer: state: ReplaceChain: replaced: blocks[%d]: latest[%s]: pruned[%d]", len(s.chain), s.chain[len(s.chain)-1], pruned)

	return true, nil
}

// ToJSON returns the chain in the wire format.
func (s *State) ToJSON() ([]byte, error) {
	return database.Encode(s.currentChain())
}

// FromJSON decodes a chain in the wire format, validates it and makes it the
// local chain regardless of its length.
func (s *State) FromJSON(data []byte) error {
	chain, err := database.Decode(data)
	if err != nil {
		return err
	}

	if err := s.IsChainValid(chain); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain = chain
	s.pruneMempool()

	return nil
}

// Snapshot writes the chain to the configured storage. Nothing happens
// when no storage is configured.
func (s *State) Snapshot() error {
	if s.storage == nil {
		return nil
	}

	chain := s.currentChain()
	if err := s.storage.Write(database.NewChainData(chain)); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	s.evHandler("state: Snapshot: written: blocks[%d]", len(chain))

	return nil
}
