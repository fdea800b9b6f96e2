package state

import (
	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/genesis"
	"github.com/ardanlabs/puffin/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveVersion returns the protocol version this node speaks.
func (s *State) RetrieveVersion() string {
	return s.genesis.Version
}

// RetrieveChain returns a copy of the chain.
func (s *State) RetrieveChain() []database.Block {
	return database.CopyChain(s.currentChain())
}

// ChainLength returns the number of blocks in the chain.
func (s *State) ChainLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.chain)
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	chain := s.currentChain()

	return database.CopyChain(chain[len(chain)-1:])[0]
}

// RetrieveMempool returns a copy of the mempool in insertion order.
func (s *State) RetrieveMempool() []database.Tx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveKnownHosts retrieves the addresses of the known peers.
func (s *State) RetrieveKnownHosts() []string {
	return s.knownPeers.Hosts(s.host)
}
