// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/genesis"
	"github.com/ardanlabs/puffin/foundation/blockchain/mempool"
	"github.com/ardanlabs/puffin/foundation/blockchain/peer"
	"github.com/ardanlabs/puffin/foundation/blockchain/storage"
)

// defaultTimeout is used for calls to peers when no client is configured.
const defaultTimeout = 5 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and peer synchronization.
type Worker interface {
	Shutdown()
	Sync()
	SignalStartMining(miner database.AccountID)
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Host       string          // Address announced to peers.
	Genesis    genesis.Genesis // Consensus parameters.
	Storage    storage.Storer  // Optional snapshot store.
	HTTPClient *http.Client    // Optional client for calls to peers.
	Now        func() time.Time
	EvHandler  EventHandler
}

// State manages the chain, the pending pool and the known peers.
type State struct {
	host      string
	genesis   genesis.Genesis
	evHandler EventHandler
	now       func() time.Time
	client    *http.Client
	storage   storage.Storer

	// mu guards the chain and the mempool as one unit.
	mu      sync.RWMutex
	chain   []database.Block
	mempool *mempool.Mempool

	knownPeers *peer.PeerSet

	Worker Worker
}

// New constructs a new blockchain for data management. If a snapshot exists
// in storage it is validated and loaded.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	state := State{
		host:      cfg.Host,
		genesis:   cfg.Genesis,
		evHandler: ev,
		now:       now,
		client:    client,
		storage:   cfg.Storage,

		chain:   []database.Block{cfg.Genesis.Block()},
		mempool: mempool.New(),

		knownPeers: peer.NewPeerSet(),
	}

	if err := state.loadSnapshot(); err != nil {
		return nil, err
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down, writing a final snapshot.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	if s.storage == nil {
		return nil
	}

	// Make sure the storage is properly closed.
	defer s.storage.Close()

	return s.Snapshot()
}

// =============================================================================

// loadSnapshot replaces the genesis only chain with the stored snapshot.
func (s *State) loadSnapshot() error {
	if s.storage == nil {
		return nil
	}

	cd, err := s.storage.Read()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.evHandler("state: loadSnapshot: no snapshot, starting from genesis")
			return nil
		}
		return fmt.Errorf("reading snapshot: %w", err)
	}

	if err := s.IsChainValid(cd.Chain); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	s.chain = database.CopyChain(cd.Chain)
	s.evHandler("state: loadSnapshot: loaded blocks[%d]", len(s.chain))

	return nil
}
