// Package worker implements mining, peer synchronization, and chain
// snapshots for the blockchain.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/state"
)

// Config represents the intervals the background operations run at.
type Config struct {
	SyncInterval     time.Duration // Time between sync cycles with peers.
	SnapshotInterval time.Duration // Time between snapshots, 0 disables them.
}

// =============================================================================

// Worker manages the POW and sync workflows for the blockchain.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	syncMu       sync.Mutex
	tickers      []*time.Ticker
	shut         chan struct{}
	startMining  chan database.AccountID
	cancelMining chan struct{}
	evHandler    state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler, cfg Config) {
	w := Worker{
		state:        st,
		shut:         make(chan struct{}),
		startMining:  make(chan database.AccountID, 1),
		cancelMining: make(chan struct{}, 1),
		evHandler:    evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	syncTicker := time.NewTicker(cfg.SyncInterval)
	w.tickers = append(w.tickers, syncTicker)

	operations := []func(){
		func() { w.syncOperations(syncTicker) },
		w.miningOperations,
	}

	if cfg.SnapshotInterval > 0 {
		snapTicker := time.NewTicker(cfg.SnapshotInterval)
		w.tickers = append(w.tickers, snapTicker)
		operations = append(operations, func() { w.snapshotOperations(snapTicker) })
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop tickers")
	for _, t := range w.tickers {
		t.Stop()
	}

	w.evHandler("worker: shutdown: signal cancel mining")
	w.SignalCancelMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation that rewards the miner. If
// there is already a signal pending in the channel, just return since a
// mining operation will start.
func (w *Worker) SignalStartMining(miner database.AccountID) {
	select {
	case w.startMining <- miner:
		w.evHandler("worker: SignalStartMining: mining signaled: miner[%s]", miner.Short())
	default:
		w.evHandler("worker: SignalStartMining: mining already signaled")
	}
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- struct{}{}:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
