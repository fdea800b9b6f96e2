package worker

import (
	"time"
)

// syncOperations runs a sync cycle on every tick.
func (w *Worker) syncOperations(ticker *time.Ticker) {
	w.evHandler("worker: syncOperations: G started")
	defer w.evHandler("worker: syncOperations: G completed")

	for {
		select {
		case <-ticker.C:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.shut:
			w.evHandler("worker: syncOperations: received shut signal")
			return
		}
	}
}

// Sync runs one cycle of peer discovery, chain reconciliation, mempool
// gossip and mempool pruning. A failure talking to a peer skips that peer
// for the step, it never stops the cycle.
func (w *Worker) Sync() {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()

	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	w.syncPeers()
	w.syncChain()
	w.syncMempool()

	if pruned := w.state.PruneMempool(); pruned > 0 {
		w.evHandler("worker: sync: prune: removed txs[%d]", pruned)
	}
}

// =============================================================================

// syncPeers asks every known peer for its peers. New hosts go through the
// same admission rules as the configured peers.
func (w *Worker) syncPeers() {
	for _, pr := range w.state.RetrieveKnownPeers() {
		hosts, err := w.state.NetRequestPeers(pr)
		if err != nil {
			w.evHandler("worker: sync: peers: peer[%s]: ERROR: %s", pr, err)
			continue
		}

		added, err := w.state.AddPeers(hosts)
		if err != nil {
			w.evHandler("worker: sync: peers: peer[%s]: ERROR: %s", pr, err)
			continue
		}

		if added {
			w.evHandler("worker: sync: peers: peer[%s]: discovered new peers", pr)
		}
	}
}

// syncChain asks every known peer for its chain and adopts a longer valid
// chain.
func (w *Worker) syncChain() {
	for _, pr := range w.state.RetrieveKnownPeers() {
		chain, err := w.state.NetRequestChain(pr)
		if err != nil {
			w.evHandler("worker: sync: chain: peer[%s]: ERROR: %s", pr, err)
			continue
		}

		if len(chain) <= w.state.ChainLength() {
			continue
		}

		replaced, err := w.state.ReplaceChain(chain)
		if err != nil {
			w.evHandler("worker: sync: chain: peer[%s]: rejected: %s", pr, err)
			continue
		}

		if replaced {
			w.evHandler("viewer: worker: sync: chain: peer[%s]: adopted blocks[%d]", pr, len(chain))
		}
	}
}

// syncMempool asks every known peer for its pending transactions and adds
// the ones this node doesn't have.
func (w *Worker) syncMempool() {
	for _, pr := range w.state.RetrieveKnownPeers() {
		trans, err := w.state.NetRequestMempool(pr)
		if err != nil {
			w.evHandler("worker: sync: mempool: peer[%s]: ERROR: %s", pr, err)
			continue
		}

		if added := w.state.UpsertMempool(trans); added > 0 {
			w.evHandler("worker: sync: mempool: peer[%s]: added txs[%d]", pr, added)
		}
	}
}
