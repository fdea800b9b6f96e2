package worker

import (
	"time"
)

// snapshotOperations writes the chain to storage on every tick.
func (w *Worker) snapshotOperations(ticker *time.Ticker) {
	w.evHandler("worker: snapshotOperations: G started")
	defer w.evHandler("worker: snapshotOperations: G completed")

	for {
		select {
		case <-ticker.C:
			if w.isShutdown() {
				continue
			}
			if err := w.state.Snapshot(); err != nil {
				w.evHandler("worker: snapshotOperations: ERROR: %s", err)
			}
		case <-w.shut:
			w.evHandler("worker: snapshotOperations: received shut signal")
			return
		}
	}
}
