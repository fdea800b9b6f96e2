// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"net/http"

	"github.com/ardanlabs/puffin/business/web/errs"
	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/state"
	"github.com/ardanlabs/puffin/foundation/web"
	"go.uber.org/zap"
)

// Identity is the text a node answers with to identify itself.
const Identity = "PuffinCoin Node"

// Handlers manages the set of peer protocol endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Identify returns the node identification string.
func (h Handlers) Identify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.RespondText(ctx, w, Identity, http.StatusOK)
}

// Version returns the protocol version this node speaks.
func (h Handlers) Version(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.RespondText(ctx, w, h.State.RetrieveVersion(), http.StatusOK)
}

// Chain returns the full local chain.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cd := database.NewChainData(h.State.RetrieveChain())
	return web.Respond(ctx, w, cd, http.StatusOK)
}

// Peers returns the addresses of the known peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveKnownHosts(), http.StatusOK)
}

// Transactions returns the set of pending transactions.
func (h Handlers) Transactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	trans := h.State.RetrieveMempool()
	if trans == nil {
		trans = []database.Tx{}
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Register adds the address in the body to the set of known peers.
func (h Handlers) Register(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	host, err := web.DecodeText(r)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if host == "" {
		return errs.NewTrustedf(http.StatusBadRequest, "address is required")
	}

	if !h.State.AddKnownPeer(host) {
		return web.RespondText(ctx, w, "already registered", http.StatusOK)
	}

	h.Log.Infow("register", "traceid", web.GetTraceID(ctx), "peer", host)

	return web.RespondText(ctx, w, "registered", http.StatusOK)
}
