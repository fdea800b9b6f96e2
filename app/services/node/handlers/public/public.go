// Package public maintains the group of handlers for the node operator.
package public

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/puffin/business/web/errs"
	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/state"
	"github.com/ardanlabs/puffin/foundation/blockchain/wallet"
	"github.com/ardanlabs/puffin/foundation/events"
	"github.com/ardanlabs/puffin/foundation/nameservice"
	"github.com/ardanlabs/puffin/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of operator endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	State  *state.State
	NS     *nameservice.NameService
	WS     websocket.Upgrader
	Evts   *events.Events
	Wallet wallet.Wallet
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the ledger.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting for events from the ledger or ticker.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Status returns a summary of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.RetrieveLatestBlock()

	st := status{
		Host:        h.State.RetrieveHost(),
		Version:     h.State.RetrieveVersion(),
		Account:     string(h.Wallet.Account()),
		ChainLength: h.State.ChainLength(),
		LatestBlock: latest.Hash,
		Mempool:     len(h.State.RetrieveMempool()),
		Peers:       h.State.RetrieveKnownHosts(),
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// NodeWallet returns the account and balance of the node's own wallet.
func (h Handlers) NodeWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.toAccount(h.Wallet.Account()), http.StatusOK)
}

// Balance returns the balance of the specified wallet.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct, err := database.ToAccountID(web.Param(r, "wallet"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, h.toAccount(acct), http.StatusOK)
}

// Balances returns the balance of every account in the chain.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	bals := h.State.Balances()

	accts := make([]account, 0, len(bals))
	for acct, balance := range bals {
		accts = append(accts, account{
			Account: acct,
			Name:    h.NS.Lookup(acct),
			Balance: balance,
		})
	}

	return web.Respond(ctx, w, accts, http.StatusOK)
}

// History returns the mined transactions the wallet took part in.
func (h Handlers) History(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct, err := database.ToAccountID(web.Param(r, "wallet"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	trans := []tx{}
	for tran := range h.State.TransactionHistory(acct) {
		trans = append(trans, h.toTx(tran))
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Chain returns the full local chain.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cd := database.NewChainData(h.State.RetrieveChain())
	return web.Respond(ctx, w, cd, http.StatusOK)
}

// Mempool returns the set of pending transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	trans := make([]tx, len(mempool))
	for i, tran := range mempool {
		trans[i] = h.toTx(tran)
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// SendTransaction constructs a transaction from the node's wallet, signs it
// and adds it to the mempool.
func (h Handlers) SendTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var send sendTx
	if err := web.Decode(r, &send); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	privateKey, err := h.Wallet.ECDSA()
	if err != nil {
		return err
	}

	tran, err := h.State.SubmitTransaction(privateKey, h.Wallet.Account(), database.AccountID(send.Receiver), send.Amount)
	if err != nil {
		return err
	}

	h.Log.Infow("send tran", "traceid", web.GetTraceID(ctx), "hash", tran.Hash, "reciever", tran.Receiver, "amount", tran.Amount)

	return web.Respond(ctx, w, h.toTx(tran), http.StatusOK)
}

// SubmitTransaction adds a transaction signed by a wallet to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var submit submitTx
	if err := web.Decode(r, &submit); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tran := submit.toTx()
	if err := h.State.SubmitSignedTransaction(tran); err != nil {
		return err
	}

	h.Log.Infow("submit tran", "traceid", web.GetTraceID(ctx), "hash", tran.Hash, "sender", tran.Sender, "reciever", tran.Receiver, "amount", tran.Amount)

	return web.Respond(ctx, w, h.toTx(tran), http.StatusOK)
}

// StartMining signals the worker to mine the pending transactions with the
// node's wallet receiving the reward.
func (h Handlers) StartMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrustedf(http.StatusServiceUnavailable, "worker is not running")
	}

	h.State.Worker.SignalStartMining(h.Wallet.Account())

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// StopMining cancels the mining operation in progress.
func (h Handlers) StopMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrustedf(http.StatusServiceUnavailable, "worker is not running")
	}

	h.State.Worker.SignalCancelMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining cancel signaled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// =============================================================================

func (h Handlers) toAccount(acct database.AccountID) account {
	return account{
		Account: acct,
		Name:    h.NS.Lookup(acct),
		Balance: h.State.Balance(acct),
	}
}

func (h Handlers) toTx(tran database.Tx) tx {
	return tx{
		Sender:       tran.Sender,
		SenderName:   h.NS.Lookup(tran.Sender),
		Receiver:     tran.Receiver,
		ReceiverName: h.NS.Lookup(tran.Receiver),
		Amount:       tran.Amount,
		Time:         tran.Time,
		Hash:         tran.Hash,
		Signature:    tran.Signature,
	}
}
