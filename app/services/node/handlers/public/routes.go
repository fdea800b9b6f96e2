package public

import (
	"net/http"

	"github.com/ardanlabs/puffin/foundation/blockchain/state"
	"github.com/ardanlabs/puffin/foundation/blockchain/wallet"
	"github.com/ardanlabs/puffin/foundation/events"
	"github.com/ardanlabs/puffin/foundation/nameservice"
	"github.com/ardanlabs/puffin/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	State  *state.State
	NS     *nameservice.NameService
	Evts   *events.Events
	Wallet wallet.Wallet
}

// Routes binds all the public routes.
func Routes(app *web.App, cfg Config) {
	pbl := Handlers{
		Log:    cfg.Log,
		State:  cfg.State,
		NS:     cfg.NS,
		WS:     websocket.Upgrader{},
		Evts:   cfg.Evts,
		Wallet: cfg.Wallet,
	}

	const version = "v1"

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/node/status", pbl.Status)
	app.Handle(http.MethodGet, version, "/wallet", pbl.NodeWallet)
	app.Handle(http.MethodGet, version, "/balance/:wallet", pbl.Balance)
	app.Handle(http.MethodGet, version, "/balances", pbl.Balances)
	app.Handle(http.MethodGet, version, "/history/:wallet", pbl.History)
	app.Handle(http.MethodGet, version, "/chain", pbl.Chain)
	app.Handle(http.MethodGet, version, "/mempool", pbl.Mempool)
	app.Handle(http.MethodPost, version, "/tx/send", pbl.SendTransaction)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
	app.Handle(http.MethodPost, version, "/mining/start", pbl.StartMining)
	app.Handle(http.MethodPost, version, "/mining/stop", pbl.StopMining)
}
