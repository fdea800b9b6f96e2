package private

import (
	"net/http"

	"github.com/ardanlabs/puffin/foundation/blockchain/state"
	"github.com/ardanlabs/puffin/foundation/web"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Routes binds all the private routes. These routes make up the peer
// protocol and are unversioned since their shapes are fixed by the network.
func Routes(app *web.App, cfg Config) {
	prv := Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, "", "/", prv.Identify)
	app.Handle(http.MethodGet, "", "/version", prv.Version)
	app.Handle(http.MethodGet, "", "/chain", prv.Chain)
	app.Handle(http.MethodGet, "", "/peers", prv.Peers)
	app.Handle(http.MethodGet, "", "/transactions", prv.Transactions)
	app.Handle(http.MethodPost, "", "/register", prv.Register)
}
