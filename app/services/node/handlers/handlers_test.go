package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/puffin/app/services/node/handlers"
	"github.com/ardanlabs/puffin/business/web/errs"
	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/genesis"
	"github.com/ardanlabs/puffin/foundation/blockchain/state"
	"github.com/ardanlabs/puffin/foundation/blockchain/wallet"
	"github.com/ardanlabs/puffin/foundation/events"
	"github.com/ardanlabs/puffin/foundation/nameservice"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newConfig(t *testing.T) handlers.MuxConfig {
	t.Helper()

	g := genesis.Genesis{
		Date:         time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
		Version:      "0.5.0",
		Difficulty:   1,
		MiningReward: 100,
		BlockSize:    10,
	}

	st, err := state.New(state.Config{
		Host:    "localhost:9080",
		Genesis: g,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	ns, err := nameservice.New(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	w, err := wallet.Generate()
	if err != nil {
		t.Fatalf("Should be able to generate a wallet: %s", err)
	}

	return handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
		Wallet:   w,
	}
}

func do(t *testing.T, srv *httptest.Server, method string, path string, body string) (int, string) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("Should be able to construct the request: %s", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Should be able to call %s: %s", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Should be able to read the response: %s", err)
	}

	return resp.StatusCode, string(data)
}

// =============================================================================

func Test_PeerProtocol(t *testing.T) {
	cfg := newConfig(t)

	srv := httptest.NewServer(handlers.PrivateMux(cfg))
	defer srv.Close()

	t.Log("Given the need to serve the peer protocol.")
	{
		status, body := do(t, srv, http.MethodGet, "/", "")
		if status != http.StatusOK || body != "PuffinCoin Node" {
			t.Fatalf("\t%s\tShould identify the node: %d %q", failed, status, body)
		}
		t.Logf("\t%s\tShould identify the node.", success)

		status, body = do(t, srv, http.MethodGet, "/version", "")
		if status != http.StatusOK || body != "0.5.0" {
			t.Fatalf("\t%s\tShould return the version as text: %d %q", failed, status, body)
		}
		t.Logf("\t%s\tShould return the version as text.", success)

		status, body = do(t, srv, http.MethodGet, "/chain", "")
		if status != http.StatusOK {
			t.Fatalf("\t%s\tShould return the chain: %d", failed, status)
		}

		chain, err := database.Decode([]byte(body))
		if err != nil || len(chain) != 1 {
			t.Fatalf("\t%s\tShould return the chain wrapped in an object: %v", failed, err)
		}

		if !strings.Contains(body, `"nonse"`) || !strings.Contains(body, `"transactions":[]`) {
			t.Fatalf("\t%s\tShould keep the wire field names: %s", failed, body)
		}
		t.Logf("\t%s\tShould return the chain wrapped in an object.", success)

		status, body = do(t, srv, http.MethodGet, "/transactions", "")
		if status != http.StatusOK || strings.TrimSpace(body) != "[]" {
			t.Fatalf("\t%s\tShould return an empty array for an empty pool: %d %q", failed, status, body)
		}
		t.Logf("\t%s\tShould return an empty array for an empty pool.", success)
	}

	t.Log("Given the need to register peers.")
	{
		status, body := do(t, srv, http.MethodPost, "/register", "localhost:9180\n")
		if status != http.StatusOK || body != "registered" {
			t.Fatalf("\t%s\tShould acknowledge the registration: %d %q", failed, status, body)
		}
		t.Logf("\t%s\tShould acknowledge the registration.", success)

		status, body = do(t, srv, http.MethodPost, "/register", "localhost:9180")
		if status != http.StatusOK || body != "already registered" {
			t.Fatalf("\t%s\tShould acknowledge a repeated registration: %d %q", failed, status, body)
		}
		t.Logf("\t%s\tShould acknowledge a repeated registration.", success)

		status, _ = do(t, srv, http.MethodPost, "/register", "")
		if status != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject an empty address: %d", failed, status)
		}
		t.Logf("\t%s\tShould reject an empty address.", success)

		_, body = do(t, srv, http.MethodGet, "/peers", "")

		var hosts []string
		if err := json.Unmarshal([]byte(body), &hosts); err != nil {
			t.Fatalf("\t%s\tShould return the peers as a JSON array: %s", failed, err)
		}

		if len(hosts) != 1 || hosts[0] != "localhost:9180" {
			t.Fatalf("\t%s\tShould list the registered peer: %v", failed, hosts)
		}
		t.Logf("\t%s\tShould list the registered peer.", success)
	}
}

func Test_OperatorErrors(t *testing.T) {
	cfg := newConfig(t)

	srv := httptest.NewServer(handlers.PublicMux(cfg))
	defer srv.Close()

	receiver, err := wallet.Generate()
	if err != nil {
		t.Fatalf("Should be able to generate a wallet: %s", err)
	}

	tt := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		check  func(er errs.Response) bool
	}{
		{
			name:   "fields",
			method: http.MethodPost,
			path:   "/v1/tx/send",
			body:   `{"reciever":"bob","amount":0}`,
			status: http.StatusBadRequest,
			check: func(er errs.Response) bool {
				return er.Fields["reciever"] != "" && er.Fields["amount"] != ""
			},
		},
		{
			name:   "funds",
			method: http.MethodPost,
			path:   "/v1/tx/send",
			body:   `{"reciever":"` + string(receiver.Account()) + `","amount":10}`,
			status: http.StatusBadRequest,
			check: func(er errs.Response) bool {
				return er.Reason == state.ReasonInsufficientFunds
			},
		},
		{
			name:   "badwallet",
			method: http.MethodGet,
			path:   "/v1/balance/bob",
			status: http.StatusBadRequest,
			check:  func(er errs.Response) bool { return er.Error != "" },
		},
		{
			name:   "noworker",
			method: http.MethodPost,
			path:   "/v1/mining/start",
			status: http.StatusServiceUnavailable,
			check:  func(er errs.Response) bool { return er.Error == "worker is not running" },
		},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			status, body := do(t, srv, tst.method, tst.path, tst.body)
			if status != tst.status {
				t.Fatalf("Should get status %d, got %d: %s", tst.status, status, body)
			}

			var er errs.Response
			if err := json.Unmarshal([]byte(body), &er); err != nil {
				t.Fatalf("Should get back an error document: %s", err)
			}

			if !tst.check(er) {
				t.Fatalf("Should get back the expected error: %s", body)
			}
		})
	}
}

func Test_OperatorWallet(t *testing.T) {
	cfg := newConfig(t)

	srv := httptest.NewServer(handlers.PublicMux(cfg))
	defer srv.Close()

	status, body := do(t, srv, http.MethodGet, "/v1/wallet", "")
	if status != http.StatusOK {
		t.Fatalf("Should get the node wallet: %d %s", status, body)
	}

	var acct struct {
		Account string `json:"account"`
		Balance int64  `json:"balance"`
	}
	if err := json.Unmarshal([]byte(body), &acct); err != nil {
		t.Fatalf("Should decode the wallet: %s", err)
	}

	if acct.Account != string(cfg.Wallet.Account()) || acct.Balance != 0 {
		t.Fatalf("Should get the node account with no funds: %+v", acct)
	}

	status, body = do(t, srv, http.MethodGet, "/v1/history/"+acct.Account, "")
	if status != http.StatusOK || strings.TrimSpace(body) != "[]" {
		t.Fatalf("Should get an empty history: %d %s", status, body)
	}
}
