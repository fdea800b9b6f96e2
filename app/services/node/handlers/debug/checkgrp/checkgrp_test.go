package checkgrp_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ardanlabs/puffin/app/services/node/handlers/debug/checkgrp"
	"github.com/ardanlabs/puffin/foundation/blockchain/genesis"
	"github.com/ardanlabs/puffin/foundation/blockchain/state"
	"go.uber.org/zap"
)

func Test_ReadinessDegraded(t *testing.T) {
	st, err := state.New(state.Config{
		Host:    "localhost:9080",
		Genesis: genesis.Default(),
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	cgh := checkgrp.Handlers{
		Build: "test",
		Log:   zap.NewNop().Sugar(),
		State: st,
	}

	w := httptest.NewRecorder()
	cgh.Readiness(w, httptest.NewRequest(http.MethodGet, "/debug/readiness", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Should report a node without peers as ready: %d", w.Code)
	}

	var data struct {
		Status   string `json:"status"`
		Degraded bool   `json:"degraded"`
		Peers    int    `json:"peers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &data); err != nil {
		t.Fatalf("Should be able to decode the response: %s", err)
	}

	if data.Status != "ok" || !data.Degraded || data.Peers != 0 {
		t.Fatalf("Should flag the node as degraded: %+v", data)
	}
}
