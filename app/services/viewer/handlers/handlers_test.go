package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/puffin/app/services/viewer/handlers"
	"go.uber.org/zap"
)

func Test_IndexPage(t *testing.T) {
	tt := []struct {
		name    string
		nodeURL string
		events  string
	}{
		{"http", "http://localhost:8080", `ws:\/\/localhost:8080\/v1\/events`},
		{"https", "https://node.example.com/", `wss:\/\/node.example.com\/v1\/events`},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			app, err := handlers.UIMux(make(chan os.Signal, 1), zap.NewNop().Sugar(), tst.nodeURL)
			if err != nil {
				t.Fatalf("Should be able to construct the mux: %s", err)
			}

			srv := httptest.NewServer(app)
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/")
			if err != nil {
				t.Fatalf("Should be able to get the index page: %s", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Should get a 200, got %d.", resp.StatusCode)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("Should be able to read the page: %s", err)
			}

			if !strings.Contains(string(body), tst.events) {
				t.Fatalf("Should point the page at %s.", tst.events)
			}
		})
	}
}
