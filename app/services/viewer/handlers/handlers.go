// Package handlers contains the full set of handler functions and routes
// supported by the viewer.
package handlers

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/ardanlabs/puffin/business/web/mid"
	"github.com/ardanlabs/puffin/foundation/web"
	"go.uber.org/zap"
)

//go:embed assets
var assets embed.FS

// UIMux constructs an http.Handler with all application routes defined.
func UIMux(shutdown chan os.Signal, log *zap.SugaredLogger, nodeURL string) (*web.App, error) {
	app := web.NewApp(
		shutdown,
		mid.Logger(log),
		mid.Errors(log),
		mid.Panics(),
		mid.Cors("*"),
	)

	ig, err := newIndex(nodeURL)
	if err != nil {
		return nil, fmt.Errorf("loading index template: %w", err)
	}
	app.Handle(http.MethodGet, "", "/", ig.handler)

	return app, nil
}

// =============================================================================

type index struct {
	page []byte
}

// newIndex renders the index page once for the configured node.
func newIndex(nodeURL string) (*index, error) {
	tmpl, err := template.ParseFS(assets, "assets/index.html")
	if err != nil {
		return nil, err
	}

	eventsURL, err := toEventsURL(nodeURL)
	if err != nil {
		return nil, err
	}

	data := struct {
		NodeURL   string
		EventsURL string
	}{
		NodeURL:   nodeURL,
		EventsURL: eventsURL,
	}

	var b bytes.Buffer
	if err := tmpl.Execute(&b, data); err != nil {
		return nil, err
	}

	return &index{page: b.Bytes()}, nil
}

func (ig *index) handler(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := w.Write(ig.page)

	return err
}

// toEventsURL converts the node's operator url into the url of its
// websocket event stream.
func toEventsURL(nodeURL string) (string, error) {
	u, err := url.Parse(nodeURL)
	if err != nil {
		return "", fmt.Errorf("parsing node url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/v1/events"

	return u.String(), nil
}
