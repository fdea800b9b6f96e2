package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ardanlabs/puffin/foundation/blockchain/database"
	"github.com/ardanlabs/puffin/foundation/blockchain/peer"
)

// maxResponse limits how much of a peer response is read.
const maxResponse = 64 << 20

// NetRequestIdentity asks the peer for its identification string.
func (s *State) NetRequestIdentity(pr peer.Peer) (string, error) {
	var identity string
	if err := s.send(http.MethodGet, peerURL(pr, "/"), nil, &identity); err != nil {
		return "", err
	}

	return identity, nil
}

// NetRequestVersion asks the peer for the protocol version it speaks.
func (s *State) NetRequestVersion(pr peer.Peer) (string, error) {
	var version string
	if err := s.send(http.MethodGet, peerURL(pr, "/version"), nil, &version); err != nil {
		return "", err
	}

	return version, nil
}

// NetRequestPeers asks the peer for the list of peers it knows.
func (s *State) NetRequestPeers(pr peer.Peer) ([]string, error) {
	var hosts []string
	if err := s.send(http.MethodGet, peerURL(pr, "/peers"), nil, &hosts); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeers: peer[%s]: peers[%d]", pr, len(hosts))

	return hosts, nil
}

// NetRequestChain asks the peer for its full chain.
func (s *State) NetRequestChain(pr peer.Peer) ([]database.Block, error) {
	var cd database.ChainData
	if err := s.send(http.MethodGet, peerURL(pr, "/chain"), nil, &cd); err != nil {
		return nil, err
	}

	if len(cd.Chain) == 0 {
		return nil, database.ErrEmptyChain
	}

	s.evHandler("state: NetRequestChain: peer[%s]: blocks[%d]", pr, len(cd.Chain))

	return cd.Chain, nil
}

// NetRequestMempool asks the peer for the transactions in its mempool.
func (s *State) NetRequestMempool(pr peer.Peer) ([]database.Tx, error) {
	var trans []database.Tx
	if err := s.send(http.MethodGet, peerURL(pr, "/transactions"), nil, &trans); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestMempool: peer[%s]: txs[%d]", pr, len(trans))

	return trans, nil
}

// NetRegister announces this node's address to the peer.
func (s *State) NetRegister(pr peer.Peer) error {
	var ack string
	if err := s.send(http.MethodPost, peerURL(pr, "/register"), s.host, &ack); err != nil {
		return err
	}

	s.evHandler("state: NetRegister: peer[%s]: %s", pr, ack)

	return nil
}

// =============================================================================

// peerURL builds the url for the peer protocol path. Hosts are normally
// host:port values, a scheme is added when missing.
func peerURL(pr peer.Peer, path string) string {
	host := strings.TrimSuffix(pr.Host, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}

	return host + path
}

// send is a helper function to send an HTTP request to a node. A string is
// sent and received as plain text, anything else as json.
func (s *State) send(method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	switch v := dataSend.(type) {
	case nil:
	case string:
		body = strings.NewReader(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	r := io.LimitReader(resp.Body, maxResponse)

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		return fmt.Errorf("status[%d]: %w", resp.StatusCode, errors.New(strings.TrimSpace(string(msg))))
	}

	switch v := dataRecv.(type) {
	case nil:
	case *string:
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		*v = strings.TrimSpace(string(data))
	default:
		if err := json.NewDecoder(r).Decode(dataRecv); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
