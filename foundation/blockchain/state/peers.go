package state

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/puffin/foundation/blockchain/peer"
)

// AddPeers attempts to admit each candidate host. A candidate must speak the
// same protocol version as this node. Admitted peers are asked to register
// this node in return. It returns true when at least one candidate was newly
// admitted.
//
// When no peers are known yet, a version mismatch means this node can't
// join the network at all and ErrVersionBehind or ErrVersionAhead is
// returned. Once peers are known a mismatch only skips the candidate.
func (s *State) AddPeers(hosts []string) (bool, error) {
	var added bool

	for _, host := range hosts {
		host = strings.TrimSpace(host)
		pr := peer.New(host)

		if host == "" || pr.Match(s.host) || s.knownPeers.Contains(pr) {
			continue
		}

		version, err := s.NetRequestVersion(pr)
		if err != nil {
			s.evHandler("state: AddPeers: peer[%s]: unreachable: %s", pr, err)
			continue
		}

		cmp, err := peer.CompareVersions(s.genesis.Version, version)
		if err != nil {
			s.evHandler("state: AddPeers: peer[%s]: ERROR: %s", pr, err)
			continue
		}

		if cmp != 0 {
			if s.knownPeers.Len() == 0 {
				if cmp < 0 {
					return added, fmt.Errorf("%w: local[%s] peer[%s] version[%s]", ErrVersionBehind, s.genesis.Version, pr, version)
				}
				return added, fmt.Errorf("%w: local[%s] peer[%s] version[%s]", ErrVersionAhead, s.genesis.Version, pr, version)
			}

			s.evHandler("state: AddPeers: peer[%s]: version mismatch: local[%s] peer[%s]: skipped", pr, s.genesis.Version, version)
			continue
		}

		if !s.knownPeers.Add(pr) {
			continue
		}
		added = true

		s.evHandler("viewer: state: AddPeers: peer[%s]: added", pr)

		// The registration call is made without holding any lock.
		if err := s.NetRegister(pr); err != nil {
			s.evHandler("state: AddPeers: peer[%s]: register: WARNING: %s", pr, err)
		}
	}

	return added, nil
}

// AddKnownPeer adds a peer that registered itself with this node. It
// returns false if the peer is this node or is already known.
func (s *State) AddKnownPeer(host string) bool {
	host = strings.TrimSpace(host)
	pr := peer.New(host)

	if host == "" || pr.Match(s.host) {
		return false
	}

	if !s.knownPeers.Add(pr) {
		return false
	}

	s.evHandler("viewer: state: AddKnownPeer: peer[%s]: registered", pr)

	return true
}

// RemovePeers removes the hosts from the known peers. Unknown hosts are
// ignored.
func (s *State) RemovePeers(hosts ...string) {
	for _, host := range hosts {
		s.knownPeers.Remove(peer.New(host))
	}
}
