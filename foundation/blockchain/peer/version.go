package peer

import (
	"fmt"
	"strings"
)

// Version represents the three components of a protocol version string such
// as "0.5.0". Components are kept as strings since peers compare them that
// way on the wire.
type Version [3]string

// ParseVersion splits the version string into its three components.
func ParseVersion(v string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("version %q: expecting three components", v)
	}

	var ver Version
	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("version %q: empty component %d", v, i)
		}
		ver[i] = part
	}

	return ver, nil
}

// String implements the fmt.Stringer interface.
func (v Version) String() string {
	return strings.Join(v[:], ".")
}

// Compare returns -1 if v is behind o, 1 if v is ahead of o and 0 when they
// are the same. Components are compared as strings, so "10" sorts before "9".
func (v Version) Compare(o Version) int {
	for i := range v {
		if c := strings.Compare(v[i], o[i]); c != 0 {
			return c
		}
	}

	return 0
}

// CompareVersions parses both version strings and compares them.
func CompareVersions(local string, remote string) (int, error) {
	l, err := ParseVersion(local)
	if err != nil {
		return 0, fmt.Errorf("local: %w", err)
	}

	r, err := ParseVersion(remote)
	if err != nil {
		return 0, fmt.Errorf("remote: %w", err)
	}

	return l.Compare(r), nil
}
