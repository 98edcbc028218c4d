package plan

import (
	"errors"
	"net"
	"strconv"
	"strings"
)

// PeerID is the unique identifier of a worker process.
type PeerID struct {
	Hostname string
	Port     uint16
}

var errInvalidPeerID = errors.New("invalid PeerID")

func (p PeerID) String() string {
	return net.JoinHostPort(p.Hostname, strconv.Itoa(int(p.Port)))
}

func (p PeerID) ColocatedWith(q PeerID) bool {
	return p.Hostname == q.Hostname
}

func ParsePeerID(val string) (*PeerID, error) {
	host, pt, err := net.SplitHostPort(val)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(pt)
	if err != nil {
		return nil, err
	}
	if int(uint16(port)) != port {
		return nil, errInvalidPeerID
	}
	return &PeerID{Hostname: host, Port: uint16(port)}, nil
}

type PeerList []PeerID

func (pl PeerList) String() string {
	var parts []string
	for _, p := range pl {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ",")
}

func ParsePeerList(val string) (PeerList, error) {
	var pl PeerList
	for _, part := range strings.Split(val, ",") {
		id, err := ParsePeerID(part)
		if err != nil {
			return nil, err
		}
		pl = append(pl, *id)
	}
	return pl, nil
}

func (pl PeerList) Rank(ps PeerID) (int, bool) {
	for i, p := range pl {
		if p == ps {
			return i, true
		}
	}
	return -1, false
}

func (pl PeerList) LocalRank(ps PeerID) (int, bool) {
	var i int
	for _, p := range pl {
		if p == ps {
			return i, true
		}
		if ps.ColocatedWith(p) {
			i++
		}
	}
	return -1, false
}

func (pl PeerList) On(host string) PeerList {
	var ql PeerList
	for _, p := range pl {
		if p.Hostname == host {
			ql = append(ql, p)
		}
	}
	return ql
}

func (pl PeerList) Eq(ql PeerList) bool {
	if len(pl) != len(ql) {
		return false
	}
	for i, p := range pl {
		if p != ql[i] {
			return false
		}
	}
	return true
}

// Hosts returns the distinct hostnames in first-seen order.
func (pl PeerList) Hosts() []string {
	seen := make(map[string]struct{})
	var hosts []string
	for _, p := range pl {
		if _, ok := seen[p.Hostname]; !ok {
			seen[p.Hostname] = struct{}{}
			hosts = append(hosts, p.Hostname)
		}
	}
	return hosts
}
