package plan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errInvalidHostSpec = errors.New("invalid HostSpec")

// HostSpec is one allocated node and the number of worker slots it runs.
type HostSpec struct {
	Hostname   string
	Slots      int
	PublicAddr string
}

func DefaultHostSpec() HostSpec {
	return HostSpec{
		Hostname:   `127.0.0.1`,
		Slots:      1,
		PublicAddr: `127.0.0.1`,
	}
}

func (h HostSpec) String() string {
	return fmt.Sprintf("%s:%d:%s", h.Hostname, h.Slots, h.PublicAddr)
}

func parseHostSpec(spec string) (*HostSpec, error) {
	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 1:
		if len(parts[0]) == 0 {
			return nil, errInvalidHostSpec
		}
		return &HostSpec{Hostname: parts[0], Slots: 1, PublicAddr: parts[0]}, nil
	case 2:
		slots, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, errInvalidHostSpec
		}
		return &HostSpec{Hostname: parts[0], Slots: slots, PublicAddr: parts[0]}, nil
	case 3:
		slots, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, errInvalidHostSpec
		}
		return &HostSpec{Hostname: parts[0], Slots: slots, PublicAddr: parts[2]}, nil
	}
	return nil, errInvalidHostSpec
}

type HostList []HostSpec

func (hl HostList) String() string {
	var ss []string
	for _, h := range hl {
		ss = append(ss, h.String())
	}
	return strings.Join(ss, ",")
}

// ParseHostList parses a comma separated list of host specs,
// e.g. gpu-01:8,gpu-02:8 or gpu-01:8:10.0.0.1.
func ParseHostList(hostlist string) (HostList, error) {
	var hostSpecs HostList
	for _, h := range strings.Split(hostlist, ",") {
		spec, err := parseHostSpec(h)
		if err != nil {
			return nil, err
		}
		hostSpecs = append(hostSpecs, *spec)
	}
	return hostSpecs, nil
}

// FromHostnames builds a HostList giving each hostname the same number
// of slots.
func FromHostnames(hostnames []string, slots int) HostList {
	var hl HostList
	for _, h := range hostnames {
		hl = append(hl, HostSpec{Hostname: h, Slots: slots, PublicAddr: h})
	}
	return hl
}

func (hl HostList) Hostnames() []string {
	var names []string
	for _, h := range hl {
		names = append(names, h.Hostname)
	}
	return names
}

func (hl HostList) SlotOf(hostname string) int {
	for _, h := range hl {
		if h.Hostname == hostname {
			return h.Slots
		}
	}
	return 0
}

func (hl HostList) Cap() int {
	var cap int
	for _, h := range hl {
		cap += h.Slots
	}
	return cap
}

func (hl HostList) genPeerList(np int, pr PortRange) PeerList {
	var pl PeerList
	for _, host := range hl {
		for j := 0; j < host.Slots; j++ {
			id := PeerID{
				Hostname: host.Hostname,
				Port:     pr.Begin + uint16(j),
			}
			pl = append(pl, id)
			if len(pl) >= np {
				return pl
			}
		}
	}
	return pl
}

var errNoEnoughCapacity = errors.New("no enough capacity")

// GenPeerList assigns np workers to the hosts in order, filling each
// host's slots before moving to the next.
func (hl HostList) GenPeerList(np int, pr PortRange) (PeerList, error) {
	if hl.Cap() < np {
		return nil, errNoEnoughCapacity
	}
	return hl.genPeerList(np, pr), nil
}
