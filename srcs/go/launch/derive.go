package launch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/shardrun/shardrun/srcs/go/proc"
)

// Env is the set of launch parameters every worker needs to find its
// peers. It is a pure function of the node list, so nothing scheduler
// specific survives in it.
type Env struct {
	Hostnames  []string `json:"hostnames"`
	MasterAddr string   `json:"master_addr"`
	MasterPort uint16   `json:"master_port"`
	CountNode  int      `json:"count_node"`
}

var errNoHosts = errors.New("no hosts")

// Derive computes launch parameters from a node list. The first
// hostname becomes the master address, in whatever order the scheduler
// reported the nodes.
func Derive(hostnames []string, masterPort uint16) (*Env, error) {
	if len(hostnames) == 0 {
		return nil, errNoHosts
	}
	hosts := make([]string, len(hostnames))
	copy(hosts, hostnames)
	return &Env{
		Hostnames:  hosts,
		MasterAddr: hosts[0],
		MasterPort: masterPort,
		CountNode:  len(hosts),
	}, nil
}

// Envs renders the parameters as process environment variables.
// HOSTNAMES is space joined for consumption by shell and Python alike.
func (e Env) Envs() proc.Envs {
	return proc.Envs{
		HostnamesEnvKey:  strings.Join(e.Hostnames, " "),
		MasterAddrEnvKey: e.MasterAddr,
		MasterPortEnvKey: strconv.Itoa(int(e.MasterPort)),
		CountNodeEnvKey:  strconv.Itoa(e.CountNode),
	}
}

func (e Env) Eq(f Env) bool {
	if e.MasterAddr != f.MasterAddr || e.MasterPort != f.MasterPort || e.CountNode != f.CountNode {
		return false
	}
	if len(e.Hostnames) != len(f.Hostnames) {
		return false
	}
	for i, h := range e.Hostnames {
		if f.Hostnames[i] != h {
			return false
		}
	}
	return true
}

func (e Env) DebugString() string {
	return fmt.Sprintf("launch{master=%s:%d, nodes=%d}", e.MasterAddr, e.MasterPort, e.CountNode)
}
