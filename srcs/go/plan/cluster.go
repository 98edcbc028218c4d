package plan

import (
	"errors"
	"fmt"
)

// Cluster is the set of allocated hosts and the workers assigned to them.
type Cluster struct {
	Hosts   HostList `json:"hosts"`
	Workers PeerList `json:"workers"`
}

var errInvalidCluster = errors.New("invalid cluster")

func (c Cluster) Eq(d Cluster) bool {
	return c.Hosts.String() == d.Hosts.String() && c.Workers.Eq(d.Workers)
}

func (c Cluster) Size() int {
	return len(c.Workers)
}

func (c Cluster) Validate() error {
	used := make(map[string]int)
	for _, w := range c.Workers {
		used[w.Hostname]++
	}
	for host, n := range used {
		slots := c.Hosts.SlotOf(host)
		if slots == 0 {
			return fmt.Errorf("%w: %s not in host list", errInvalidCluster, host)
		}
		if n > slots {
			return fmt.Errorf("%w: %s has %d slots, %d used", errInvalidCluster, host, slots, n)
		}
	}
	return nil
}

func (c Cluster) DebugString() string {
	return fmt.Sprintf("[%d/%d]{%s}{%s}", len(c.Workers), len(c.Hosts), c.Workers, c.Hosts)
}
