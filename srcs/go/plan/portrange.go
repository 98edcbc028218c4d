package plan

import (
	"errors"
	"fmt"
)

type PortRange struct {
	Begin uint16
	End   uint16
}

var DefaultPortRange = PortRange{
	Begin: 12802,
	End:   12900,
}

var errInvalidPortRange = errors.New("invalid port range")

func ParsePortRange(val string) (*PortRange, error) {
	var begin, end uint16
	if _, err := fmt.Sscanf(val, "%d-%d", &begin, &end); err != nil {
		return nil, err
	}
	if end < begin {
		return nil, errInvalidPortRange
	}
	return &PortRange{Begin: begin, End: end}, nil
}

func (pr PortRange) Cap() int {
	return int(pr.End - pr.Begin + 1)
}

func (pr PortRange) String() string {
	return fmt.Sprintf("%d-%d", pr.Begin, pr.End)
}

// Set implements flag.Value
func (pr *PortRange) Set(val string) error {
	r, err := ParsePortRange(val)
	if err != nil {
		return err
	}
	*pr = *r
	return nil
}

func (pr PortRange) Get(i int) (uint16, error) {
	if i >= pr.Cap() {
		return 0, errInvalidPortRange
	}
	return pr.Begin + uint16(i), nil
}
