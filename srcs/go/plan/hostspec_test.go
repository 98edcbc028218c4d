package plan

import (
	"fmt"
	"testing"
)

func fakeHosts(n int) HostList {
	var hosts HostList
	for i := 0; i < n; i++ {
		name := fmt.Sprintf(`gpu-%02d`, i+1)
		hosts = append(hosts, HostSpec{
			Hostname:   name,
			Slots:      4,
			PublicAddr: name,
		})
	}
	return hosts
}

func Test_ParseHostList(t *testing.T) {
	hl, err := ParseHostList(`gpu-01:8,gpu-02:8`)
	if err != nil {
		t.Errorf("ParseHostList failed: %v", err)
	}
	if len(hl) != 2 {
		t.Errorf("want %d hosts, got %d", 2, len(hl))
	}
	if hl.Cap() != 16 {
		t.Errorf("want cap %d, got %d", 16, hl.Cap())
	}
	if s := hl.String(); s != `gpu-01:8:gpu-01,gpu-02:8:gpu-02` {
		t.Errorf("unexpected String: %q", s)
	}

	if _, err := ParseHostList(`gpu-01:x`); err == nil {
		t.Errorf("expected error")
	}
	if _, err := ParseHostList(``); err == nil {
		t.Errorf("expected error")
	}
}

func Test_ParseHostList_defaults(t *testing.T) {
	hl, err := ParseHostList(`gpu-01`)
	if err != nil {
		t.Errorf("ParseHostList failed: %v", err)
	}
	if hl[0].Slots != 1 {
		t.Errorf("want %d slot, got %d", 1, hl[0].Slots)
	}
	if hl[0].PublicAddr != `gpu-01` {
		t.Errorf("unexpected PublicAddr: %q", hl[0].PublicAddr)
	}
}

func Test_GenPeerList(t *testing.T) {
	hosts := fakeHosts(2)
	pr := PortRange{Begin: 12802, End: 12900}
	pl, err := hosts.GenPeerList(8, pr)
	if err != nil {
		t.Errorf("GenPeerList failed: %v", err)
	}
	if len(pl) != 8 {
		t.Errorf("want %d peers, got %d", 8, len(pl))
	}
	if pl[0].Hostname != `gpu-01` || pl[0].Port != 12802 {
		t.Errorf("unexpected first peer: %s", pl[0])
	}
	if pl[4].Hostname != `gpu-02` || pl[4].Port != 12802 {
		t.Errorf("unexpected fifth peer: %s", pl[4])
	}

	if _, err := hosts.GenPeerList(9, pr); err == nil {
		t.Errorf("expected error")
	}
}

func Test_GenPeerList_deterministic(t *testing.T) {
	hosts := fakeHosts(4)
	pr := DefaultPortRange
	p1, err := hosts.GenPeerList(10, pr)
	if err != nil {
		t.Errorf("GenPeerList failed: %v", err)
	}
	p2, err := hosts.GenPeerList(10, pr)
	if err != nil {
		t.Errorf("GenPeerList failed: %v", err)
	}
	if !p1.Eq(p2) {
		t.Errorf("GenPeerList is not deterministic")
	}
}

func Test_FromHostnames(t *testing.T) {
	hl := FromHostnames([]string{`gpu-01`, `gpu-02`}, 8)
	if hl.Cap() != 16 {
		t.Errorf("want cap %d, got %d", 16, hl.Cap())
	}
	if hl.SlotOf(`gpu-02`) != 8 {
		t.Errorf("want %d slots, got %d", 8, hl.SlotOf(`gpu-02`))
	}
	if hl.SlotOf(`gpu-03`) != 0 {
		t.Errorf("want %d slots, got %d", 0, hl.SlotOf(`gpu-03`))
	}
}

func Test_ParsePortRange(t *testing.T) {
	pr, err := ParsePortRange(`10000-11000`)
	if err != nil {
		t.Errorf("ParsePortRange failed: %v", err)
	}
	if pr.Begin != 10000 || pr.End != 11000 {
		t.Errorf("unexpected range: %s", pr)
	}
	if _, err := ParsePortRange(`11000-10000`); err == nil {
		t.Errorf("expected error")
	}
}
