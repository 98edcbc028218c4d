package plan

import "testing"

func Test_Rank(t *testing.T) {
	pl := fakeHosts(2).genPeerList(8, DefaultPortRange)
	for i, p := range pl {
		rank, ok := pl.Rank(p)
		if !ok || rank != i {
			t.Errorf("want rank %d, got %d", i, rank)
		}
	}
	if _, ok := pl.Rank(PeerID{Hostname: `nowhere`, Port: 1}); ok {
		t.Errorf("unexpected rank for unknown peer")
	}
}

func Test_LocalRank(t *testing.T) {
	pl := fakeHosts(2).genPeerList(8, DefaultPortRange)
	for i, p := range pl {
		localRank, ok := pl.LocalRank(p)
		if !ok || localRank != i%4 {
			t.Errorf("want local rank %d, got %d", i%4, localRank)
		}
	}
}

func Test_On(t *testing.T) {
	pl := fakeHosts(2).genPeerList(8, DefaultPortRange)
	ql := pl.On(`gpu-02`)
	if len(ql) != 4 {
		t.Errorf("want %d peers, got %d", 4, len(ql))
	}
	for _, p := range ql {
		if p.Hostname != `gpu-02` {
			t.Errorf("unexpected peer: %s", p)
		}
	}
}

func Test_Hosts(t *testing.T) {
	pl := fakeHosts(3).genPeerList(12, DefaultPortRange)
	hosts := pl.Hosts()
	if len(hosts) != 3 {
		t.Errorf("want %d hosts, got %d", 3, len(hosts))
	}
	if hosts[0] != `gpu-01` || hosts[2] != `gpu-03` {
		t.Errorf("unexpected hosts: %v", hosts)
	}
}

func Test_ParsePeerList(t *testing.T) {
	pl, err := ParsePeerList(`gpu-01:12802,gpu-01:12803,gpu-02:12802`)
	if err != nil {
		t.Errorf("ParsePeerList failed: %v", err)
	}
	if len(pl) != 3 {
		t.Errorf("want %d peers, got %d", 3, len(pl))
	}
	s := pl.String()
	ql, err := ParsePeerList(s)
	if err != nil {
		t.Errorf("ParsePeerList failed: %v", err)
	}
	if !pl.Eq(ql) {
		t.Errorf("not equal after round trip: %s vs %s", pl, ql)
	}
}
