package launch

import (
	"testing"
)

func Test_Derive(t *testing.T) {
	hosts := []string{`gpu-st-p4d-24xlarge-2`, `gpu-st-p4d-24xlarge-1`, `gpu-st-p4d-24xlarge-3`}
	e, err := Derive(hosts, 12802)
	if err != nil {
		t.Fatal(err)
	}
	if e.CountNode != 3 {
		t.Errorf("want %d, got %d", 3, e.CountNode)
	}
	if e.MasterAddr != `gpu-st-p4d-24xlarge-2` {
		t.Errorf("master must be the first hostname as reported, got %s", e.MasterAddr)
	}
	envs := e.Envs()
	if envs[HostnamesEnvKey] != `gpu-st-p4d-24xlarge-2 gpu-st-p4d-24xlarge-1 gpu-st-p4d-24xlarge-3` {
		t.Errorf("unexpected %s: %q", HostnamesEnvKey, envs[HostnamesEnvKey])
	}
	if envs[MasterAddrEnvKey] != `gpu-st-p4d-24xlarge-2` {
		t.Errorf("unexpected %s: %q", MasterAddrEnvKey, envs[MasterAddrEnvKey])
	}
	if envs[MasterPortEnvKey] != `12802` {
		t.Errorf("unexpected %s: %q", MasterPortEnvKey, envs[MasterPortEnvKey])
	}
	if envs[CountNodeEnvKey] != `3` {
		t.Errorf("unexpected %s: %q", CountNodeEnvKey, envs[CountNodeEnvKey])
	}
}

func Test_Derive_idempotent(t *testing.T) {
	hosts := []string{`gpu-01`, `gpu-02`}
	a, err := Derive(hosts, 12802)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Derive(hosts, 12802)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Eq(*b) {
		t.Errorf("derivation must be idempotent: %s vs %s", a.DebugString(), b.DebugString())
	}
}

func Test_Derive_singleNode(t *testing.T) {
	e, err := Derive([]string{`gpu-07`}, 12802)
	if err != nil {
		t.Fatal(err)
	}
	if e.MasterAddr != `gpu-07` {
		t.Errorf("want %s, got %s", `gpu-07`, e.MasterAddr)
	}
	if e.CountNode != 1 {
		t.Errorf("want %d, got %d", 1, e.CountNode)
	}
}

func Test_Derive_emptyList(t *testing.T) {
	if _, err := Derive(nil, 12802); err == nil {
		t.Errorf("expected an error for an empty node list")
	}
}

func Test_Derive_copiesHosts(t *testing.T) {
	hosts := []string{`gpu-01`, `gpu-02`}
	e, err := Derive(hosts, 12802)
	if err != nil {
		t.Fatal(err)
	}
	hosts[0] = `mutated`
	if e.MasterAddr != `gpu-01` || e.Hostnames[0] != `gpu-01` {
		t.Errorf("derived parameters must not alias the input list")
	}
}
