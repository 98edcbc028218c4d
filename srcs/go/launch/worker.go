package launch

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Worker is the view one training process has of its job, assembled
// from the environment the launcher exported.
type Worker struct {
	Hostnames  []string
	MasterAddr string
	MasterPort uint16
	CountNode  int

	WorldSize int
	Rank      int
	LocalRank int
}

// Rank variables srun sets on every task it spawns.
const (
	srunProcIDEnvKey  = `SLURM_PROCID`
	srunLocalIDEnvKey = `SLURM_LOCALID`
	srunNtasksEnvKey  = `SLURM_NTASKS`
)

// ParseWorkerEnv reads the worker view back from the environment. Ranks
// come from RANK, LOCAL_RANK and WORLD_SIZE when the launcher spawned
// the process itself, and from the srun task variables otherwise.
func ParseWorkerEnv() (*Worker, error) {
	w := &Worker{}
	val, ok := lookupEnv(MasterAddrEnvKey)
	if !ok {
		return nil, errors.Errorf("%s not set", MasterAddrEnvKey)
	}
	w.MasterAddr = val
	port, err := requireInt(MasterPortEnvKey)
	if err != nil {
		return nil, err
	}
	w.MasterPort = uint16(port)
	if val, ok := lookupEnv(HostnamesEnvKey); ok {
		w.Hostnames = strings.Fields(val)
	}
	if w.CountNode, err = requireInt(CountNodeEnvKey); err != nil {
		return nil, err
	}
	if w.Rank, err = eitherInt(RankEnvKey, srunProcIDEnvKey); err != nil {
		return nil, err
	}
	if w.LocalRank, err = eitherInt(LocalRankEnvKey, srunLocalIDEnvKey); err != nil {
		return nil, err
	}
	if w.WorldSize, err = eitherInt(WorldSizeEnvKey, srunNtasksEnvKey); err != nil {
		return nil, err
	}
	return w, nil
}

func requireInt(key string) (int, error) {
	val, ok := lookupEnv(key)
	if !ok {
		return 0, errors.Errorf("%s not set", key)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return n, nil
}

func eitherInt(key, fallback string) (int, error) {
	if _, ok := lookupEnv(key); ok {
		return requireInt(key)
	}
	return requireInt(fallback)
}
