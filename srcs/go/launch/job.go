package launch

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shardrun/shardrun/srcs/go/config"
	"github.com/shardrun/shardrun/srcs/go/proc"
)

// Job describes one training run: the program to start, where to start
// it, and the derived launch parameters shared by all its workers.
type Job struct {
	StartTime    time.Time
	Env          Env
	Prog         string
	Args         []string
	WorkDir      string
	PythonPath   []string
	LogDir       string
	GPUPerHost   int
	ConfigServer string
}

// baseEnvs is the environment common to every worker.
func (j Job) baseEnvs() proc.Envs {
	envs := proc.Merge(getConfigEnvs(), j.Env.Envs())
	envs[pythonFaultHandlerEnvKey] = `1`
	envs[cudaLaunchBlockingEnvKey] = `0`
	if !j.StartTime.IsZero() {
		envs[jobStartTimestampEnvKey] = strconv.FormatInt(j.StartTime.Unix(), 10)
	}
	if pp := j.pythonPath(); len(pp) > 0 {
		envs[pythonPathEnvKey] = pp
	}
	if len(j.ConfigServer) > 0 {
		envs[config.ConfigServerEnvKey] = j.ConfigServer
	}
	envs.AddIfMissing(pythonUnbufferedEnvKey, `1`)
	return envs
}

// pythonPath appends the job's source dirs to the inherited PYTHONPATH.
func (j Job) pythonPath() string {
	var dirs []string
	if base, ok := lookupEnv(pythonPathEnvKey); ok && len(base) > 0 {
		dirs = append(dirs, base)
	}
	dirs = append(dirs, j.PythonPath...)
	return strings.Join(dirs, ":")
}

func (j Job) chDir() *string {
	if len(j.WorkDir) > 0 {
		return &j.WorkDir
	}
	return nil
}

// SrunProc wraps the program in a single srun invocation. srun fans the
// program out to every task of the allocation and multiplexes its
// output, so one local process is all the launcher runs.
func (j Job) SrunProc(srunArgs []string) proc.Proc {
	args := append([]string{}, srunArgs...)
	args = append(args, j.Prog)
	args = append(args, j.Args...)
	return proc.Proc{
		Name:   `srun`,
		Prog:   `srun`,
		Args:   args,
		Envs:   j.baseEnvs(),
		LogDir: j.LogDir,
		ChDir:  j.chDir(),
	}
}

func (j Job) WorldSize() int {
	return j.Env.CountNode * j.GPUPerHost
}

// NewProc builds the worker with the given ranks, pinned to one GPU.
func (j Job) NewProc(hostname string, rank, localRank int) proc.Proc {
	envs := j.baseEnvs()
	envs[WorldSizeEnvKey] = strconv.Itoa(j.WorldSize())
	envs[RankEnvKey] = strconv.Itoa(rank)
	envs[LocalRankEnvKey] = strconv.Itoa(localRank)
	envs[cudaVisibleDevicesKey] = strconv.Itoa(getCudaIndex(localRank))
	return proc.Proc{
		Name:     fmt.Sprintf("%s.%d", hostname, rank),
		Prog:     j.Prog,
		Args:     j.Args,
		Envs:     envs,
		Hostname: hostname,
		LogDir:   j.LogDir,
		ChDir:    j.chDir(),
	}
}

// CreateProcs builds the workers that live on one host.
func (j Job) CreateProcs(hostname string) ([]proc.Proc, error) {
	node := -1
	for i, h := range j.Env.Hostnames {
		if h == hostname {
			node = i
			break
		}
	}
	if node < 0 {
		return nil, errors.Errorf("%s is not in the node list", hostname)
	}
	var ps []proc.Proc
	for g := 0; g < j.GPUPerHost; g++ {
		ps = append(ps, j.NewProc(hostname, node*j.GPUPerHost+g, g))
	}
	return ps, nil
}

// CreateAllProcs builds the workers of every host, ranked in node list
// order.
func (j Job) CreateAllProcs() []proc.Proc {
	var ps []proc.Proc
	for i, h := range j.Env.Hostnames {
		for g := 0; g < j.GPUPerHost; g++ {
			ps = append(ps, j.NewProc(h, i*j.GPUPerHost+g, g))
		}
	}
	return ps
}

func (j Job) ProgAndArgs() []string {
	a := []string{j.Prog}
	a = append(a, j.Args...)
	return a
}

func getConfigEnvs() proc.Envs {
	envs := make(proc.Envs)
	for _, k := range config.ConfigEnvKeys {
		if val := os.Getenv(k); len(val) > 0 {
			envs[k] = val
		}
	}
	return envs
}

func (j Job) DebugString() string {
	return fmt.Sprintf("job{prog=%s, args=%q, %s}", j.Prog, j.Args, j.Env.DebugString())
}
