package slurm

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Output environment of the scheduler:
// https://slurm.schedmd.com/sbatch.html#SECTION_OUTPUT-ENVIRONMENT-VARIABLES
const (
	JobIDEnvKey         = `SLURM_JOB_ID`
	NodelistEnvKey      = `SLURM_JOB_NODELIST`
	NumNodesEnvKey      = `SLURM_JOB_NUM_NODES`
	TasksPerNodeEnvKey  = `SLURM_TASKS_PER_NODE`
	NtasksPerNodeEnvKey = `SLURM_NTASKS_PER_NODE`
	GPUsOnNodeEnvKey    = `SLURM_GPUS_ON_NODE`
	CPUsPerTaskEnvKey   = `SLURM_CPUS_PER_TASK`
	ProcIDEnvKey        = `SLURM_PROCID`
	LocalIDEnvKey       = `SLURM_LOCALID`
	NodeIDEnvKey        = `SLURM_NODEID`
	NodenameEnvKey      = `SLURMD_NODENAME`
)

// pre 17.11 names
const (
	legacyNodelistEnvKey = `SLURM_NODELIST`
	legacyNumNodesEnvKey = `SLURM_NNODES`
)

var lookupEnv = os.LookupEnv

// Allocation is the view of the surrounding SLURM job, as told by the
// scheduler through the environment.
type Allocation struct {
	JobID        string
	Nodelist     string
	NodeCount    int
	TasksPerNode []int
	GPUsPerNode  int
	CPUsPerTask  int
	ProcID       int
	LocalID      int
	NodeID       int
	Nodename     string
}

var errNotInSlurmJob = errors.New("not in a SLURM job")

// InJob reports whether the process runs inside a SLURM allocation.
func InJob() bool {
	_, ok := lookupEnv(JobIDEnvKey)
	return ok
}

func ParseEnv() (*Allocation, error) {
	jobID, ok := lookupEnv(JobIDEnvKey)
	if !ok {
		return nil, errNotInSlurmJob
	}
	a := &Allocation{
		JobID:       jobID,
		Nodelist:    getenvAny(NodelistEnvKey, legacyNodelistEnvKey),
		NodeCount:   optionalInt(NumNodesEnvKey, optionalInt(legacyNumNodesEnvKey, 0)),
		GPUsPerNode: optionalInt(GPUsOnNodeEnvKey, optionalInt(NtasksPerNodeEnvKey, 0)),
		CPUsPerTask: optionalInt(CPUsPerTaskEnvKey, 0),
		ProcID:      optionalInt(ProcIDEnvKey, -1),
		LocalID:     optionalInt(LocalIDEnvKey, -1),
		NodeID:      optionalInt(NodeIDEnvKey, -1),
		Nodename:    getenvAny(NodenameEnvKey),
	}
	if val, ok := lookupEnv(TasksPerNodeEnvKey); ok {
		tasks, err := parseTasksPerNode(val)
		if err != nil {
			return nil, err
		}
		a.TasksPerNode = tasks
	}
	return a, nil
}

// CheckNodeCount verifies the expanded node list against the node count
// the scheduler reported.
func (a Allocation) CheckNodeCount(hostnames []string) error {
	if a.NodeCount > 0 && a.NodeCount != len(hostnames) {
		return fmt.Errorf("%s=%d but %s expands to %d hosts", NumNodesEnvKey, a.NodeCount, a.Nodelist, len(hostnames))
	}
	return nil
}

func getenvAny(keys ...string) string {
	for _, k := range keys {
		if val, ok := lookupEnv(k); ok {
			return val
		}
	}
	return ``
}

func optionalInt(key string, def int) int {
	val, ok := lookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}

var nodeTasksRe = regexp.MustCompile(`^(\d+)(?:\(x(\d+)\))?$`)

// parseTasksPerNode parses the compressed form of SLURM_TASKS_PER_NODE,
// e.g. 2(x3),1 means 2,2,2,1.
func parseTasksPerNode(val string) ([]int, error) {
	var tasks []int
	for _, part := range strings.Split(val, ",") {
		m := nodeTasksRe.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("invalid %s: %q", TasksPerNodeEnvKey, val)
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", TasksPerNodeEnvKey, val)
		}
		repeat := 1
		if len(m[2]) > 0 {
			if repeat, err = strconv.Atoi(m[2]); err != nil {
				return nil, fmt.Errorf("invalid %s: %q", TasksPerNodeEnvKey, val)
			}
		}
		for i := 0; i < repeat; i++ {
			tasks = append(tasks, n)
		}
	}
	return tasks, nil
}
