package slurm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnv(env map[string]string) func() {
	old := lookupEnv
	lookupEnv = func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}
	return func() { lookupEnv = old }
}

func TestParseEnv(t *testing.T) {
	defer withEnv(map[string]string{
		`SLURM_JOB_ID`:         `4567`,
		`SLURM_JOB_NODELIST`:   `gpu[01-02]`,
		`SLURM_JOB_NUM_NODES`:  `2`,
		`SLURM_TASKS_PER_NODE`: `8(x2)`,
		`SLURM_GPUS_ON_NODE`:   `8`,
		`SLURMD_NODENAME`:      `gpu01`,
	})()

	a, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, `4567`, a.JobID)
	assert.Equal(t, `gpu[01-02]`, a.Nodelist)
	assert.Equal(t, 2, a.NodeCount)
	assert.Equal(t, []int{8, 8}, a.TasksPerNode)
	assert.Equal(t, 8, a.GPUsPerNode)
	assert.Equal(t, -1, a.ProcID)
	assert.Equal(t, `gpu01`, a.Nodename)
}

func TestParseEnvLegacyNames(t *testing.T) {
	defer withEnv(map[string]string{
		`SLURM_JOB_ID`:   `1`,
		`SLURM_NODELIST`: `n1`,
		`SLURM_NNODES`:   `1`,
	})()

	a, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, `n1`, a.Nodelist)
	assert.Equal(t, 1, a.NodeCount)
}

func TestParseEnvOutsideJob(t *testing.T) {
	defer withEnv(map[string]string{})()
	assert.False(t, InJob())
	_, err := ParseEnv()
	assert.Error(t, err)
}

func TestCheckNodeCount(t *testing.T) {
	t.Parallel()
	a := Allocation{Nodelist: `gpu[01-02]`, NodeCount: 2}
	assert.NoError(t, a.CheckNodeCount([]string{`gpu01`, `gpu02`}))
	assert.Error(t, a.CheckNodeCount([]string{`gpu01`}))

	unset := Allocation{Nodelist: `gpu01`}
	assert.NoError(t, unset.CheckNodeCount([]string{`gpu01`}))
}

func TestParseTasksPerNode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		val  string
		want []int
	}{
		{`8`, []int{8}},
		{`8(x2)`, []int{8, 8}},
		{`2(x3),1`, []int{2, 2, 2, 1}},
		{`1,2,3`, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		tasks, err := parseTasksPerNode(tt.val)
		require.NoError(t, err, "val %q", tt.val)
		assert.Equal(t, tt.want, tasks, "val %q", tt.val)
	}
	for _, val := range []string{``, `x`, `8(x)`, `(x2)`} {
		_, err := parseTasksPerNode(val)
		assert.Error(t, err, "val %q", val)
	}
}
