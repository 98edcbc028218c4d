package slurm

import (
	"path"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirectives() Directives {
	return Directives{
		Partition:     `gpu`,
		JobName:       `train-demo`,
		Nodes:         2,
		NtasksPerNode: 8,
		CpusPerGpu:    6,
		Gres:          `gpu:8`,
		Output:        `%x_%j.out`,
		Comment:       `laion`,
		OpenMode:      `append`,
		Exclude:       []string{`gpu-st-p4d-24xlarge-30`, `gpu-st-p4d-24xlarge-69`},
		Exclusive:     true,
	}
}

func TestDirectivesRender(t *testing.T) {
	t.Parallel()
	lines := testDirectives().Render()
	want := []string{
		`#SBATCH --partition=gpu`,
		`#SBATCH --job-name=train-demo`,
		`#SBATCH --nodes=2`,
		`#SBATCH --ntasks-per-node=8`,
		`#SBATCH --cpus-per-gpu=6`,
		`#SBATCH --gres=gpu:8`,
		`#SBATCH --output=%x_%j.out`,
		`#SBATCH --comment=laion`,
		`#SBATCH --open-mode=append`,
		`#SBATCH --exclude=gpu-st-p4d-24xlarge-30,gpu-st-p4d-24xlarge-69`,
		`#SBATCH --exclusive`,
	}
	assert.Equal(t, want, lines)
}

func TestScriptRender(t *testing.T) {
	t.Parallel()
	s := Script{
		Directives: Directives{JobName: `demo`, Nodes: 1},
		Setup:      []string{`module load intelmpi`, `source /etc/profile`},
		Payload:    []string{`srun --comment laion python train.py`},
	}
	text := s.Render()
	require.True(t, strings.HasPrefix(text, "#!/bin/bash\n"))
	i := strings.Index(text, "module load intelmpi")
	j := strings.Index(text, "srun --comment laion")
	require.True(t, i >= 0)
	require.True(t, j >= 0)
	assert.Less(t, i, j)
}

func TestParseScriptRoundTrip(t *testing.T) {
	t.Parallel()
	d := testDirectives()
	d.Time = 26*time.Hour + 30*time.Minute
	d.MemMB = 8192
	s := Script{Directives: d, Payload: []string{`hostname`}}
	got, err := ParseScript(strings.NewReader(s.Render()))
	require.NoError(t, err)
	assert.Equal(t, &d, got)
}

func TestParseScriptFile(t *testing.T) {
	t.Parallel()
	file := path.Join(t.TempDir(), "job.sh")
	s := Script{Directives: testDirectives(), Payload: []string{`hostname`}}
	require.NoError(t, s.WriteFile(file))
	d, err := ParseScriptFile(file)
	require.NoError(t, err)
	assert.Equal(t, `train-demo`, d.JobName)
	assert.Equal(t, 2, d.Nodes)
	assert.True(t, d.Exclusive)
}

func TestParseScriptExtra(t *testing.T) {
	t.Parallel()
	in := strings.Join([]string{
		`#!/bin/bash`,
		`#SBATCH --job-name=demo`,
		`#SBATCH --signal=B:USR1@60`,
		`  #SBATCH --requeue`,
		`echo not-a-directive #SBATCH --nodes=4`,
	}, "\n")
	d, err := ParseScript(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, `demo`, d.JobName)
	assert.Equal(t, 0, d.Nodes)
	assert.Equal(t, []string{`--signal=B:USR1@60`, `--requeue`}, d.Extra)
}

func TestParseScriptInvalidValue(t *testing.T) {
	t.Parallel()
	_, err := ParseScript(strings.NewReader(`#SBATCH --nodes=two`))
	require.Error(t, err)
}
