package profile

import (
	"os"
	"path"
	"strings"
	"testing"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	file := path.Join(t.TempDir(), "profile.toml")
	require.NoError(t, os.WriteFile(file, []byte(body), 0644))
	return file
}

func TestLoad(t *testing.T) {
	t.Parallel()
	file := writeProfile(t, `
name = "train-highres"
partition = "gpu"
comment = "laion"
exclude = ["gpu-st-p4d-24xlarge-30"]
modules = ["intelmpi"]
source_env = ["/opt/intel/mpi/latest/env/vars.sh"]
work_dir = "/fsx/open_clip/src"
python_path = ["/fsx/open_clip/src"]
shards = "s3://laion/data/{00000..00999}.tar"
wandb_project = "laion-training"
wandb_entity = "eye"
`)
	p, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, `train-highres`, p.Name)
	assert.Equal(t, `gpu`, p.Partition)
	assert.Equal(t, []string{`gpu-st-p4d-24xlarge-30`}, p.Exclude)

	// defaults survive the overlay
	assert.Equal(t, 2, p.Nodes)
	assert.Equal(t, 8, p.GPUsPerNode)
	assert.Equal(t, 6, p.CPUsPerGPU)
	assert.Equal(t, uint16(12802), p.MasterPort)
	assert.Equal(t, 50, p.BatchSize)
	assert.Equal(t, 2, p.Workers)
	assert.Equal(t, int64(1000000), p.TrainNumSamples)
	assert.Equal(t, int64(500000), p.NumEpochs)

	// a generated run name keeps runs apart
	assert.True(t, strings.HasPrefix(p.RunName, `train-highres-`))
	assert.Greater(t, len(p.RunName), len(`train-highres-`))
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()
	for name, body := range map[string]string{
		"bad toml":      `name = `,
		"bad open mode": `open_mode = "overwrite"`,
		"bad shards":    `shards = "http://laion/data.tar"`,
		"bad nodes":     `nodes = 0`,
		"bad time":      `time = "soon"`,
	} {
		file := writeProfile(t, body)
		_, err := Load(file)
		assert.Error(t, err, name)
	}
}

func TestTrainArgs(t *testing.T) {
	t.Parallel()
	p := Default()
	p.Shards = `s3://laion/data/{00000..00999}.tar`
	p.WandbProject = `laion-training`
	p.WandbEntity = `eye`
	p.RunName = `demo-run`
	args, err := p.TrainArgs()
	require.NoError(t, err)
	want := []string{
		`--shards=pipe:aws s3 cp s3://laion/data/{00000..00999}.tar -`,
		`--dataset_resampled`,
		`--batch_size=50`,
		`--workers=2`,
		`--report_to_wandb`,
		`--wandb_project=laion-training`,
		`--wandb_entity=eye`,
		`--run_name=demo-run`,
		`--train_num_samples=1000000`,
		`--num_epochs=500000`,
	}
	assert.Equal(t, want, args)
}

func TestDirectives(t *testing.T) {
	t.Parallel()
	p := Default()
	p.Name = `train-demo`
	p.Partition = `gpu`
	p.Comment = `laion`
	d, err := p.Directives()
	require.NoError(t, err)
	assert.Equal(t, `train-demo`, d.JobName)
	assert.Equal(t, 2, d.Nodes)
	assert.Equal(t, 8, d.NtasksPerNode)
	assert.Equal(t, 6, d.CpusPerGpu)
	assert.Equal(t, `gpu:8`, d.Gres)
	assert.Equal(t, `append`, d.OpenMode)
	assert.True(t, d.Exclusive)
}

func TestLauncherLine(t *testing.T) {
	t.Parallel()
	p := Default()
	p.Shards = `s3://laion/data/{00000..00999}.tar`
	p.RunName = `demo-run`
	p.WorkDir = `/fsx/open_clip/src`
	p.PythonPath = []string{`/fsx/open_clip/src`}
	p.SrunArgs = []string{`--comment`, `laion`}
	line, err := p.LauncherLine(`/usr/local/bin/shardrun`)
	require.NoError(t, err)

	words, err := shellquote.Split(line)
	require.NoError(t, err)
	assert.Equal(t, `/usr/local/bin/shardrun`, words[0])
	sep := -1
	for i, w := range words {
		if w == `--` {
			sep = i
			break
		}
	}
	require.GreaterOrEqual(t, sep, 0, "missing separator in %q", line)
	require.Greater(t, len(words), sep+2)
	assert.Equal(t, `python3`, words[sep+1])
	assert.Equal(t, `train.py`, words[sep+2])
	// the pipe command must survive shell quoting as one argument
	assert.Contains(t, words, `--shards=pipe:aws s3 cp s3://laion/data/{00000..00999}.tar -`)
	assert.Contains(t, words, `-srun-args`)
}

func TestScript(t *testing.T) {
	t.Parallel()
	p := Default()
	p.Name = `train-demo`
	p.Modules = []string{`intelmpi`}
	p.SourceEnv = []string{`/opt/intel/mpi/latest/env/vars.sh`}
	p.RunName = `demo-run`
	s, err := p.Script(`shardrun`)
	require.NoError(t, err)
	text := s.Render()
	assert.Contains(t, text, "#SBATCH --job-name=train-demo\n")
	assert.Contains(t, text, "module load intelmpi\n")
	assert.Contains(t, text, "source /opt/intel/mpi/latest/env/vars.sh\n")
	mod := strings.Index(text, `module load`)
	run := strings.Index(text, `shardrun`)
	require.True(t, mod >= 0 && run >= 0)
	assert.Less(t, mod, run, "environment setup must precede the launcher")
}
