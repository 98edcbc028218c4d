package profile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/shardrun/shardrun/srcs/go/config"
	"github.com/shardrun/shardrun/srcs/go/launch"
	"github.com/shardrun/shardrun/srcs/go/shard"
	"github.com/shardrun/shardrun/srcs/go/slurm"
)

// Profile is one experiment: the resources to request, the environment
// to prepare and the trainer invocation, in a TOML file instead of a
// per-experiment shell script.
type Profile struct {
	Name      string   `toml:"name"`
	Partition string   `toml:"partition"`
	Account   string   `toml:"account"`
	Comment   string   `toml:"comment"`
	Output    string   `toml:"output"`
	OpenMode  string   `toml:"open_mode"`
	Exclude   []string `toml:"exclude"`
	Exclusive bool     `toml:"exclusive"`
	Time      string   `toml:"time"`

	Nodes       int `toml:"nodes"`
	GPUsPerNode int `toml:"gpus_per_node"`
	CPUsPerGPU  int `toml:"cpus_per_gpu"`

	Modules    []string `toml:"modules"`
	SourceEnv  []string `toml:"source_env"`
	WorkDir    string   `toml:"work_dir"`
	PythonPath []string `toml:"python_path"`
	LogDir     string   `toml:"log_dir"`
	MasterPort uint16   `toml:"master_port"`
	SrunArgs   []string `toml:"srun_args"`

	Trainer          string   `toml:"trainer"`
	Shards           string   `toml:"shards"`
	DatasetResampled bool     `toml:"dataset_resampled"`
	BatchSize        int      `toml:"batch_size"`
	Workers          int      `toml:"workers"`
	TrainNumSamples  int64    `toml:"train_num_samples"`
	NumEpochs        int64    `toml:"num_epochs"`
	ReportToWandb    bool     `toml:"report_to_wandb"`
	WandbProject     string   `toml:"wandb_project"`
	WandbEntity      string   `toml:"wandb_entity"`
	RunName          string   `toml:"run_name"`
	ExtraArgs        []string `toml:"extra_args"`
}

func Default() Profile {
	return Profile{
		Name:             `train`,
		OpenMode:         `append`,
		Output:           `%x_%j.out`,
		Exclusive:        true,
		Nodes:            2,
		GPUsPerNode:      8,
		CPUsPerGPU:       6,
		MasterPort:       config.DefaultMasterPort,
		Trainer:          `python3 train.py`,
		DatasetResampled: true,
		BatchSize:        50,
		Workers:          2,
		TrainNumSamples:  1000000,
		NumEpochs:        500000,
		ReportToWandb:    true,
	}
}

// Load reads a profile over the defaults. An unset run name gets a
// fresh unique one so resubmissions do not collide in experiment
// tracking.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := Default()
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, path)
	}
	if len(p.RunName) == 0 {
		p.RunName = p.Name + "-" + uuid.New().String()
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return &p, nil
}

func (p Profile) Validate() error {
	if len(p.Name) == 0 {
		return errors.New("name must not be empty")
	}
	if p.Nodes <= 0 {
		return errors.Errorf("invalid nodes %d", p.Nodes)
	}
	if p.GPUsPerNode <= 0 {
		return errors.Errorf("invalid gpus_per_node %d", p.GPUsPerNode)
	}
	if p.BatchSize <= 0 {
		return errors.Errorf("invalid batch_size %d", p.BatchSize)
	}
	if p.Workers < 0 {
		return errors.Errorf("invalid workers %d", p.Workers)
	}
	switch p.OpenMode {
	case ``, `append`, `truncate`:
	default:
		return errors.Errorf("invalid open_mode %q", p.OpenMode)
	}
	if shard.IsS3(p.Shards) {
		if _, err := shard.ParseURL(p.Shards); err != nil {
			return err
		}
	} else if strings.Contains(p.Shards, `://`) {
		return errors.Errorf("unsupported shards url %q, want s3:// or a local path", p.Shards)
	}
	if len(p.Time) > 0 {
		if _, err := slurm.ParseTime(p.Time); err != nil {
			return err
		}
	}
	words, err := shellquote.Split(p.Trainer)
	if err != nil || len(words) == 0 {
		return errors.Errorf("invalid trainer %q", p.Trainer)
	}
	return nil
}

// TrainArgs renders the flags the trainer is invoked with.
func (p Profile) TrainArgs() ([]string, error) {
	var args []string
	if shard.IsS3(p.Shards) {
		u, err := shard.ParseURL(p.Shards)
		if err != nil {
			return nil, err
		}
		args = append(args, `--shards=`+shard.PipeCommand(*u))
	} else if len(p.Shards) > 0 {
		// local shards are read in place, no pipe loader
		args = append(args, `--shards=`+p.Shards)
	}
	if p.DatasetResampled {
		args = append(args, `--dataset_resampled`)
	}
	args = append(args, fmt.Sprintf("--batch_size=%d", p.BatchSize))
	args = append(args, fmt.Sprintf("--workers=%d", p.Workers))
	if p.ReportToWandb {
		args = append(args, `--report_to_wandb`)
	}
	if len(p.WandbProject) > 0 {
		args = append(args, `--wandb_project=`+p.WandbProject)
	}
	if len(p.WandbEntity) > 0 {
		args = append(args, `--wandb_entity=`+p.WandbEntity)
	}
	args = append(args, `--run_name=`+p.RunName)
	args = append(args, fmt.Sprintf("--train_num_samples=%d", p.TrainNumSamples))
	args = append(args, fmt.Sprintf("--num_epochs=%d", p.NumEpochs))
	args = append(args, p.ExtraArgs...)
	return args, nil
}

// Directives renders the resource request.
func (p Profile) Directives() (slurm.Directives, error) {
	d := slurm.Directives{
		Partition:     p.Partition,
		JobName:       p.Name,
		Nodes:         p.Nodes,
		NtasksPerNode: p.GPUsPerNode,
		CpusPerGpu:    p.CPUsPerGPU,
		Gres:          fmt.Sprintf("gpu:%d", p.GPUsPerNode),
		Output:        p.Output,
		Comment:       p.Comment,
		OpenMode:      p.OpenMode,
		Exclude:       p.Exclude,
		Account:       p.Account,
		Exclusive:     p.Exclusive,
	}
	if len(p.Time) > 0 {
		t, err := slurm.ParseTime(p.Time)
		if err != nil {
			return d, err
		}
		d.Time = t
	}
	return d, nil
}

// Job binds the profile to a derived launch environment.
func (p Profile) Job(env launch.Env) (*launch.Job, error) {
	words, err := shellquote.Split(p.Trainer)
	if err != nil || len(words) == 0 {
		return nil, errors.Errorf("invalid trainer %q", p.Trainer)
	}
	trainArgs, err := p.TrainArgs()
	if err != nil {
		return nil, err
	}
	args := append(words[1:], trainArgs...)
	return &launch.Job{
		Env:        env,
		Prog:       words[0],
		Args:       args,
		WorkDir:    p.WorkDir,
		PythonPath: p.PythonPath,
		LogDir:     p.LogDir,
		GPUPerHost: p.GPUsPerNode,
	}, nil
}

// LauncherLine renders the payload command: the launcher binary with
// its flags, then the trainer invocation after the separator.
func (p Profile) LauncherLine(selfExe string) (string, error) {
	argv := []string{selfExe}
	if len(p.WorkDir) > 0 {
		argv = append(argv, `-chdir`, p.WorkDir)
	}
	if len(p.PythonPath) > 0 {
		argv = append(argv, `-pythonpath`, strings.Join(p.PythonPath, ":"))
	}
	if len(p.LogDir) > 0 {
		argv = append(argv, `-logdir`, p.LogDir)
	}
	if p.MasterPort > 0 {
		argv = append(argv, `-port`, strconv.Itoa(int(p.MasterPort)))
	}
	if len(p.SrunArgs) > 0 {
		argv = append(argv, `-srun-args`, shellquote.Join(p.SrunArgs...))
	}
	argv = append(argv, `--`)
	words, err := shellquote.Split(p.Trainer)
	if err != nil {
		return "", errors.Errorf("invalid trainer %q", p.Trainer)
	}
	argv = append(argv, words...)
	trainArgs, err := p.TrainArgs()
	if err != nil {
		return "", err
	}
	argv = append(argv, trainArgs...)
	return shellquote.Join(argv...), nil
}

// Script renders the full sbatch script for the profile.
func (p Profile) Script(selfExe string) (*slurm.Script, error) {
	d, err := p.Directives()
	if err != nil {
		return nil, err
	}
	var setup []string
	for _, m := range p.Modules {
		setup = append(setup, `module load `+m)
	}
	for _, f := range p.SourceEnv {
		setup = append(setup, `source `+shellquote.Join(f))
	}
	line, err := p.LauncherLine(selfExe)
	if err != nil {
		return nil, err
	}
	return &slurm.Script{
		Directives: d,
		Setup:      setup,
		Payload:    []string{line},
	}, nil
}
