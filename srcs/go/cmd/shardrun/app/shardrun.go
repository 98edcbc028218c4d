package app

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/shardrun/shardrun/srcs/go/configserver"
	"github.com/shardrun/shardrun/srcs/go/launch"
	"github.com/shardrun/shardrun/srcs/go/log"
	"github.com/shardrun/shardrun/srcs/go/plan"
	"github.com/shardrun/shardrun/srcs/go/proc"
	"github.com/shardrun/shardrun/srcs/go/runner"
	"github.com/shardrun/shardrun/srcs/go/runner/local"
	"github.com/shardrun/shardrun/srcs/go/runner/remote"
	"github.com/shardrun/shardrun/srcs/go/slurm"
	"github.com/shardrun/shardrun/srcs/go/utils"
)

func Main(args []string) {
	var f runner.FlagSet
	runner.Init(&f, args)
	if logfile := f.Logfile; len(logfile) > 0 {
		if len(f.LogDir) > 0 {
			logfile = path.Join(f.LogDir, logfile)
		}
		dir := path.Dir(logfile)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			log.Warnf("failed to create log dir %s: %v", dir, err)
		}
		lf, err := os.Create(logfile)
		if err != nil {
			utils.ExitErr(err)
		}
		defer lf.Close()
		log.SetOutput(lf)
	}
	t0 := time.Now()
	defer func(prog string) { log.Debugf("%s finished, took %s", prog, time.Since(t0)) }(utils.ProgName())
	if bt, ok := utils.Buildtime(); ok {
		log.Debugf("%s built %s ago", utils.ProgName(), time.Since(bt).Round(time.Second))
	}
	ctx, cancel := context.WithCancel(context.Background())
	trap(cancel)
	if f.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	hl, gpuPerHost, err := resolveCluster(ctx, &f)
	if err != nil {
		utils.ExitErr(err)
	}
	env, err := launch.Derive(hl.Hostnames(), uint16(f.Port))
	if err != nil {
		utils.ExitErr(err)
	}
	np := env.CountNode * gpuPerHost
	if f.NumProc > 0 && f.NumProc != np {
		utils.ExitErr(fmt.Errorf("-np %d does not match %d nodes x %d slots", f.NumProc, env.CountNode, gpuPerHost))
	}
	log.Infof("launching on %s: %s", utils.Pluralize(env.CountNode, "node", "nodes"), env.DebugString())
	j := &launch.Job{
		StartTime:  time.Unix(int64(f.JobStartTime), 0),
		Env:        *env,
		Prog:       f.Prog,
		Args:       f.Args,
		WorkDir:    f.ChDir,
		PythonPath: f.PythonPath,
		LogDir:     f.LogDir,
		GPUPerHost: gpuPerHost,
	}
	if f.Watch {
		peers, err := hl.GenPeerList(np, f.PortRange)
		if err != nil {
			utils.ExitErr(fmt.Errorf("failed to create peers: %v", err))
		}
		init := &configserver.Config{
			Cluster: plan.Cluster{Hosts: hl, Workers: peers},
			Launch:  *env,
		}
		go runBuiltinConfigServer(f.ConfigPort, init)
		j.ConfigServer = f.ConfigServer
		if len(j.ConfigServer) == 0 {
			j.ConfigServer = fmt.Sprintf("http://%s:%d%s", env.MasterAddr, f.ConfigPort, configserver.Endpoint)
		}
	}
	switch f.Mode {
	case runner.Srun:
		srunRun(ctx, j, f.SrunArgs)
	case runner.Local:
		localRun(ctx, j, f.VerboseLog)
	case runner.SSH:
		sshRun(ctx, j, f.User, f.VerboseLog)
	}
}

// resolveCluster decides where the workers will run. An explicit -H or
// -hostfile wins, then the surrounding scheduler allocation, then
// localhost with one slot per visible GPU.
func resolveCluster(ctx context.Context, f *runner.FlagSet) (plan.HostList, int, error) {
	if len(f.HostList) > 0 {
		g := f.GPUPerHost
		if g == 0 {
			g = f.HostList[0].Slots
		}
		return f.HostList, g, nil
	}
	if slurm.InJob() {
		alloc, err := slurm.ParseEnv()
		if err != nil {
			return nil, 0, err
		}
		hostnames, err := slurm.NewClient().Hostnames(ctx, alloc.Nodelist)
		if err != nil {
			return nil, 0, err
		}
		if err := alloc.CheckNodeCount(hostnames); err != nil {
			return nil, 0, err
		}
		g := f.GPUPerHost
		if g == 0 {
			g = alloc.GPUsPerNode
		}
		if g == 0 && len(alloc.TasksPerNode) > 0 {
			g = alloc.TasksPerNode[0]
		}
		if g == 0 {
			g = 1
		}
		return plan.FromHostnames(hostnames, g), g, nil
	}
	g := f.GPUPerHost
	if g == 0 {
		g = max(1, len(utils.ListNvidiaGPUNames()))
	}
	return plan.FromHostnames([]string{`127.0.0.1`}, g), g, nil
}

// srunRun hands the whole allocation to a single srun call. Its output
// and exit code belong to the batch job, so both pass through.
func srunRun(ctx context.Context, j *launch.Job, srunArgs []string) {
	p := j.SrunProc(srunArgs)
	log.Infof("%s", j.DebugString())
	err := local.RunForeground(ctx, p)
	if err != nil {
		log.Errorf("#<%s> exited with error: %v", p.Name, err)
	}
	if code := utils.ExitCode(err); code != 0 {
		os.Exit(code)
	}
}

func localRun(ctx context.Context, j *launch.Job, verboseLog bool) {
	procs, err := localProcs(j)
	if err != nil {
		utils.ExitErr(err)
	}
	log.Infof("will parallel run %d instances of %s with %q", len(procs), j.Prog, j.Args)
	d, err := utils.Measure(func() error { return local.RunAll(ctx, procs, verboseLog) })
	log.Infof("all %d local workers finished, took %s", len(procs), d)
	if err != nil {
		utils.ExitErr(err)
	}
}

// localProcs picks the workers this host owns. With one node that is
// all of them, otherwise each node runs its own share.
func localProcs(j *launch.Job) ([]proc.Proc, error) {
	if j.Env.CountNode == 1 {
		return j.CreateAllProcs(), nil
	}
	hostname := os.Getenv(slurm.NodenameEnvKey)
	if len(hostname) == 0 {
		var err error
		if hostname, err = os.Hostname(); err != nil {
			return nil, err
		}
	}
	return j.CreateProcs(hostname)
}

func sshRun(ctx context.Context, j *launch.Job, user string, verboseLog bool) {
	procs := j.CreateAllProcs()
	log.Infof("will run %d instances of %s with %q over ssh", len(procs), j.Prog, j.Args)
	d, err := utils.Measure(func() error { return remote.RemoteRunAll(ctx, user, procs, verboseLog, j.LogDir) })
	log.Infof("all %d workers finished, took %s", len(procs), d)
	if err != nil {
		utils.ExitErr(err)
	}
}

func trap(cancel context.CancelFunc) {
	utils.Trap(func(sig os.Signal) {
		log.Warnf("%s trapped", sig)
		cancel()
		log.Debugf("cancelled")
	})
}
