package runner

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/shardrun/shardrun/srcs/go/config"
	"github.com/shardrun/shardrun/srcs/go/plan"
	"github.com/shardrun/shardrun/srcs/go/plan/hostfile"
	"github.com/shardrun/shardrun/srcs/go/utils"
)

// DefaultConfigPort is where the builtin config server listens when -w
// is given without an explicit port.
const DefaultConfigPort = 9100

func Init(f *FlagSet, args []string) {
	if err := f.Parse(args); err != nil {
		utils.ExitErr(err)
	}
	if !f.Quiet {
		utils.LogArgs()
		utils.LogSlurmEnv()
		utils.LogCudaEnv()
		utils.LogNCCLEnv()
	}
}

type FlagSet struct {
	NumProc  int
	hostList string
	hostFile string
	HostList plan.HostList

	User string

	Mode       Mode
	GPUPerHost int
	ChDir      string
	pythonPath string
	PythonPath []string
	srunArgs   string
	SrunArgs   []string

	Port      int
	PortRange plan.PortRange

	Timeout    time.Duration
	VerboseLog bool
	Quiet      bool

	Watch        bool
	ConfigPort   int
	ConfigServer string

	JobStartTime int
	Logfile      string
	LogDir       string

	Prog string
	Args []string
}

func (f *FlagSet) Register(flag *flag.FlagSet) {
	flag.IntVar(&f.NumProc, "np", 0, "number of workers, 0 means one per GPU slot")
	flag.StringVar(&f.hostList, "H", "", "comma separated list of <hostname>:<nslots>[:<public addr>], default is the scheduler's node list")
	flag.StringVar(&f.hostFile, "hostfile", "", "path to hostfile, will override -H if specified")

	flag.StringVar(&f.User, "u", "", "user name for ssh")

	f.Mode = DefaultMode
	flag.Var(&f.Mode, "mode", fmt.Sprintf("launch mode, options are: %s", strings.Join(ModeNames(), " | ")))
	flag.IntVar(&f.GPUPerHost, "gpus", 0, "GPUs per host, 0 means ask the scheduler")
	flag.StringVar(&f.ChDir, "chdir", "", "working directory of the program")
	flag.StringVar(&f.pythonPath, "pythonpath", "", "colon separated list of dirs appended to PYTHONPATH")
	flag.StringVar(&f.srunArgs, "srun-args", "", "extra srun arguments, quoted as one string")

	flag.IntVar(&f.Port, "port", config.DefaultMasterPort, "rendezvous port on the master node")
	f.PortRange = plan.DefaultPortRange
	flag.Var(&f.PortRange, "port-range", "port range for the workers")

	flag.DurationVar(&f.Timeout, "timeout", 0, "timeout")
	flag.BoolVar(&f.VerboseLog, "v", true, "show task log")
	flag.BoolVar(&f.Quiet, "q", false, "don't log debug info")

	flag.BoolVar(&f.Watch, "w", false, "serve the launch config over HTTP while the job runs")
	flag.IntVar(&f.ConfigPort, "config-port", DefaultConfigPort, "port of the builtin config server")
	flag.StringVar(&f.ConfigServer, "config-server", config.ConfigServer, "config server URL advertised to workers")

	flag.IntVar(&f.JobStartTime, "t0", int(time.Now().Unix()), "job start timestamp")
	flag.StringVar(&f.Logfile, "logfile", "", "path to log file")
	flag.StringVar(&f.LogDir, "logdir", "", "path to log dir")
}

var errMissingProgramName = errors.New("missing program name")

func (f *FlagSet) Parse(args []string) error {
	commandLine := flag.NewFlagSet(args[0], flag.ExitOnError)
	f.Register(commandLine)
	commandLine.Parse(args[1:])
	if err := f.resolveHostList(); err != nil {
		return err
	}
	if err := f.resolveLists(); err != nil {
		return err
	}
	args = commandLine.Args()
	if len(args) < 1 {
		return errMissingProgramName
	}
	f.Prog = args[0]
	f.Args = args[1:]
	return nil
}

// resolveHostList leaves HostList nil when neither -H nor -hostfile is
// given, which stands for the scheduler's own node list.
func (f *FlagSet) resolveHostList() error {
	if len(f.hostFile) > 0 {
		hl, err := hostfile.ParseFile(f.hostFile)
		if err != nil {
			return err
		}
		f.HostList = hl
		return nil
	}
	if len(f.hostList) > 0 {
		hl, err := plan.ParseHostList(f.hostList)
		if err != nil {
			return err
		}
		f.HostList = hl
	}
	return nil
}

func (f *FlagSet) resolveLists() error {
	if len(f.pythonPath) > 0 {
		f.PythonPath = strings.Split(f.pythonPath, ":")
	}
	if len(f.srunArgs) > 0 {
		args, err := shellquote.Split(f.srunArgs)
		if err != nil {
			return err
		}
		f.SrunArgs = args
	}
	return nil
}
