package launch

// Coordination variables exported to every worker of a training job.
const (
	HostnamesEnvKey  = `HOSTNAMES`
	MasterAddrEnvKey = `MASTER_ADDR`
	MasterPortEnvKey = `MASTER_PORT`
	CountNodeEnvKey  = `COUNT_NODE`
)

// Per-process rank variables, set when the launcher spawns workers
// itself (local and ssh modes). Under srun each task reads its rank
// from the scheduler instead.
const (
	WorldSizeEnvKey = `WORLD_SIZE`
	RankEnvKey      = `RANK`
	LocalRankEnvKey = `LOCAL_RANK`
)

const (
	pythonPathEnvKey         = `PYTHONPATH`
	pythonFaultHandlerEnvKey = `PYTHONFAULTHANDLER`
	pythonUnbufferedEnvKey   = `PYTHONUNBUFFERED`
	cudaLaunchBlockingEnvKey = `CUDA_LAUNCH_BLOCKING`

	jobStartTimestampEnvKey = `SHARDRUN_JOB_START_TIMESTAMP`
)
