package slurm

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shardrun/shardrun/srcs/go/config"
	"github.com/shardrun/shardrun/srcs/go/log"
)

type noJobFound struct {
	msg string
}

func (e *noJobFound) Error() string {
	return e.msg
}

func IsNoJobFound(err error) bool {
	var njf *noJobFound
	return errors.As(err, &njf)
}

var jobIDRe = regexp.MustCompile(`Submitted batch job (\d+)`)

func parseJobIDFromBatchOutput(out string) (string, error) {
	m := jobIDRe.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", errors.Errorf("unable to parse job ID from %q", strings.TrimSpace(out))
	}
	return m[1], nil
}

// Submit renders the script to path (a temp file when empty) and hands
// it to sbatch, returning the job ID.
func (c *Client) Submit(ctx context.Context, script Script, path string) (string, error) {
	if len(path) == 0 {
		f, err := os.CreateTemp("", "sbatch-*.sh")
		if err != nil {
			return "", err
		}
		path = f.Name()
		f.Close()
		defer os.Remove(path)
	}
	if err := script.WriteFile(path); err != nil {
		return "", err
	}
	return c.SubmitFile(ctx, path)
}

func (c *Client) SubmitFile(ctx context.Context, path string) (string, error) {
	out, err := c.run(ctx, `sbatch`, path)
	if err != nil {
		return "", errors.Wrap(err, "sbatch")
	}
	return parseJobIDFromBatchOutput(out)
}

// JobInfo is the queue view of one job.
type JobInfo struct {
	ID    string
	Name  string
	State string
}

// JobInfo asks squeue about a job still in the queue.
func (c *Client) JobInfo(ctx context.Context, jobID string) (*JobInfo, error) {
	out, err := c.run(ctx, `squeue`, `--noheader`, `-o`, `%j,%i,%T`, `--jobs`, jobID)
	if err != nil {
		return nil, errors.Wrapf(err, "squeue --jobs %s", jobID)
	}
	return parseJobInfo(out, jobID)
}

func parseJobInfo(out, jobID string) (*JobInfo, error) {
	line := strings.TrimSpace(out)
	if len(line) == 0 {
		return nil, &noJobFound{msg: fmt.Sprintf("no information found for job with id:%q", jobID)}
	}
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return nil, errors.Errorf("unexpected squeue output %q", line)
	}
	return &JobInfo{Name: fields[0], ID: fields[1], State: fields[2]}, nil
}

// FinalState asks the accounting database about a job that already left
// the queue. It returns the state and the job's exit code.
func (c *Client) FinalState(ctx context.Context, jobID string) (string, int, error) {
	out, err := c.run(ctx, `sacct`, `-n`, `-P`, `-X`, `-j`, jobID, `-o`, `State,ExitCode`)
	if err != nil {
		return "", 0, errors.Wrapf(err, "sacct -j %s", jobID)
	}
	return parseFinalState(out, jobID)
}

func parseFinalState(out, jobID string) (string, int, error) {
	line := strings.TrimSpace(out)
	if len(line) == 0 {
		return "", 0, &noJobFound{msg: fmt.Sprintf("no accounting for job with id:%q", jobID)}
	}
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Split(line, "|")
	if len(fields) != 2 || len(fields[0]) == 0 {
		return "", 0, errors.Errorf("unexpected sacct output %q", line)
	}
	// CANCELLED shows as "CANCELLED by <uid>"
	state := strings.Fields(fields[0])[0]
	code := 0
	if i := strings.IndexByte(fields[1], ':'); i >= 0 {
		n, err := strconv.Atoi(fields[1][:i])
		if err != nil {
			return "", 0, errors.Errorf("unexpected sacct exit code %q", fields[1])
		}
		code = n
	}
	return state, code, nil
}

func (c *Client) Cancel(ctx context.Context, jobID string) error {
	_, err := c.run(ctx, `scancel`, jobID)
	return errors.Wrapf(err, "scancel %s", jobID)
}

// StateCompleted is the only terminal state that counts as success.
const StateCompleted = `COMPLETED`

var terminalStates = map[string]bool{
	StateCompleted:  true,
	`FAILED`:        true,
	`CANCELLED`:     true,
	`TIMEOUT`:       true,
	`NODE_FAIL`:     true,
	`PREEMPTED`:     true,
	`BOOT_FAIL`:     true,
	`DEADLINE`:      true,
	`OUT_OF_MEMORY`: true,
}

func IsTerminalState(state string) bool {
	return terminalStates[state]
}

// WaitJob polls the job until it reaches a terminal state, logging
// state transitions. It observes only, resubmission is up to the
// operator.
func (c *Client) WaitJob(ctx context.Context, jobID string, period time.Duration) (string, error) {
	if period <= 0 {
		period = config.MonitoringPeriod
	}
	tk := time.NewTicker(period)
	defer tk.Stop()
	var last string
	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-tk.C:
		}
		info, err := c.JobInfo(ctx, jobID)
		if err != nil {
			if IsNoJobFound(err) {
				state, code, err := c.FinalState(ctx, jobID)
				if err != nil {
					log.Warnf("job %s left the queue: %v", jobID, err)
					return `UNKNOWN`, nil
				}
				log.Infof("job %s is %s (exit code %d)", jobID, state, code)
				return state, nil
			}
			return "", err
		}
		if info.State != last {
			log.Infof("job %s is %s", jobID, info.State)
			last = info.State
		}
		if IsTerminalState(info.State) {
			return info.State, nil
		}
	}
}
