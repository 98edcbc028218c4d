package slurm

import (
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/shardrun/shardrun/srcs/go/log"
)

type commandRunner func(ctx context.Context, prog string, args ...string) (string, error)

func runCommand(ctx context.Context, prog string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, prog, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return string(out), errors.Wrapf(err, "%s: %s", prog, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return string(out), errors.Wrap(err, prog)
	}
	return string(out), nil
}

// Client runs the scheduler's command line tools.
type Client struct {
	run commandRunner
}

func NewClient() *Client {
	return &Client{run: runCommand}
}

var errEmptyNodelist = errors.New("empty nodelist")

// Hostnames resolves a compressed nodelist through scontrol, falling
// back to in-process expansion when scontrol is not usable.
func (c *Client) Hostnames(ctx context.Context, nodelist string) ([]string, error) {
	if len(nodelist) == 0 {
		return nil, errEmptyNodelist
	}
	out, err := c.run(ctx, `scontrol`, `show`, `hostnames`, nodelist)
	if err != nil {
		log.Debugf("scontrol show hostnames failed: %v, expanding %q locally", err, nodelist)
		return ExpandHostlist(nodelist)
	}
	return splitLines(out), nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}
