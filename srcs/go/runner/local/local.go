package local

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shardrun/shardrun/srcs/go/log"
	"github.com/shardrun/shardrun/srcs/go/proc"
	"github.com/shardrun/shardrun/srcs/go/utils/iostream"
	"github.com/shardrun/shardrun/srcs/go/utils/xterm"
)

type Runner struct {
	Name          string
	Color         xterm.Color
	LogDir        string
	LogFilePrefix string
	VerboseLog    bool
}

// Run a command with context
func (r Runner) Run(cmd *exec.Cmd) error {
	return runWith(r.defaultRedirectors(), cmd)
}

// TryRun starts the process and waits for it. On failure the first
// stderr line is logged, so the cause survives even without -v.
func (r Runner) TryRun(ctx context.Context, p proc.Proc) error {
	firstStderr := &iostream.SaveFirstWriter{}
	firstLogs := &iostream.StdWriters{Stdout: &iostream.Null{}, Stderr: firstStderr}
	redirectors := append(r.defaultRedirectors(), firstLogs)
	err := runWith(redirectors, p.Cmd(ctx))
	if err != nil && !r.VerboseLog && len(firstStderr.First) > 0 {
		log.Errorf("#<%s> first stderr: %s", r.Name, strings.TrimSpace(firstStderr.First))
	}
	return err
}

func (r Runner) defaultRedirectors() []*iostream.StdWriters {
	var redirectors []*iostream.StdWriters
	if r.VerboseLog {
		redirectors = append(redirectors, iostream.NewXTermRedirector(r.Name, r.Color))
	}
	if len(r.LogFilePrefix) > 0 {
		redirectors = append(redirectors, iostream.NewFileRedirector(path.Join(r.LogDir, r.LogFilePrefix)))
	}
	return redirectors
}

func runWith(redirectors []*iostream.StdWriters, cmd *exec.Cmd) error {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	defer stdout.Close()
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	defer stderr.Close()
	results := iostream.StdReaders{Stdout: stdout, Stderr: stderr}
	ioDone := results.Stream(redirectors...)
	if err := cmd.Start(); err != nil {
		return err
	}
	ioDone.Wait() // call this before cmd.Wait!
	return cmd.Wait()
}

// RunForeground runs one process with the launcher's own stdio, so its
// output and exit code pass through untouched.
func RunForeground(ctx context.Context, p proc.Proc) error {
	cmd := p.Cmd(ctx)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func RunAll(ctx context.Context, ps []proc.Proc, verboseLog bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	var fail int32
	for i, p := range ps {
		wg.Add(1)
		go func(i int, p proc.Proc) {
			r := &Runner{
				Name:          p.Name,
				Color:         xterm.BasicColors.Choose(i),
				VerboseLog:    verboseLog,
				LogFilePrefix: strings.Replace(p.Name, "/", "-", -1),
				LogDir:        p.LogDir,
			}
			if err := r.TryRun(ctx, p); err != nil {
				log.Errorf("#<%s> exited with error: %v", p.Name, err)
				atomic.AddInt32(&fail, 1)
				cancel()
			} else {
				log.Debugf("#<%s> finished successfully", p.Name)
			}
			wg.Done()
		}(i, p)
	}
	wg.Wait()
	if fail != 0 {
		return fmt.Errorf("%d tasks failed", fail)
	}
	return nil
}
