package proc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"

	"github.com/kballard/go-shellquote"
)

type Envs map[string]string

func (e Envs) AddIfMissing(k, v string) {
	if _, ok := e[k]; !ok {
		e[k] = v
	}
}

func (e Envs) Keys() []string {
	var keys []string
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func Merge(e, f Envs) Envs {
	g := make(Envs)
	for k, v := range e {
		g[k] = v
	}
	for k, v := range f {
		g[k] = v
	}
	return g
}

// Proc represents a general purpose process
type Proc struct {
	Name     string
	Prog     string
	Args     []string
	Envs     Envs
	Hostname string
	LogDir   string
	ChDir    *string
}

// Cmd builds the local command. The working directory and environment
// are fixed here, before the process is started.
func (p Proc) Cmd(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, p.Prog, p.Args...)
	cmd.Env = updatedEnvFrom(p.Envs, os.Environ())
	if p.ChDir != nil {
		cmd.Dir = *p.ChDir
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// kill the whole process group, srun and python included
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	return cmd
}

// Script renders the process as a POSIX shell command for remote execution.
func (p Proc) Script() string {
	buf := &bytes.Buffer{}
	var chdir string
	if p.ChDir != nil {
		chdir = fmt.Sprintf("-C %s", shellquote.Join(*p.ChDir))
	}
	fmt.Fprintf(buf, "env %s\\\n", chdir)
	for _, k := range p.Envs.Keys() {
		fmt.Fprintf(buf, "\t%s=%s \\\n", k, shellquote.Join(p.Envs[k]))
	}
	fmt.Fprintf(buf, "\t%s \\\n", shellquote.Join(p.Prog))
	for _, a := range p.Args {
		fmt.Fprintf(buf, "\t%s \\\n", shellquote.Join(a))
	}
	fmt.Fprintf(buf, "\n")
	return buf.String()
}

func parseEnv(envs []string) Envs {
	envMap := make(Envs)
	for _, kv := range envs {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}
	return envMap
}

func updatedEnvFrom(newValues Envs, oldEnvs []string) []string {
	envMap := parseEnv(oldEnvs)
	for k, v := range newValues {
		envMap[k] = v
	}
	var envs []string
	for k, v := range envMap {
		envs = append(envs, fmt.Sprintf("%s=%s", k, v))
	}
	return envs
}
