package slurm

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Directives is the resource request block of a batch script.
type Directives struct {
	Partition     string
	JobName       string
	Nodes         int
	NtasksPerNode int
	CpusPerGpu    int
	CpusPerTask   int
	Gres          string
	MemMB         int64
	Time          time.Duration
	Output        string
	Comment       string
	OpenMode      string
	Exclude       []string
	Account       string
	Dependency    string
	Exclusive     bool

	// directives we render back but do not interpret
	Extra []string
}

func (d Directives) Render() []string {
	var lines []string
	add := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf("#SBATCH "+format, args...))
	}
	if len(d.Partition) > 0 {
		add("--partition=%s", d.Partition)
	}
	if len(d.JobName) > 0 {
		add("--job-name=%s", d.JobName)
	}
	if d.Nodes > 0 {
		add("--nodes=%d", d.Nodes)
	}
	if d.NtasksPerNode > 0 {
		add("--ntasks-per-node=%d", d.NtasksPerNode)
	}
	if d.CpusPerGpu > 0 {
		add("--cpus-per-gpu=%d", d.CpusPerGpu)
	}
	if d.CpusPerTask > 0 {
		add("--cpus-per-task=%d", d.CpusPerTask)
	}
	if len(d.Gres) > 0 {
		add("--gres=%s", d.Gres)
	}
	if d.MemMB > 0 {
		add("--mem=%dM", d.MemMB)
	}
	if d.Time > 0 {
		add("--time=%s", FormatTime(d.Time))
	}
	if len(d.Output) > 0 {
		add("--output=%s", d.Output)
	}
	if len(d.Comment) > 0 {
		add("--comment=%s", d.Comment)
	}
	if len(d.OpenMode) > 0 {
		add("--open-mode=%s", d.OpenMode)
	}
	if len(d.Exclude) > 0 {
		add("--exclude=%s", strings.Join(d.Exclude, ","))
	}
	if len(d.Account) > 0 {
		add("--account=%s", d.Account)
	}
	if len(d.Dependency) > 0 {
		add("--dependency=%s", d.Dependency)
	}
	if d.Exclusive {
		add("--exclusive")
	}
	for _, extra := range d.Extra {
		add("%s", extra)
	}
	return lines
}

// Script is a full batch script: directives, setup lines such as module
// loads, then the payload.
type Script struct {
	Directives Directives
	Setup      []string
	Payload    []string
}

func (s Script) Render() string {
	buf := &bytes.Buffer{}
	fmt.Fprintln(buf, "#!/bin/bash")
	for _, line := range s.Directives.Render() {
		fmt.Fprintln(buf, line)
	}
	fmt.Fprintln(buf)
	for _, line := range s.Setup {
		fmt.Fprintln(buf, line)
	}
	if len(s.Setup) > 0 {
		fmt.Fprintln(buf)
	}
	for _, line := range s.Payload {
		fmt.Fprintln(buf, line)
	}
	return buf.String()
}

func (s Script) WriteFile(path string) error {
	return os.WriteFile(path, []byte(s.Render()), 0755)
}

var directiveRe = regexp.MustCompile(`^\s*#SBATCH\s+(.+)$`)

// ParseScript reads the #SBATCH directives back from a batch script.
func ParseScript(r io.Reader) (*Directives, error) {
	d := &Directives{}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		m := directiveRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		if err := d.parseFlag(strings.TrimSpace(m[1])); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func ParseScriptFile(path string) (*Directives, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseScript(f)
}

func (d *Directives) parseFlag(flag string) error {
	ok, key, val := parseKeyValue(flag)
	if !ok {
		switch flag {
		case `--exclusive`:
			d.Exclusive = true
		default:
			d.Extra = append(d.Extra, flag)
		}
		return nil
	}
	var err error
	switch key {
	case `--partition`:
		d.Partition = val
	case `--job-name`:
		d.JobName = val
	case `--nodes`:
		d.Nodes, err = strconv.Atoi(val)
	case `--ntasks-per-node`:
		d.NtasksPerNode, err = strconv.Atoi(val)
	case `--cpus-per-gpu`:
		d.CpusPerGpu, err = strconv.Atoi(val)
	case `--cpus-per-task`:
		d.CpusPerTask, err = strconv.Atoi(val)
	case `--gres`:
		d.Gres = val
	case `--mem`:
		d.MemMB, err = ParseMem(val)
	case `--time`:
		d.Time, err = ParseTime(val)
	case `--output`:
		d.Output = val
	case `--comment`:
		d.Comment = val
	case `--open-mode`:
		d.OpenMode = val
	case `--exclude`:
		d.Exclude = strings.Split(val, ",")
	case `--account`:
		d.Account = val
	case `--dependency`:
		d.Dependency = val
	default:
		d.Extra = append(d.Extra, flag)
	}
	if err != nil {
		return errors.Wrapf(err, "invalid value for %s", key)
	}
	return nil
}

func parseKeyValue(str string) (bool, string, string) {
	if strings.ContainsRune(str, '=') {
		parts := strings.SplitN(str, "=", 2)
		return true, parts[0], parts[1]
	}
	return false, "", ""
}
