package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/qiniu/x/log"
	"golang.org/x/sys/execabs"

	"github.com/goplus/ccpick/pkgs/buildsys"
)

// ErrLaunch is matched by every error caused by a compiler or shell that
// could not be started.
var ErrLaunch = errors.New("launch failed")

// LaunchError reports a process that never ran.
type LaunchError struct {
	Name string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func (e *LaunchError) Is(target error) bool {
	return target == ErrLaunch
}

// Result is the captured outcome of one compiler run. A non-zero ExitCode is
// a normal result, not an error.
type Result struct {
	Command  buildsys.Command `yaml:"command"`
	ExitCode int              `yaml:"exit_code"`
	Stdout   string           `yaml:"stdout"`
	Stderr   string           `yaml:"stderr"`
	Hints    []string         `yaml:"hints"`
}

// Failed reports whether the compiler exited with a non-zero status.
func (r *Result) Failed() bool {
	return r.ExitCode != 0
}

// Runner executes compile commands.
//
// By default the command runs as an argument vector, so paths are never
// interpreted by a shell. Setting Shell (e.g. "bash") joins the tokens with
// spaces and runs them through "<Shell> -c" instead.
type Runner struct {
	Shell string
	Dir   string
	Env   map[string]string
}

// Shell exit codes for "command not found" and "not executable".
const (
	shellNotFound      = 127
	shellNotExecutable = 126
)

// Run executes cmd and blocks until it exits, capturing stdout and stderr in
// full. No timeout is applied; cancelling ctx kills the process.
func (r *Runner) Run(ctx context.Context, cmd buildsys.Command) (*Result, error) {
	if len(cmd) == 0 {
		return nil, &LaunchError{Err: errors.New("empty command")}
	}
	name, args := cmd.Name(), cmd.Args()
	if r.Shell != "" {
		name, args = r.Shell, []string{"-c", cmd.String()}
	}

	c := execabs.CommandContext(ctx, name, args...)
	c.Dir = r.Dir
	if len(r.Env) > 0 {
		c.Env = mergeEnv(os.Environ(), r.Env)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	log.Debugf("build: %s", cmd)
	if err := c.Start(); err != nil {
		return nil, &LaunchError{Name: name, Err: err}
	}

	exitCode := 0
	if err := c.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("build %s: %w", cmd.Name(), ctxErr)
		}
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return nil, &LaunchError{Name: name, Err: err}
		}
		exitCode = ee.ExitCode()
	}

	if r.Shell != "" && (exitCode == shellNotFound || exitCode == shellNotExecutable) {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = fmt.Sprintf("exit status %d", exitCode)
		}
		return nil, &LaunchError{Name: cmd.Name(), Err: errors.New(msg)}
	}

	log.Debugf("build: %s exited with %d", cmd.Name(), exitCode)
	return &Result{
		Command:  cmd,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Hints:    Hints(stderr.String()),
	}, nil
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
