package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	vlog "github.com/futureCreator/qcflow/internal/log"
)

// ShellExecutor renders a step template and runs it with sh -c.
type ShellExecutor struct{}

func (e *ShellExecutor) Execute(ctx context.Context, req *Request) (*Result, error) {
	template := req.Step.Run
	if strings.TrimSpace(template) == "" {
		return nil, fmt.Errorf("shell executor: no command specified for step %q", req.Step.Label())
	}

	command := Render(template, req.Input)
	vlog.Debug("executing", "item", req.Item.Name, "command", command, "dir", req.Dir)

	res, err := Run(ctx, command, req.Dir, req.Env)
	if err != nil {
		return nil, err
	}
	res.Output = req.Step.Output

	if req.LogPath != "" {
		if err := WriteLog(req.LogPath, res); err != nil {
			vlog.Warn("failed to write step log", "path", req.LogPath, "err", err)
		}
	}
	return res, nil
}

// Run executes command in dir and waits for it to exit. It fails only
// when the process cannot be started; a non-zero exit is reported in
// the Result.
func Run(ctx context.Context, command, dir string, env []string) (*Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("starting %q: %w", command, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &Result{
		Command:  command,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}, nil
}

// WriteLog stores the command line, stdout and stderr of res verbatim.
func WriteLog(path string, res *Result) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "$ %s\n", res.Command)
	sb.WriteString("\n--- stdout ---\n")
	sb.WriteString(res.Stdout)
	sb.WriteString("\n--- stderr ---\n")
	sb.WriteString(res.Stderr)
	fmt.Fprintf(&sb, "\n--- exit code %d (%.1fs) ---\n", res.ExitCode, res.Duration.Seconds())
	return os.WriteFile(path, []byte(sb.String()), 0644)
}
