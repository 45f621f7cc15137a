// Package pipeline loads workflow definitions and runs them for one work item.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/futureCreator/qcflow/internal/executor"
	vlog "github.com/futureCreator/qcflow/internal/log"
	"github.com/futureCreator/qcflow/internal/types"
)

// ShellExecutor is the executor name of plain command templates.
const ShellExecutor = "shell"

// Pipeline is an ordered list of steps and the executors that run them.
// It is shared read-only by all workers.
type Pipeline struct {
	Name      string
	Steps     []types.Step
	Executors map[string]executor.Executor
	Env       []string // extra environment for every tool process
}

// New builds a pipeline whose steps run through the shell executor.
func New(name string, steps []types.Step) *Pipeline {
	return &Pipeline{
		Name:      name,
		Steps:     steps,
		Executors: map[string]executor.Executor{ShellExecutor: &executor.ShellExecutor{}},
	}
}

// Prepend puts step in front of the existing steps, registering exec
// under the step's executor name.
func (p *Pipeline) Prepend(step types.Step, exec executor.Executor) {
	p.Steps = append([]types.Step{step}, p.Steps...)
	if exec != nil {
		p.Executors[step.Executor] = exec
	}
}

// LogName is the per-step log file inside an item directory.
func LogName(index int) string {
	return fmt.Sprintf("step_%d.log", index+1)
}

// Run executes the steps in order inside dir, starting with input as the
// placeholder value. It stops at the first failing step; later steps do
// not run. Failures are returned as data, never as errors.
func (p *Pipeline) Run(ctx context.Context, item types.WorkItem, dir, input string) types.Result {
	start := time.Now()
	logger := vlog.With("item", item.Name)

	finish := func(res types.Result) types.Result {
		res.StartedAt = start
		res.Duration = time.Since(start)
		return res
	}

	var warnings []string
	for i, step := range p.Steps {
		label := step.Label()
		fail := func(detail string) types.Result {
			logger.Warn("step failed", "step", i, "name", label, "detail", detail)
			res := types.Failed(item, dir, i, label, detail)
			res.Warnings = warnings
			return finish(res)
		}

		name := step.Executor
		if name == "" {
			name = ShellExecutor
		}
		exec, ok := p.Executors[name]
		if !ok {
			return fail(fmt.Sprintf("unknown executor %q", name))
		}

		logger.Debug("step start", "step", i, "name", label, "input", input)
		out, err := exec.Execute(ctx, &executor.Request{
			Step:    step,
			Item:    item,
			Dir:     dir,
			Input:   input,
			LogPath: filepath.Join(dir, LogName(i)),
			Env:     p.Env,
		})
		if err != nil {
			return fail(err.Error())
		}
		if out.ExitCode != 0 {
			return fail(out.Detail())
		}

		for _, want := range step.Expect {
			if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
				return fail(fmt.Sprintf("expected output %s not found", want))
			}
		}

		if step.Marker != "" && !strings.Contains(out.Stdout, step.Marker) && !strings.Contains(out.Stderr, step.Marker) {
			msg := fmt.Sprintf("step %d (%s): success marker %q not found", i, label, step.Marker)
			if step.Strict {
				return fail(msg)
			}
			logger.Warn("exit code 0 but success marker missing", "step", i, "marker", step.Marker)
			warnings = append(warnings, msg)
		}

		if out.Output != "" {
			input = out.Output
		}
		logger.Debug("step done", "step", i, "name", label, "duration", out.Duration)
	}

	res := types.Succeeded(item, dir)
	res.Warnings = warnings
	return finish(res)
}
