package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/futureCreator/qcflow/internal/types"
)

// Executor runs a single pipeline step.
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Result, error)
}

// Request carries all inputs for a step execution.
type Request struct {
	Step    types.Step
	Item    types.WorkItem
	Dir     string   // working directory, the item's output directory
	Input   string   // substituted for the placeholder
	LogPath string   // per-step log file, skipped when empty
	Env     []string // appended to the process environment
}

// Result holds the outcome of a step execution. A non-zero ExitCode is a
// step failure, not an Execute error.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Output   string // file produced for later steps, relative to Dir
}

// detailLines is how much of a failing tool's output ends up in error reports.
const detailLines = 20

// Detail summarizes a failed execution: the exit code and the tail of
// stderr, or of stdout when stderr is empty.
func (r *Result) Detail() string {
	text := r.Stderr
	if strings.TrimSpace(text) == "" {
		text = r.Stdout
	}
	tail := Tail(text, detailLines)
	if tail == "" {
		return fmt.Sprintf("exit code %d", r.ExitCode)
	}
	return fmt.Sprintf("exit code %d: %s", r.ExitCode, tail)
}

// Tail returns the last n non-empty lines of s joined by newlines.
func Tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var kept []string
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if l := strings.TrimRight(lines[i], "\r "); l != "" {
			kept = append(kept, l)
		}
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "\n")
}
