package types

import "time"

// Status is the outcome of one work item.
type Status int

const (
	Success Status = iota
	Failure
)

func (s Status) String() string {
	if s == Success {
		return "success"
	}
	return "failure"
}

// NoStep marks a Result whose failure did not happen inside a step.
const NoStep = -1

// Result is the outcome of running the pipeline for one WorkItem.
// Workers create it once and never change it afterwards.
type Result struct {
	Item       WorkItem
	Status     Status
	Dir        string
	Error      string
	FailedStep int // 0-based index, NoStep when not applicable
	StepName   string
	Warnings   []string
	StartedAt  time.Time
	Duration   time.Duration
}

// Succeeded builds a Success result.
func Succeeded(item WorkItem, dir string) Result {
	return Result{Item: item, Status: Success, Dir: dir, FailedStep: NoStep}
}

// Failed builds a Failure result for a step-level failure.
func Failed(item WorkItem, dir string, step int, stepName, detail string) Result {
	return Result{
		Item:       item,
		Status:     Failure,
		Dir:        dir,
		Error:      detail,
		FailedStep: step,
		StepName:   stepName,
	}
}

// OK reports whether the item succeeded.
func (r Result) OK() bool { return r.Status == Success }
