// Package batch fans work items out to a bounded pool of workers, each
// running the full pipeline for one item, and fans the results back in.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	vlog "github.com/futureCreator/qcflow/internal/log"
	"github.com/futureCreator/qcflow/internal/pipeline"
	"github.com/futureCreator/qcflow/internal/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// SingleThreadEnv pins the internal thread pools of common QC tools to one
// thread, so parallel workers do not oversubscribe the CPUs.
var SingleThreadEnv = []string{
	"OMP_NUM_THREADS=1",
	"MKL_NUM_THREADS=1",
	"OPENBLAS_NUM_THREADS=1",
}

// Layout allocates per-item output directories.
type Layout interface {
	ItemDir(item types.WorkItem, overwrite bool) (string, error)
}

// Sink receives every result exactly once. Add is only ever called from
// the goroutine running Execute, so implementations need no locking for
// the executor's sake.
type Sink interface {
	Add(res types.Result)
}

// Executor is the run-scoped context shared by all workers: the read-only
// pipeline, the output layout and the result sink.
type Executor struct {
	Pipeline     *pipeline.Pipeline
	Layout       Layout
	Sink         Sink
	Workers      int
	SingleThread bool
	Overwrite    bool
}

// InputName is the file holding an item's descriptor, the first
// placeholder value of its pipeline.
func InputName(item types.WorkItem) string {
	return item.Name + ".smi"
}

// Execute runs the pipeline for every item with at most Workers items in
// flight and returns one Result per item, in completion order. It never
// fails: item errors, including crashed workers, come back as Failure
// results. There is no mid-flight cancellation; ctx only reaches the
// tool processes.
func (e *Executor) Execute(ctx context.Context, items []types.WorkItem) []types.Result {
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	if len(items) > 0 && workers > len(items) {
		workers = len(items)
	}

	ppl := *e.Pipeline
	if e.SingleThread && workers > 1 {
		ppl.Env = append(slices.Clip(ppl.Env), SingleThreadEnv...)
	}

	vlog.Info("batch start", "items", len(items), "workers", workers, "pipeline", ppl.Name, "steps", len(ppl.Steps))

	results := make(chan types.Result)
	go func() {
		var g errgroup.Group
		g.SetLimit(workers)
		for _, item := range items {
			// Go blocks while all workers are busy, so items queue here
			g.Go(func() error {
				results <- e.process(ctx, &ppl, item)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	collected := make([]types.Result, 0, len(items))
	for res := range results {
		if e.Sink != nil {
			e.Sink.Add(res)
		}
		collected = append(collected, res)
	}
	return collected
}

// process runs one item. A panic anywhere below is converted into a
// Failure for that item only.
func (e *Executor) process(ctx context.Context, ppl *pipeline.Pipeline, item types.WorkItem) (res types.Result) {
	start := time.Now()
	dir := ""
	defer func() {
		if r := recover(); r != nil {
			vlog.Error("worker crashed", "item", item.Name, "panic", r)
			res = types.Result{
				Item:       item,
				Status:     types.Failure,
				Dir:        dir,
				Error:      errors.Wrap(types.ErrWorkerCrash, fmt.Sprint(r)).Error(),
				FailedStep: types.NoStep,
				StartedAt:  start,
				Duration:   time.Since(start),
			}
		}
	}()

	failed := func(err error) types.Result {
		vlog.Warn("item not started", "item", item.Name, "err", err)
		r := types.Failed(item, dir, types.NoStep, "", err.Error())
		r.StartedAt = start
		r.Duration = time.Since(start)
		return r
	}

	var err error
	dir, err = e.Layout.ItemDir(item, e.Overwrite)
	if err != nil {
		return failed(err)
	}
	if err := os.WriteFile(filepath.Join(dir, InputName(item)), []byte(item.Descriptor+"\n"), 0644); err != nil {
		return failed(errors.Wrapf(types.ErrFilesystem, "writing input for %s: %v", item.Name, err))
	}

	return ppl.Run(ctx, item, dir, InputName(item))
}
