// Package report aggregates batch results: counts, the shared error log,
// terminal progress and the run summary.
package report

import (
	"sort"
	"sync"
	"time"

	vlog "github.com/futureCreator/qcflow/internal/log"
	"github.com/futureCreator/qcflow/internal/run"
	"github.com/futureCreator/qcflow/internal/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Counts is the aggregate outcome of a batch.
type Counts struct {
	Succeeded int
	Failed    int
	Total     int
}

// Aggregator is the single fan-in point for results. Every Failure gets
// exactly one error log record; write problems are logged, never raised.
type Aggregator struct {
	mu      sync.Mutex
	log     *ErrorLog
	display *Display
	now     func() time.Time
	results []types.Result
	counts  Counts
}

// NewAggregator builds an aggregator. display may be nil.
func NewAggregator(log *ErrorLog, display *Display) *Aggregator {
	return &Aggregator{log: log, display: display, now: time.Now}
}

// Add records one result.
func (a *Aggregator) Add(res types.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.results = append(a.results, res)
	a.counts.Total++
	if res.OK() {
		a.counts.Succeeded++
	} else {
		a.counts.Failed++
		if a.log != nil {
			if err := a.log.Append(RecordOf(res, a.now())); err != nil {
				vlog.Error("failed to append error log", "item", res.Item.Name, "err", err)
			}
		}
	}
	for _, w := range res.Warnings {
		vlog.Warn(w, "item", res.Item.Name)
	}
	if a.display != nil {
		a.display.Item(res, a.counts.Total)
	}
}

// Counts returns the totals so far.
func (a *Aggregator) Counts() Counts {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts
}

// Results returns all results ordered by item id.
func (a *Aggregator) Results() []types.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.Result, len(a.results))
	copy(out, a.results)
	sort.Slice(out, func(i, j int) bool { return out[i].Item.ID < out[j].Item.ID })
	return out
}

// Timing computes wall-time statistics over all results, nil when empty.
func (a *Aggregator) Timing() *run.Timing {
	a.mu.Lock()
	defer a.mu.Unlock()
	return timing(a.results)
}

func timing(results []types.Result) *run.Timing {
	if len(results) == 0 {
		return nil
	}
	xs := make([]float64, len(results))
	for i, r := range results {
		xs[i] = r.Duration.Seconds()
	}
	sort.Float64s(xs)
	return &run.Timing{
		Mean:   stat.Mean(xs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
		Max:    floats.Max(xs),
		Total:  floats.Sum(xs),
	}
}

// Finish writes counts, timing and per-item records into the run's
// metadata and marks it completed.
func (a *Aggregator) Finish(r *run.Run) error {
	results := a.Results()
	counts := a.Counts()

	r.Meta.Succeeded = counts.Succeeded
	r.Meta.Failed = counts.Failed
	r.Meta.Total = counts.Total
	r.Meta.Timing = timing(results)
	r.Meta.Items = make([]run.ItemRecord, 0, len(results))
	for _, res := range results {
		r.Meta.Items = append(r.Meta.Items, run.RecordOf(res))
	}
	return r.Complete(a.now())
}
