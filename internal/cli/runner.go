package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/futureCreator/qcflow/internal/batch"
	"github.com/futureCreator/qcflow/internal/config"
	"github.com/futureCreator/qcflow/internal/coords"
	vlog "github.com/futureCreator/qcflow/internal/log"
	"github.com/futureCreator/qcflow/internal/pipeline"
	"github.com/futureCreator/qcflow/internal/project"
	"github.com/futureCreator/qcflow/internal/report"
	"github.com/futureCreator/qcflow/internal/run"
	"github.com/futureCreator/qcflow/internal/source"
	"github.com/futureCreator/qcflow/internal/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// batchOptions are the flags shared by calc and coords.
type batchOptions struct {
	tag          string
	workflow     string
	pipelineFile string
	workers      int
	noOptimize   bool
	forceField   string
	optSteps     int
	quiet        bool
	logLevel     string
	overwrite    bool

	coordsOnly bool
}

func (o *batchOptions) register(fs *pflag.FlagSet, withWorkflow bool) {
	fs.StringVarP(&o.tag, "tag", "t", "", "Tag appended to the output directory name")
	fs.IntVarP(&o.workers, "workers", "w", 0, "Maximum parallel workers (0 = one per CPU)")
	fs.BoolVar(&o.noOptimize, "no-optimize", false, "Skip force-field optimization of generated coordinates")
	fs.StringVar(&o.forceField, "force-field", "", "Force field for optimization (MMFF94, UFF, GAFF)")
	fs.IntVar(&o.optSteps, "optimization-steps", 0, "Force-field optimization steps")
	fs.BoolVarP(&o.quiet, "quiet", "q", false, "Suppress per-molecule progress lines")
	fs.StringVar(&o.logLevel, "log-level", "", "Console log level (debug, info, warn, error)")
	fs.BoolVar(&o.overwrite, "overwrite", false, "Reuse item directories that already hold files")
	if withWorkflow {
		fs.StringVar(&o.workflow, "workflow", "", "Workflow key in the pipeline document")
		fs.StringVarP(&o.pipelineFile, "config", "c", "", "Pipeline document (default from settings)")
	}
}

// apply overrides settings with the flags that were set explicitly.
func (o *batchOptions) apply(cfg *config.Config, fs *pflag.FlagSet) {
	if fs.Changed("workers") {
		cfg.MaxWorkers = o.workers
	}
	if fs.Changed("no-optimize") {
		cfg.Coords.Optimize = !o.noOptimize
	}
	if fs.Changed("force-field") {
		cfg.Coords.ForceField = o.forceField
	}
	if fs.Changed("optimization-steps") {
		cfg.Coords.Steps = o.optSteps
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if o.workflow != "" {
		cfg.Workflow = o.workflow
	}
	if o.pipelineFile != "" {
		cfg.PipelineFile = o.pipelineFile
	}
}

// runBatch is the shared entry point for calc and coords. Only fatal
// errors are returned; item failures end up in the error log and the
// summary.
func runBatch(ctx context.Context, out io.Writer, input string, opts *batchOptions, flags *pflag.FlagSet) error {
	started := time.Now()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(types.ErrConfiguration, err.Error())
	}
	opts.apply(cfg, flags)
	if err := cfg.Validate(); err != nil {
		return errors.Wrapf(types.ErrConfiguration, "invalid settings: %v", err)
	}
	vlog.Init(cfg.LogLevel, nil)

	// Read input
	src, err := source.Resolve(input, cfg.InputDir)
	if err != nil {
		return err
	}
	items, err := src.ReadAll()
	if err != nil {
		return err
	}

	// Build pipeline
	gen := coords.NewGenerator(cfg.Coords)
	workflow := "coords"
	ppl := pipeline.New(workflow, nil)
	if !opts.coordsOnly {
		doc, created, err := pipeline.LoadOrCreate(cfg.PipelineFile)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(out, "Created default pipeline document %s\n", cfg.PipelineFile)
		}
		steps, err := doc.Workflow(cfg.Workflow)
		if err != nil {
			return err
		}
		workflow = cfg.Workflow
		ppl = pipeline.New(workflow, steps)
	}
	ppl.Prepend(gen.Step(), gen)

	// Create run directory
	r, err := run.New(cfg.OutputDir, src.Stem(), opts.tag, started)
	if err != nil {
		return err
	}
	logFile, err := os.OpenFile(r.FilePath(run.LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(types.ErrFilesystem, "opening run log: %v", err)
	}
	defer logFile.Close()
	vlog.Init(cfg.LogLevel, logFile)

	workers := cfg.Workers()
	if workers > len(items) && len(items) > 0 {
		workers = len(items)
	}
	r.Meta.Input = src.Path
	r.Meta.Workflow = workflow
	r.Meta.Workers = workers
	if !opts.coordsOnly {
		// Record which revision of the pipeline document produced the run
		gitInfo, err := project.CollectGitInfo(filepath.Dir(cfg.PipelineFile))
		if err != nil {
			vlog.Debug("pipeline document not under git", "err", err)
		} else {
			r.Meta.Git = gitInfo
		}
	}
	if err := r.SaveMeta(); err != nil {
		return errors.Wrapf(types.ErrFilesystem, "writing %s: %v", run.MetaFile, err)
	}
	vlog.Info("run started", "run", r.ID, "dir", r.Dir, "input", src.Path, "items", len(items), "workflow", workflow)

	disp := report.NewDisplay(src.Stem(), len(items), opts.quiet)
	disp.SetOutput(out)
	disp.Header(workers)

	errLog := report.NewErrorLog(r.ErrorLogPath())
	agg := report.NewAggregator(errLog, disp)

	exec := &batch.Executor{
		Pipeline:     ppl,
		Layout:       r,
		Sink:         agg,
		Workers:      workers,
		SingleThread: cfg.SingleThreadTools,
		Overwrite:    opts.overwrite,
	}
	exec.Execute(ctx, items)

	if err := errLog.Close(); err != nil {
		vlog.Error("closing error log", "err", err)
	}
	if err := agg.Finish(r); err != nil {
		vlog.Error("writing run metadata", "err", err)
	}

	counts := agg.Counts()
	vlog.Info("run finished", "run", r.ID, "succeeded", counts.Succeeded, "failed", counts.Failed)
	disp.Summary(counts, time.Since(started), r.Dir, errLog.Path())
	return nil
}

func newBatchCommand(use, short string, opts *batchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), cmd.OutOrStdout(), args[0], opts, cmd.Flags())
		},
	}
	opts.register(cmd.Flags(), !opts.coordsOnly)
	_ = cmd.MarkFlagRequired("tag")
	return cmd
}
