package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/futureCreator/qcflow/internal/config"
	"github.com/futureCreator/qcflow/internal/run"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var statsDir string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show run statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsDir, "output-dir", "o", "", "Directory holding the runs (default from settings)")
}

func runStats(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	runsDir := statsDir
	if runsDir == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		runsDir = cfg.OutputDir
	}

	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "No runs found.")
			return nil
		}
		return fmt.Errorf("reading runs dir: %w", err)
	}

	type runStat struct {
		id   string
		meta run.Meta
	}

	var stats []runStat
	for _, e := range entries {
		if !e.IsDir() || e.Name() == run.LatestLink {
			continue
		}
		r, err := run.Open(filepath.Join(runsDir, e.Name()))
		if err != nil {
			continue
		}
		stats = append(stats, runStat{id: e.Name(), meta: r.Meta})
	}

	if len(stats) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	// Sort by started_at descending
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].meta.StartedAt.After(stats[j].meta.StartedAt)
	})

	var completed, molecules, succeeded int
	var means, weights []float64
	for _, s := range stats {
		if s.meta.Status == "completed" {
			completed++
		}
		molecules += s.meta.Total
		succeeded += s.meta.Succeeded
		if s.meta.Timing != nil && s.meta.Total > 0 {
			means = append(means, s.meta.Timing.Mean)
			weights = append(weights, float64(s.meta.Total))
		}
	}

	fmt.Fprintf(out, "Runs: %d total, %d completed, %d unfinished\n", len(stats), completed, len(stats)-completed)
	if molecules > 0 {
		fmt.Fprintf(out, "Molecules: %d processed, %d succeeded (%.1f%%)\n", molecules, succeeded, 100*float64(succeeded)/float64(molecules))
	}
	if len(means) > 0 {
		fmt.Fprintf(out, "Average time per molecule: %.1fs\n", stat.Mean(means, weights))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-44s %-10s %-10s %s\n", "Run", "Status", "OK/Total", "Workflow")
	fmt.Fprintln(out, strings.Repeat("─", 76))
	for _, s := range stats {
		fmt.Fprintf(out, "%-44s %-10s %-10s %s\n",
			s.id, s.meta.Status, fmt.Sprintf("%d/%d", s.meta.Succeeded, s.meta.Total), s.meta.Workflow)
	}
	return nil
}
