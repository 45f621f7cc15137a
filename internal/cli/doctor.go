package cli

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/futureCreator/qcflow/internal/config"
	"github.com/futureCreator/qcflow/internal/pipeline"
	"github.com/futureCreator/qcflow/internal/types"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check qcflow prerequisites and configuration",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	allOK := true

	check := func(label string, ok bool, hint string) {
		if ok {
			fmt.Fprintf(out, "✅ %s\n", label)
		} else {
			fmt.Fprintf(out, "❌ %s: %s\n", label, hint)
			allOK = false
		}
	}

	// 1. shell
	_, err := exec.LookPath("sh")
	check("sh installed", err == nil, "commands are run with sh -c")

	// 2. settings
	cfg, cfgErr := config.Load()
	check("settings loadable", cfgErr == nil, fmt.Sprintf("fix settings: %v", cfgErr))
	if cfgErr == nil {
		validateErr := cfg.Validate()
		check("settings valid", validateErr == nil, fmt.Sprintf("%v", validateErr))

		// 3. coordinate tool
		_, err = exec.LookPath(cfg.Coords.Command)
		check(cfg.Coords.Command+" installed", err == nil, "install Open Babel or set coords.command")

		// 4. pipeline document and its tools
		doc, docErr := pipeline.ParseFile(cfg.PipelineFile)
		check("pipeline document "+cfg.PipelineFile, docErr == nil, fmt.Sprintf("%v (run `qcflow init`)", docErr))
		if docErr == nil {
			steps, wfErr := doc.Workflow(cfg.Workflow)
			check("workflow "+cfg.Workflow, wfErr == nil, fmt.Sprintf("%v", wfErr))
			for _, tool := range tools(steps) {
				_, err := exec.LookPath(tool)
				check(tool+" installed", err == nil, "not found on PATH")
			}
		}
	}

	fmt.Fprintln(out)
	if allOK {
		fmt.Fprintln(out, "All checks passed. qcflow is ready.")
	} else {
		fmt.Fprintln(out, "Some checks failed. Fix the issues above before running qcflow.")
	}
	return nil
}

// tools returns the distinct first words of the step commands.
func tools(steps []types.Step) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range steps {
		fields := strings.Fields(s.Run)
		if len(fields) == 0 || seen[fields[0]] {
			continue
		}
		seen[fields[0]] = true
		out = append(out, fields[0])
	}
	return out
}
