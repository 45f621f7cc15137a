package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/futureCreator/qcflow/internal/assets"
	"github.com/futureCreator/qcflow/internal/config"
	"github.com/futureCreator/qcflow/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	initMinimal bool
	initProject bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the qcflow settings file and a default pipeline document",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initMinimal, "minimal", false, "Write settings without comments")
	initCmd.Flags().BoolVar(&initProject, "project", false, "Write settings to ./.qcflow instead of the home directory")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	configPath := filepath.Join(config.Dir, "config.yaml")
	if !initProject {
		p, err := config.UserPath()
		if err != nil {
			return fmt.Errorf("getting home dir: %w", err)
		}
		configPath = p
	}

	name := "config.yaml"
	if initMinimal {
		name = "config.minimal.yaml"
	}
	if err := writeTemplate(out, name, configPath); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := writeTemplate(out, pipeline.TemplateName, cfg.PipelineFile); err != nil {
		return err
	}

	fmt.Fprintln(out, "Edit the pipeline document to change the commands run for every molecule.")
	return nil
}

// writeTemplate copies an embedded template to path unless path exists.
func writeTemplate(out io.Writer, name, path string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "Already exists: %s\n", path)
		return nil
	}
	content, err := assets.LoadTemplate(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}
