package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/futureCreator/qcflow/internal/extract"
	"github.com/spf13/cobra"
)

var (
	extractOutput       string
	extractCompleteOnly bool
)

var extractCmd = &cobra.Command{
	Use:          "extract <run-dir>",
	Short:        "Collect IP, EA and total energy from a run into CSV",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "CSV file to write (default stdout)")
	extractCmd.Flags().BoolVar(&extractCompleteOnly, "complete-only", false, "Skip molecules lacking IP or EA")
}

func runExtract(cmd *cobra.Command, args []string) error {
	rows, err := extract.Scan(args[0], extractCompleteOnly)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	info := cmd.ErrOrStderr()
	if extractOutput != "" {
		f, err := os.Create(extractOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", extractOutput, err)
		}
		defer f.Close()
		w = f
		info = cmd.OutOrStdout()
	}
	if err := extract.WriteCSV(w, rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	fmt.Fprintf(info, "%d molecules\n", len(rows))
	for _, s := range extract.Summarize(rows) {
		fmt.Fprintf(info, "  %-16s n=%-5d range %.4f .. %.4f  mean %.4f\n", s.Property, s.Count, s.Min, s.Max, s.Mean)
	}
	if extractOutput != "" {
		fmt.Fprintf(info, "Saved to %s\n", extractOutput)
	}
	return nil
}
