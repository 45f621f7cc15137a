package cli

import (
	"fmt"

	"github.com/futureCreator/qcflow/pkg/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "qcflow",
	Short: "Batch quantum-chemistry pipeline CLI",
	Long: `qcflow turns a list of SMILES strings into 3D structures and runs a
configurable chain of quantum-chemistry tools on every molecule in parallel.`,
	SilenceErrors: true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(coordsCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(doctorCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "qcflow %s\n", version.Version)
	},
}
