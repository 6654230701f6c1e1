// Package cli implements the student portal command-line interface using
// Cobra. Commands are thin view glue: all data access goes through the
// session service and the gateways.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Student grades and corrections from the terminal",
	Long: `portal is the command-line client for the student portal.
Log in, view grades, and submit grade-correction requests.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newRegisterCmd(),
		newWhoamiCmd(),
		newGradesCmd(),
		newGPACmd(),
		newCorrectionsCmd(),
		newSubmitCorrectionCmd(),
		newCanCorrectCmd(),
	)
}
