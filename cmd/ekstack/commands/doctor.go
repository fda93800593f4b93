package commands

import (
	"github.com/spf13/cobra"

	"github.com/ibraheemcisse/ekstack/cmd/ekstack/handlers"
)

// Doctor returns the doctor command.
//
// Doctor runs the pre-flight diagnostics: client tools, configuration
// validity, AWS credentials, and which platform resources already exist.
// It is the place to look when apply refuses to start or a previous run
// was interrupted.
func Doctor() *cobra.Command {
	var (
		configPath string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the environment and platform state",
		Long: `Doctor checks everything apply depends on:

  - Client tools (aws CLI required, kubectl recommended)
  - Configuration file validity
  - AWS credentials and the caller identity
  - Existing platform resources (network, cluster, database)

A partially provisioned platform is reported as such; re-running
'ekstack apply' resumes from where the interrupted run stopped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the platform configuration file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output diagnostics as JSON")

	return cmd
}
