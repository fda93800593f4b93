package commands

import (
	"github.com/spf13/cobra"

	"github.com/ibraheemcisse/ekstack/cmd/ekstack/handlers"
)

// Status returns the status command.
//
// Status shows the platform from two sides: the AWS view (cluster state,
// node groups, database) and the cluster view (node readiness, add-on
// deployments, ArgoCD application sync states).
func Status() *cobra.Command {
	var (
		configPath string
		jsonOutput bool
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show platform status",
		Long: `Status shows the current state of the platform.

The cloud side reports the EKS cluster (state, version, endpoint), each
managed node group with ready counts, and the database instance. When
the cluster is reachable, the cluster side adds node readiness, add-on
deployment health, and ArgoCD application sync states.

Examples:
  # One-shot status
  ekstack status

  # Machine-readable output
  ekstack status --json

  # Refresh every 5 seconds
  ekstack status --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), handlers.StatusOptions{
				ConfigPath: configPath,
				JSON:       jsonOutput,
				Watch:      watch,
				Verbose:    verboseFlag(cmd),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the platform configuration file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Continuously refresh the status")

	return cmd
}
