// Package commands defines the cobra commands for the ekstack CLI.
// Command definitions stay here; the business logic lives in the
// handlers package so it can be tested without cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// Root returns the root command with all subcommands attached.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ekstack",
		Short: "Provision an EKS platform on AWS with GitOps and load verification",
		Long: `ekstack provisions a production Kubernetes platform on AWS:
VPC networking, an EKS cluster with managed node groups, image
registries, a managed Postgres database, KMS secret encryption, and
control plane logging. After provisioning it installs cluster add-ons,
bootstraps ArgoCD for GitOps delivery, and can load-test the deployed
workloads against latency and error budgets.

Start with 'ekstack init' to create a configuration, then
'ekstack apply' to build the platform.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	// Lifecycle commands
	cmd.AddCommand(Init())
	cmd.AddCommand(Apply())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Upgrade())

	// Inspection commands
	cmd.AddCommand(Status())
	cmd.AddCommand(Doctor())
	cmd.AddCommand(Cost())

	// Verification
	cmd.AddCommand(LoadTest())

	// Utility commands
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// verboseFlag reads the persistent verbose flag from any subcommand.
func verboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}
