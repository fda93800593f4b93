package commands

import (
	"github.com/spf13/cobra"

	"github.com/ibraheemcisse/ekstack/cmd/ekstack/handlers"
)

// Init returns the command for interactively creating a platform
// configuration.
//
// The wizard asks for the essentials (name, region, node shape, database,
// monitoring, GitOps repository) and writes a configuration file with
// everything else defaulted.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a platform configuration",
		Long: `Init guides you through creating a platform configuration file.

The wizard asks about:

  - Platform identity (name and AWS region)
  - Worker node shape (instance type and count)
  - Managed Postgres database
  - Monitoring stack (kube-prometheus-stack)
  - GitOps repository (optional)

The generated file carries only the values you chose; defaults for
networking, encryption, logging, and add-ons are applied at load time
and can be overridden by editing the file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "ekstack.yaml", "Output file path")

	return cmd
}
