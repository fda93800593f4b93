package commands

import (
	"github.com/spf13/cobra"

	"github.com/ibraheemcisse/ekstack/cmd/ekstack/handlers"
)

// Cost returns the cost estimate command.
func Cost() *cobra.Command {
	var (
		configPath string
		pricesPath string
		jsonOutput bool
		compact    bool
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Estimate the monthly cost of the configured platform",
		Long: `Cost estimates what the configured platform costs per month.

Line items cover the EKS control plane, node groups, NAT gateways, the
load balancer, and the database. Prices come from a built-in table of
on-demand us-east-1 rates; use --prices to load region- or
discount-adjusted rates from a YAML file.

The estimate excludes data transfer, EBS volumes beyond node roots, and
CloudWatch ingestion, which depend on workload behavior.

Examples:
  ekstack cost
  ekstack cost --compact
  ekstack cost --json
  ekstack cost --prices eu-west-1.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Cost(cmd.Context(), handlers.CostOptions{
				ConfigPath: configPath,
				PricesPath: pricesPath,
				JSON:       jsonOutput,
				Compact:    compact,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the platform configuration file")
	cmd.Flags().StringVar(&pricesPath, "prices", "", "Path to a price override YAML file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the estimate as JSON")
	cmd.Flags().BoolVar(&compact, "compact", false, "One-line output")

	return cmd
}
