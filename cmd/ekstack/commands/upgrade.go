package commands

import (
	"github.com/spf13/cobra"

	"github.com/ibraheemcisse/ekstack/cmd/ekstack/handlers"
)

// Upgrade returns the command for upgrading the Kubernetes version.
//
// The upgrade order maintains availability: the control plane first,
// then each node group as a rolling EKS managed update, then the managed
// core add-ons, and finally the Helm-installed add-ons.
//
// Optional flags:
//
//	--version: target Kubernetes version, overriding the config
//	--dry-run: print the upgrade plan without executing
//	--skip-addons: leave the Helm-installed add-ons untouched
func Upgrade() *cobra.Command {
	var (
		configPath string
		version    string
		dryRun     bool
		skipAddons bool
	)

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade the Kubernetes version of the cluster",
		Long: `Upgrade moves the cluster to the Kubernetes version in the
configuration (or --version).

The upgrade process:
  1. Upgrade the EKS control plane and wait for it to become active
  2. Upgrade each managed node group (EKS rolls nodes gradually,
     respecting pod disruption budgets)
  3. Refresh the managed core add-ons (vpc-cni, kube-proxy, coredns)
  4. Re-run the Helm add-on installs so their charts match the new
     cluster version

Use --dry-run to see the plan without making changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Upgrade(cmd.Context(), handlers.UpgradeOptions{
				ConfigPath: configPath,
				Version:    version,
				DryRun:     dryRun,
				SkipAddons: skipAddons,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the platform configuration file")
	cmd.Flags().StringVar(&version, "version", "", "Target Kubernetes version, overriding the config")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the upgrade plan without executing")
	cmd.Flags().BoolVar(&skipAddons, "skip-addons", false, "Skip re-installing the Helm add-ons")

	return cmd
}
