package commands

import (
	"github.com/spf13/cobra"

	"github.com/ibraheemcisse/ekstack/cmd/ekstack/handlers"
)

// Destroy returns the destroy command.
//
// Destroy removes all platform resources from AWS in reverse dependency
// order. Configurations with deleteProtection enabled refuse to destroy
// unless --force is passed.
func Destroy() *cobra.Command {
	var (
		configPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Destroy the platform and all associated AWS resources",
		Long: `Destroy removes all platform resources from AWS.

Resources are deleted in reverse dependency order:
  - Database instance and subnet group
  - Node groups
  - EKS cluster
  - IAM roles, OIDC provider, and the EC2 key pair
  - ECR repositories
  - CloudWatch log group
  - VPC, subnets, NAT gateways, and security groups
  - KMS key (scheduled for deletion)

Only resources tagged as managed by this platform are touched.

Example:
  ekstack destroy -c ekstack.yaml

WARNING: This operation is irreversible. All cluster workloads and
database data will be lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), configPath, force)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the platform configuration file")
	cmd.Flags().BoolVar(&force, "force", false, "Destroy even when delete protection is enabled")

	return cmd
}
