package commands

import (
	"github.com/spf13/cobra"

	"github.com/ibraheemcisse/ekstack/cmd/ekstack/handlers"
)

// Apply returns the apply command.
//
// Apply reconciles the platform towards the configuration: it provisions
// the AWS infrastructure, installs the cluster add-ons, bootstraps
// GitOps, and writes a kubeconfig. Every operation is idempotent, so
// re-running apply after a failure resumes where the previous run
// stopped.
func Apply() *cobra.Command {
	var (
		configPath     string
		kubeconfigPath string
		plain          bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Provision the platform and install add-ons",
		Long: `Apply provisions the platform described in the configuration file.

The apply sequence:
  1. Network (VPC, subnets, NAT, security groups)
  2. KMS key, CloudWatch log group, ECR repositories
  3. IAM roles and the EC2 key pair
  4. EKS cluster and the OIDC provider for IRSA
  5. Managed node groups
  6. RDS Postgres (when configured)
  7. Cluster add-ons via the embedded Helm SDK
  8. ArgoCD and GitOps applications (when configured)

Re-running apply is safe: existing resources are adopted and only the
missing pieces are created.

Examples:
  # Apply using ekstack.yaml from the current directory
  ekstack apply

  # Apply a specific configuration
  ekstack apply -c platform.yaml

  # Plain log output instead of the progress display
  ekstack apply --plain`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), handlers.ApplyOptions{
				ConfigPath:     configPath,
				KubeconfigPath: kubeconfigPath,
				Plain:          plain,
				Verbose:        verboseFlag(cmd),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the platform configuration file")
	cmd.Flags().StringVar(&kubeconfigPath, "kubeconfig", "", "Where to write the cluster kubeconfig (default ~/.kube/ekstack-<name>.yaml)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable the interactive progress display")

	return cmd
}
