package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the user's choices from the init wizard.
type WizardResult struct {
	Name         string
	Region       Region
	NodeCount    int
	InstanceType string
	Database     bool
	Monitoring   bool
	GitOpsRepo   string
}

// RunWizard runs the interactive configuration wizard.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		// Defaults
		Region:       RegionEUCentral1,
		NodeCount:    2,
		InstanceType: "t3.large",
	}

	form := huh.NewForm(
		// Cluster identity
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster name").
				Description("A unique name for your platform (DNS-safe, lowercase)").
				Placeholder("my-platform").
				Value(&result.Name).
				Validate(validateWizardName),
		),

		// Region selection
		huh.NewGroup(
			huh.NewSelect[Region]().
				Title("Region").
				Description("AWS region the platform is provisioned in").
				Options(
					huh.NewOption("Frankfurt (eu-central-1)", RegionEUCentral1),
					huh.NewOption("Ireland (eu-west-1)", RegionEUWest1),
					huh.NewOption("Stockholm (eu-north-1)", RegionEUNorth1),
					huh.NewOption("N. Virginia (us-east-1)", RegionUSEast1),
					huh.NewOption("Ohio (us-east-2)", RegionUSEast2),
					huh.NewOption("Oregon (us-west-2)", RegionUSWest2),
					huh.NewOption("Singapore (ap-southeast-1)", RegionAPSoutheast1),
					huh.NewOption("Mumbai (ap-south-1)", RegionAPSouth1),
				).
				Value(&result.Region),
		),

		// Worker configuration
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Number of worker nodes").
				Description("Initial node count; the autoscaler can grow the group later").
				Options(
					huh.NewOption("1 node", 1),
					huh.NewOption("2 nodes", 2),
					huh.NewOption("3 nodes", 3),
					huh.NewOption("5 nodes", 5),
				).
				Value(&result.NodeCount),

			huh.NewSelect[string]().
				Title("Instance type").
				Description("EC2 instance type for worker nodes").
				Options(
					huh.NewOption("t3.medium - 2 vCPU, 4GB RAM", "t3.medium"),
					huh.NewOption("t3.large - 2 vCPU, 8GB RAM", "t3.large"),
					huh.NewOption("m7g.large - 2 vCPU, 8GB RAM (Graviton)", "m7g.large"),
					huh.NewOption("m7g.xlarge - 4 vCPU, 16GB RAM (Graviton)", "m7g.xlarge"),
				).
				Value(&result.InstanceType),
		),

		// Platform services
		huh.NewGroup(
			huh.NewConfirm().
				Title("Provision a PostgreSQL database?").
				Description("A managed RDS instance, encrypted with the platform key").
				Value(&result.Database),

			huh.NewConfirm().
				Title("Install the monitoring stack?").
				Description("kube-prometheus-stack with Grafana dashboards").
				Value(&result.Monitoring),
		),

		// Optional GitOps repository
		huh.NewGroup(
			huh.NewInput().
				Title("GitOps repository (optional)").
				Description("Git URL ArgoCD syncs applications from. Leave empty to skip.").
				Placeholder("https://github.com/org/platform-apps").
				Value(&result.GitOpsRepo).
				Validate(validateWizardRepoURL),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToConfig converts the wizard result to a Config. Defaults are not applied;
// callers go through ApplyDefaults as with file-loaded configs.
func (r *WizardResult) ToConfig() *Config {
	cfg := &Config{
		Name:   r.Name,
		Region: r.Region,
		NodeGroups: []NodeGroup{
			{
				Name:         "workers",
				InstanceType: r.InstanceType,
				Min:          r.NodeCount,
				Desired:      r.NodeCount,
				Max:          r.NodeCount * 3,
			},
		},
	}

	if r.Database {
		cfg.Database = &Database{}
	}
	if r.Monitoring {
		enabled := true
		cfg.Addons.Monitoring = &enabled
	}
	if r.GitOpsRepo != "" {
		cfg.GitOps = &GitOps{RepoURL: r.GitOpsRepo}
	}

	return cfg
}

// validateWizardName validates the cluster name as it is typed.
func validateWizardName(s string) error {
	if s == "" {
		return fmt.Errorf("cluster name is required")
	}
	if !isValidDNSName(s) {
		return fmt.Errorf("name must be lowercase letters, numbers, and hyphens, starting with a letter")
	}
	return nil
}

// validateWizardRepoURL validates the optional repository URL.
func validateWizardRepoURL(s string) error {
	if s == "" {
		return nil // Optional
	}
	if !strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "git@") && !strings.HasPrefix(s, "ssh://") {
		return fmt.Errorf("repository URL must start with https://, ssh:// or git@")
	}
	return nil
}

// Summary returns a one-line description of the wizard result for
// confirmation output.
func (r *WizardResult) Summary() string {
	parts := []string{
		r.Name,
		string(r.Region),
		strconv.Itoa(r.NodeCount) + "x " + r.InstanceType,
	}
	if r.Database {
		parts = append(parts, "postgres")
	}
	if r.Monitoring {
		parts = append(parts, "monitoring")
	}
	return strings.Join(parts, ", ")
}
