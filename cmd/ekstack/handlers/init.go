package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

// Factory function variables for init - replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the interactive configuration wizard.
	runWizard = config.RunWizard

	// saveConfig writes the configuration to a file.
	saveConfig = config.Save
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := result.ToConfig()

	if err := saveConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)

	return nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("ekstack - EKS platform on AWS")
	fmt.Println("=============================")
	fmt.Println()
	fmt.Println("This wizard creates a platform configuration with sensible defaults.")
	fmt.Println("Networking, encryption, logging, and add-ons are defaulted; edit the")
	fmt.Println("generated file to change them.")
	fmt.Println()
}

// printInitSuccess prints the summary and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Platform Summary")
	fmt.Println("----------------")
	fmt.Printf("  Name:    %s\n", cfg.Name)
	fmt.Printf("  Region:  %s\n", cfg.Region)
	for _, group := range cfg.NodeGroups {
		fmt.Printf("  Nodes:   %d x %s (%s)\n", group.Min, group.InstanceType, group.Name)
	}
	if cfg.HasDatabase() {
		fmt.Println("  Database: managed Postgres")
	}
	if cfg.HasGitOps() {
		fmt.Printf("  GitOps:  %s\n", cfg.GitOps.RepoURL)
	}
	fmt.Println()

	fmt.Println("Included")
	fmt.Println("--------")
	fmt.Println("  - VPC with public/private subnets across availability zones")
	fmt.Println("  - KMS envelope encryption for cluster secrets")
	fmt.Println("  - Control plane logs shipped to CloudWatch")
	fmt.Println("  - IAM roles for service accounts (IRSA)")
	fmt.Println("  - AWS Load Balancer Controller, cluster autoscaler, metrics-server")
	if cfg.HasGitOps() {
		fmt.Println("  - ArgoCD GitOps bootstrap")
	}
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Configure AWS credentials (environment, profile, or SSO)")
	fmt.Println()
	fmt.Printf("  2. Review %s if needed\n", outputPath)
	fmt.Println()
	fmt.Println("  3. Create the platform:")
	fmt.Println("     ekstack apply")
	fmt.Println()
}
