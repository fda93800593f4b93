// Package handlers implements the business logic for the CLI commands.
// Handlers are framework-agnostic: they take plain arguments and return
// errors, so they can be tested without cobra. Collaborators are created
// through package-level factory variables that tests replace.
package handlers

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/mattn/go-isatty"

	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/kube"
	"github.com/ibraheemcisse/ekstack/internal/orchestration"
	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
	"github.com/ibraheemcisse/ekstack/internal/provisioning"
	"github.com/ibraheemcisse/ekstack/internal/ui/benchmarks"
	"github.com/ibraheemcisse/ekstack/internal/ui/tui"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
	"github.com/ibraheemcisse/ekstack/internal/util/prerequisites"
)

// cloudClient is the slice of the AWS client the handlers need: the
// provisioning manager plus the resolved SDK configuration for the
// layers built on top of it (kube, helm, s3).
type cloudClient interface {
	aws.CloudManager
	SDKConfig() awssdk.Config
}

// reconciler matches orchestration.Reconciler for test injection.
type reconciler interface {
	Reconcile(ctx context.Context) (*orchestration.Result, error)
}

// Factory function variables - replaced in tests.
var (
	// findConfigFile locates the default configuration file.
	findConfigFile = config.FindConfigFile

	// loadConfigFile loads and validates a configuration file.
	loadConfigFile = config.Load

	// newCloudClient builds the AWS client for the configured region.
	newCloudClient = func(ctx context.Context, cfg *config.Config) (cloudClient, error) {
		return aws.NewRealClient(ctx, string(cfg.Region), aws.WithTimeouts(cfg.Timeouts))
	}

	// newReconciler builds the apply reconciler.
	newReconciler = func(cloud aws.CloudManager, awsCfg awssdk.Config, cfg *config.Config, observer provisioning.Observer) reconciler {
		return orchestration.NewReconciler(cloud, awsCfg, cfg, observer)
	}

	// checkDefaultPrereqs runs the client tool check.
	checkDefaultPrereqs = prerequisites.CheckDefault

	// writeKubeconfig writes the cluster access configuration to disk.
	writeKubeconfig = kube.WriteKubeconfig

	// runApplyTUI drives the interactive apply display.
	runApplyTUI = tui.RunApply
)

// ApplyOptions contains the options for the apply command.
type ApplyOptions struct {
	ConfigPath     string
	KubeconfigPath string
	Plain          bool
	Verbose        bool
}

// Apply handles the apply command.
//
// It reconciles the platform towards the configuration: AWS resources
// first, then the cluster-side steps (add-ons, GitOps), and finally
// writes the kubeconfig and prints a summary. Interactive terminals get
// the progress display; otherwise progress goes to the log.
func Apply(ctx context.Context, opts ApplyOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	if err := checkPrerequisites(cfg); err != nil {
		return err
	}

	cloud, err := newCloudClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize AWS access: %w", err)
	}

	initKubeLogging(newLogger(opts.Verbose))

	sequence := benchmarks.ApplySequence(cfg.HasDatabase(), cfg.HasGitOps())

	var result *orchestration.Result
	run := func(observer provisioning.Observer) error {
		r, err := newReconciler(cloud, cloud.SDKConfig(), cfg, observer).Reconcile(ctx)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	if !opts.Plain && isInteractiveTTY() {
		err = runApplyTUI(cfg.Name, string(cfg.Region), sequence, run)
	} else {
		log.Printf("Applying platform %s in %s (estimated %s)",
			cfg.Name, cfg.Region, benchmarks.TotalEstimate(sequence).Round(time.Minute))
		err = run(provisioning.NewConsoleObserver(newLogger(opts.Verbose)))
	}
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	kubeconfigPath := opts.KubeconfigPath
	if kubeconfigPath == "" {
		kubeconfigPath = kube.DefaultKubeconfigPath(cfg.Name)
	}
	if err := writeKubeconfig(result.Kubeconfig, kubeconfigPath); err != nil {
		return fmt.Errorf("platform is up but writing the kubeconfig failed: %w", err)
	}

	printApplySuccess(cfg, result, kubeconfigPath)
	return nil
}

// loadConfig loads the configuration from the given path, falling back
// to the default file in the current directory when the path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w (run 'ekstack init' to create one)", err)
		}
		path = found
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// checkPrerequisites verifies the required client tools are installed,
// unless the configuration disables the check.
func checkPrerequisites(cfg *config.Config) error {
	if !cfg.PrerequisitesEnabled() {
		return nil
	}

	results := checkDefaultPrereqs()
	if results.HasErrors() {
		return fmt.Errorf("prerequisites check failed: %w", results.Error())
	}
	return nil
}

// printApplySuccess prints the platform summary and next steps.
func printApplySuccess(cfg *config.Config, result *orchestration.Result, kubeconfigPath string) {
	state := result.State

	fmt.Println()
	fmt.Printf("Platform %s is ready.\n", cfg.Name)
	fmt.Println()
	if state.Cluster != nil {
		fmt.Printf("  Endpoint:    %s\n", state.Cluster.Endpoint)
		fmt.Printf("  Kubernetes:  %s\n", state.Cluster.Version)
	}
	fmt.Printf("  Node groups: %d\n", len(state.NodeGroups))
	for _, repo := range state.Repositories {
		fmt.Printf("  Registry:    %s\n", repo.URI)
	}
	if state.Database != nil {
		fmt.Printf("  Database:    %s (credentials in secret %s)\n",
			state.Database.Endpoint, naming.DatabaseSecret(cfg.Name))
	}
	fmt.Println()

	fmt.Println("Next steps:")
	fmt.Printf("  export KUBECONFIG=%s\n", kubeconfigPath)
	fmt.Println("  kubectl get nodes")
	if cfg.HasGitOps() {
		fmt.Println("  kubectl -n argocd get applications")
	}
	fmt.Println()
	fmt.Println("  ekstack status    # platform health")
	fmt.Println("  ekstack loadtest  # verify under load")
	fmt.Println()
}

// isInteractiveTTY reports whether stdout is an interactive terminal.
func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
