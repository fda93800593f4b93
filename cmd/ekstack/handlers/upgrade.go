package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/ibraheemcisse/ekstack/internal/addons"
	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/kube"
	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

// UpgradeOptions contains the options for the upgrade command.
type UpgradeOptions struct {
	ConfigPath string
	Version    string
	DryRun     bool
	SkipAddons bool
}

// addonInstaller installs cluster add-ons one release at a time.
type addonInstaller interface {
	InstallStep(ctx context.Context, stepName string, cfg *config.Config) error
}

// newAddonInstaller is replaced in tests.
var newAddonInstaller = func(kubeClient kube.Client, inputs addons.Inputs) addonInstaller {
	return addons.NewInstaller(kubeClient, inputs)
}

// Upgrade handles the upgrade command.
//
// The order matters: the control plane first, then node groups (EKS
// refuses node groups newer than the control plane), then the managed
// core add-ons, then the Helm add-ons.
func Upgrade(ctx context.Context, opts UpgradeOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	target := cfg.Version
	if opts.Version != "" {
		target = opts.Version
	}
	if target == "" {
		return fmt.Errorf("no target version: set version in the config or pass --version")
	}

	cloud, err := newCloudClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize AWS access: %w", err)
	}

	initKubeLogging(newLogger(false))

	cluster, err := cloud.GetCluster(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to look up cluster: %w", err)
	}
	if cluster == nil {
		return fmt.Errorf("cluster %s does not exist, run 'ekstack apply' first", cfg.Name)
	}

	groups, err := cloud.ListNodeGroups(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to list node groups: %w", err)
	}

	staleCluster := cluster.Version != target
	var staleGroups []string
	for _, g := range groups {
		if g.Version != target {
			staleGroups = append(staleGroups, g.Name)
		}
	}

	log.Printf("Upgrade plan for %s (target Kubernetes %s):", cfg.Name, target)
	if staleCluster {
		log.Printf("  control plane: %s -> %s", cluster.Version, target)
	} else {
		log.Printf("  control plane: already at %s", target)
	}
	for _, g := range groups {
		if g.Version != target {
			log.Printf("  node group %s: %s -> %s", g.Name, g.Version, target)
		} else {
			log.Printf("  node group %s: already at %s", g.Name, target)
		}
	}
	if !opts.SkipAddons {
		log.Printf("  add-ons: reinstall at chart versions for %s", target)
	}

	if opts.DryRun {
		log.Printf("[dry-run] no changes made")
		return nil
	}

	if staleCluster {
		log.Printf("Upgrading control plane to %s (this takes a while)", target)
		if err := cloud.UpgradeCluster(ctx, cfg.Name, target); err != nil {
			return fmt.Errorf("control plane upgrade failed: %w", err)
		}
		cluster, err = cloud.WaitClusterActive(ctx, cfg.Name)
		if err != nil {
			return fmt.Errorf("control plane did not become active: %w", err)
		}
	}

	for _, name := range staleGroups {
		log.Printf("Upgrading node group %s to %s (rolling)", name, target)
		if err := cloud.UpgradeNodeGroup(ctx, cfg.Name, name, target); err != nil {
			return fmt.Errorf("node group %s upgrade failed: %w", name, err)
		}
	}

	// Re-pin the managed add-ons so vpc-cni, kube-proxy and coredns move
	// to their defaults for the new control plane version.
	coreAddons, err := cloud.ListCoreAddons(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to list core addons: %w", err)
	}
	for _, addon := range coreAddons {
		if _, err := cloud.EnsureCoreAddon(ctx, cfg.Name, addon.Name, ""); err != nil {
			return fmt.Errorf("failed to upgrade core addon %s: %w", addon.Name, err)
		}
		log.Printf("Core addon %s upgraded", addon.Name)
	}

	if !opts.SkipAddons {
		if err := upgradeAddons(ctx, cloud, cfg, cluster); err != nil {
			return err
		}
	}

	log.Printf("Platform %s upgraded to Kubernetes %s", cfg.Name, target)
	return nil
}

// upgradeAddons reinstalls the enabled Helm add-ons against the
// upgraded cluster.
func upgradeAddons(ctx context.Context, cloud cloudClient, cfg *config.Config, cluster *aws.Cluster) error {
	kubeClient, err := newClusterKubeClient(cloud.SDKConfig(), cluster)
	if err != nil {
		return fmt.Errorf("failed to connect to cluster: %w", err)
	}

	inputs, err := addonInputsFromCloud(ctx, cloud, cfg)
	if err != nil {
		return err
	}

	installer := newAddonInstaller(kubeClient, inputs)
	for _, step := range addons.EnabledSteps(cfg) {
		log.Printf("Upgrading addon %s", step.Name)
		if err := installer.InstallStep(ctx, step.Name, cfg); err != nil {
			return fmt.Errorf("failed to upgrade addon %s: %w", step.Name, err)
		}
	}
	return nil
}

// addonInputsFromCloud rebuilds the add-on chart inputs from live AWS
// state, the way apply builds them from provisioning outputs.
func addonInputsFromCloud(ctx context.Context, cloud cloudClient, cfg *config.Config) (addons.Inputs, error) {
	inputs := addons.Inputs{
		ClusterName: cfg.Name,
		Region:      string(cfg.Region),
	}

	network, err := cloud.GetNetwork(ctx, cfg.Name)
	if err != nil {
		return inputs, fmt.Errorf("failed to look up network: %w", err)
	}
	if network != nil {
		inputs.VPCID = network.VPC.ID
	}

	if role, err := cloud.GetRole(ctx, naming.AddonRole(cfg.Name, addons.StepLoadBalancerController)); err == nil && role != nil {
		inputs.LoadBalancerControllerRoleARN = role.ARN
	}
	if role, err := cloud.GetRole(ctx, naming.AddonRole(cfg.Name, addons.StepClusterAutoscaler)); err == nil && role != nil {
		inputs.AutoscalerRoleARN = role.ARN
	}

	return inputs, nil
}
