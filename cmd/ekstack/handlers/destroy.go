package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ibraheemcisse/ekstack/internal/kube"
	"github.com/ibraheemcisse/ekstack/internal/provisioning"
)

// destroyer matches provisioning.Destroyer for test injection.
type destroyer interface {
	Destroy(ctx *provisioning.Context) error
}

// Factory function variables for destroy - replaced in tests.
var (
	// newDestroyer creates the teardown provisioner.
	newDestroyer = func() destroyer {
		return provisioning.NewDestroyer()
	}

	// newProvisioningContext creates a provisioning context.
	newProvisioningContext = provisioning.NewContext

	// removeFile deletes a file, used for kubeconfig cleanup.
	removeFile = os.Remove
)

// Destroy handles the destroy command.
//
// It removes all platform resources from AWS in reverse dependency
// order. Configurations with delete protection enabled refuse to
// destroy unless force is set.
func Destroy(ctx context.Context, configPath string, force bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.DeleteProtection && !force {
		return fmt.Errorf("delete protection is enabled for %s; pass --force to destroy anyway", cfg.Name)
	}

	cloud, err := newCloudClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize AWS access: %w", err)
	}

	log.Printf("Destroying platform: %s", cfg.Name)

	pCtx := newProvisioningContext(ctx, cfg, cloud, provisioning.NewConsoleObserver(newLogger(false)))
	if err := newDestroyer().Destroy(pCtx); err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}

	// The kubeconfig points at a cluster that no longer exists.
	if err := removeFile(kube.DefaultKubeconfigPath(cfg.Name)); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to remove kubeconfig: %v", err)
	}

	log.Printf("Platform %s destroyed", cfg.Name)
	return nil
}
