package provisioning

import (
	"fmt"
)

// coreAddonNames are the EKS managed add-ons every cluster gets, in install
// order. They ship with the control plane but are pinned through the add-on
// API so upgrades are explicit. coredns goes last: it schedules onto worker
// nodes and never activates before a node group exists.
var coreAddonNames = []string{"vpc-cni", "kube-proxy", "coredns"}

// CoreAddonsPhase pins the EKS managed add-ons and waits for each to become
// active.
type CoreAddonsPhase struct{}

// NewCoreAddonsPhase creates the core addons phase.
func NewCoreAddonsPhase() *CoreAddonsPhase {
	return &CoreAddonsPhase{}
}

// Name implements Phase.
func (p *CoreAddonsPhase) Name() string { return "coreaddons" }

// Provision implements Phase.
func (p *CoreAddonsPhase) Provision(ctx *Context) error {
	if ctx.State.Cluster == nil {
		return fmt.Errorf("cluster phase must run first")
	}

	for _, name := range coreAddonNames {
		addon, err := ctx.Cloud.EnsureCoreAddon(ctx, ctx.Config.Name, name, "")
		if err != nil {
			return fmt.Errorf("failed to ensure core addon %s: %w", name, err)
		}
		ctx.State.CoreAddons = append(ctx.State.CoreAddons, *addon)
		logResourceReady(ctx.Observer, p.Name(), addon.Name, addon.Version)
	}

	return nil
}
