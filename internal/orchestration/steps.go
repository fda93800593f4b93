package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/ibraheemcisse/ekstack/internal/addons"
	"github.com/ibraheemcisse/ekstack/internal/kube"
	"github.com/ibraheemcisse/ekstack/internal/provisioning"
)

// waitForNodes blocks until the summed minimum node count across all
// groups is Ready, so the add-ons that follow have capacity to schedule
// on.
func (r *Reconciler) waitForNodes(ctx context.Context, client kube.Client, state *provisioning.State) error {
	want := r.config.TotalMinNodes()
	if want == 0 {
		return nil
	}

	if err := client.WaitForNodesReady(ctx, want, r.config.Timeouts.NodeGroupCreate); err != nil {
		return fmt.Errorf("waiting for %d nodes: %w", want, err)
	}

	ready, total, err := client.NodesReady(ctx)
	if err == nil {
		r.observer.Printf("%d/%d nodes ready", ready, total)
	}
	return nil
}

// installAddons installs the enabled add-ons one release at a time with
// the identifiers the charts cannot discover on their own, reporting
// each installed release.
func (r *Reconciler) installAddons(ctx context.Context, client kube.Client, state *provisioning.State) error {
	inputs := addons.Inputs{
		ClusterName: r.config.Name,
		Region:      string(r.config.Region),
	}
	if state.Network != nil {
		inputs.VPCID = state.Network.VPC.ID
	}
	if role := state.IRSARoles["aws-load-balancer-controller"]; role != nil {
		inputs.LoadBalancerControllerRoleARN = role.ARN
	}
	if role := state.IRSARoles["cluster-autoscaler"]; role != nil {
		inputs.AutoscalerRoleARN = role.ARN
	}

	installer := r.newInstaller(client, inputs)
	steps := addons.EnabledSteps(r.config)
	for i, s := range steps {
		r.observer.Progress("addons", i, len(steps))
		if err := installer.InstallStep(ctx, s.Name, r.config); err != nil {
			return fmt.Errorf("failed to install addon %s: %w", s.Name, err)
		}
		r.observer.Event(provisioning.Event{
			Type:      provisioning.EventResourceReady,
			Phase:     "addons",
			Resource:  s.Name,
			Message:   "installed",
			Timestamp: time.Now(),
		})
	}
	r.observer.Progress("addons", len(steps), len(steps))
	return nil
}

// bootstrapGitOps installs ArgoCD and registers the configured
// applications.
func (r *Reconciler) bootstrapGitOps(ctx context.Context, client kube.Client, _ *provisioning.State) error {
	return r.newBootstrap(client).Run(ctx, r.config)
}
