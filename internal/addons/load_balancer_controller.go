package addons

import (
	"context"
	"fmt"

	"github.com/ibraheemcisse/ekstack/internal/addons/helm"
	"github.com/ibraheemcisse/ekstack/internal/config"
)

// installLoadBalancerController installs the AWS Load Balancer
// Controller, which reconciles Service type=LoadBalancer and Ingress
// objects into NLBs/ALBs.
func (i *Installer) installLoadBalancerController(ctx context.Context, cfg *config.Config) error {
	values := buildLoadBalancerControllerValues(cfg, i.inputs)

	if err := i.installRelease(ctx, "kube-system", StepLoadBalancerController, cfg, values); err != nil {
		return err
	}

	// Later steps create Services the controller's webhook must admit,
	// so wait for the deployment beyond the Helm hook wait.
	if err := i.kube.WaitForDeployment(ctx, "kube-system", "aws-load-balancer-controller", deploymentReadyTimeout); err != nil {
		return fmt.Errorf("load balancer controller not ready: %w", err)
	}
	return nil
}

// buildLoadBalancerControllerValues creates helm values for the addon.
// The cluster name, region, and VPC are passed explicitly so the
// controller never falls back to instance metadata lookups.
func buildLoadBalancerControllerValues(cfg *config.Config, in Inputs) helm.Values {
	values := helm.Values{
		"clusterName": in.ClusterName,
		"region":      in.Region,
		"vpcId":       in.VPCID,
		"serviceAccount": helm.Values{
			"create": true,
			"name":   "aws-load-balancer-controller",
			"annotations": helm.Values{
				"eks.amazonaws.com/role-arn": in.LoadBalancerControllerRoleARN,
			},
		},
		"replicaCount": 2,
	}

	if cfg.Addons.MonitoringEnabled() {
		values["serviceMonitor"] = helm.Values{
			"enabled": true,
		}
	}

	return values
}
