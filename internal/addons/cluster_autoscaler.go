package addons

import (
	"context"

	"github.com/ibraheemcisse/ekstack/internal/addons/helm"
	"github.com/ibraheemcisse/ekstack/internal/config"
)

// installClusterAutoscaler installs the cluster autoscaler with
// auto-discovery over the managed node group ASGs. Discovery matches
// the k8s.io/cluster-autoscaler tags the nodegroup phase applies.
func (i *Installer) installClusterAutoscaler(ctx context.Context, cfg *config.Config) error {
	values := buildClusterAutoscalerValues(cfg, i.inputs)

	return i.installRelease(ctx, "kube-system", StepClusterAutoscaler, cfg, values)
}

// buildClusterAutoscalerValues creates helm values for the addon.
func buildClusterAutoscalerValues(cfg *config.Config, in Inputs) helm.Values {
	values := helm.Values{
		"cloudProvider": "aws",
		"awsRegion":     in.Region,
		"autoDiscovery": helm.Values{
			"clusterName": in.ClusterName,
		},
		"rbac": helm.Values{
			"serviceAccount": helm.Values{
				"create": true,
				"name":   "cluster-autoscaler",
				"annotations": helm.Values{
					"eks.amazonaws.com/role-arn": in.AutoscalerRoleARN,
				},
			},
		},
		"extraArgs": helm.Values{
			"balance-similar-node-groups": true,
			"skip-nodes-with-system-pods": false,
			"expander":                    "least-waste",
		},
	}

	if cfg.Addons.MonitoringEnabled() {
		values["serviceMonitor"] = helm.Values{
			"enabled":   true,
			"namespace": monitoringNamespace,
		}
	}

	return values
}
