package addons

import (
	"context"

	"github.com/ibraheemcisse/ekstack/internal/addons/helm"
	"github.com/ibraheemcisse/ekstack/internal/config"
)

// installMetricsServer installs the Kubernetes Metrics Server.
func (i *Installer) installMetricsServer(ctx context.Context, cfg *config.Config) error {
	values := buildMetricsServerValues(cfg)

	return i.installRelease(ctx, "kube-system", StepMetricsServer, cfg, values)
}

// buildMetricsServerValues creates helm values for the addon.
func buildMetricsServerValues(cfg *config.Config) helm.Values {
	// Two replicas keep the metrics API up across node group rotations.
	values := helm.Values{
		"replicas": 2,
		"podDisruptionBudget": helm.Values{
			"enabled":      true,
			"minAvailable": 1,
		},
	}

	// Wire metrics-server into Prometheus when the monitoring stack is
	// enabled.
	if cfg.Addons.MonitoringEnabled() {
		values["serviceMonitor"] = helm.Values{
			"enabled": true,
		}
	}

	return values
}
