package addons

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-password/password"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/ibraheemcisse/ekstack/internal/addons/helm"
	"github.com/ibraheemcisse/ekstack/internal/config"
)

const (
	monitoringNamespace = "monitoring"
	grafanaAdminSecret  = "grafana-admin"
	fieldManager        = "ekstack-addons"
)

// installMonitoring installs the kube-prometheus-stack. The Grafana
// admin secret is created up front because the chart mounts it at
// install time.
func (i *Installer) installMonitoring(ctx context.Context, cfg *config.Config) error {
	namespaceYAML := fmt.Sprintf("apiVersion: v1\nkind: Namespace\nmetadata:\n  name: %s\n", monitoringNamespace)
	if err := i.kube.ApplyManifests(ctx, []byte(namespaceYAML), fieldManager); err != nil {
		return fmt.Errorf("failed to create monitoring namespace: %w", err)
	}

	if err := i.ensureGrafanaAdminSecret(ctx); err != nil {
		return err
	}

	values := buildMonitoringValues(cfg)

	return i.installRelease(ctx, monitoringNamespace, StepMonitoring, cfg, values)
}

// ensureGrafanaAdminSecret generates a Grafana admin password and
// stores it, keeping an existing password across re-runs.
func (i *Installer) ensureGrafanaAdminSecret(ctx context.Context) error {
	exists, err := i.kube.SecretExists(ctx, monitoringNamespace, grafanaAdminSecret)
	if err != nil {
		return fmt.Errorf("failed to check grafana admin secret: %w", err)
	}
	if exists {
		return nil
	}

	adminPassword, err := password.Generate(24, 6, 0, false, true)
	if err != nil {
		return fmt.Errorf("failed to generate grafana admin password: %w", err)
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      grafanaAdminSecret,
			Namespace: monitoringNamespace,
		},
		Data: map[string][]byte{
			"admin-user":     []byte("admin"),
			"admin-password": []byte(adminPassword),
		},
	}
	if err := i.kube.CreateSecret(ctx, secret); err != nil {
		return fmt.Errorf("failed to create grafana admin secret: %w", err)
	}
	return nil
}

// buildMonitoringValues creates helm values for the monitoring stack.
func buildMonitoringValues(cfg *config.Config) helm.Values {
	retention := cfg.Addons.MonitoringRetention
	if retention == "" {
		retention = config.DefaultMonitoringRetention
	}

	return helm.Values{
		"prometheus": helm.Values{
			"prometheusSpec": helm.Values{
				"retention": retention,
			},
		},
		"grafana": helm.Values{
			"admin": helm.Values{
				"existingSecret": grafanaAdminSecret,
				"userKey":        "admin-user",
				"passwordKey":    "admin-password",
			},
		},
	}
}
