package addons

import (
	"context"
	"fmt"
	"time"

	"helm.sh/helm/v3/pkg/release"

	"github.com/ibraheemcisse/ekstack/internal/addons/helm"
	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/kube"
)

// Step names double as Helm release names.
const (
	StepLoadBalancerController = "aws-load-balancer-controller"
	StepClusterAutoscaler      = "cluster-autoscaler"
	StepMetricsServer          = "metrics-server"
	StepMonitoring             = "kube-prometheus-stack"
)

const deploymentReadyTimeout = 5 * time.Minute

// Step is a single installable add-on and the namespace it lands in.
type Step struct {
	Name      string
	Namespace string
}

// EnabledSteps returns the ordered list of add-on steps to install for
// the given configuration.
func EnabledSteps(cfg *config.Config) []Step {
	var steps []Step

	if cfg.Addons.LoadBalancerControllerEnabled() {
		steps = append(steps, Step{Name: StepLoadBalancerController, Namespace: "kube-system"})
	}
	if cfg.Addons.ClusterAutoscalerEnabled() {
		steps = append(steps, Step{Name: StepClusterAutoscaler, Namespace: "kube-system"})
	}
	if cfg.Addons.MetricsServerEnabled() {
		steps = append(steps, Step{Name: StepMetricsServer, Namespace: "kube-system"})
	}
	if cfg.Addons.MonitoringEnabled() {
		steps = append(steps, Step{Name: StepMonitoring, Namespace: monitoringNamespace})
	}

	return steps
}

// helmClient is the slice of the Helm client the installer uses,
// narrowed for test fakes.
type helmClient interface {
	InstallOrUpgrade(ctx context.Context, releaseName string, spec helm.ChartSpec, values helm.Values) (*release.Release, error)
}

// Installer installs add-ons into a provisioned cluster.
type Installer struct {
	kube   kube.Client
	inputs Inputs

	// newHelmClient is replaced in tests; the real factory binds a Helm
	// action configuration to one namespace.
	newHelmClient func(namespace string) (helmClient, error)
}

// NewInstaller creates an Installer over the given cluster access and
// provisioning outputs.
func NewInstaller(kubeClient kube.Client, inputs Inputs) *Installer {
	return &Installer{
		kube:   kubeClient,
		inputs: inputs,
		newHelmClient: func(namespace string) (helmClient, error) {
			return helm.NewClient(kubeClient.RESTConfig(), namespace)
		},
	}
}

// Install installs every enabled add-on in order.
func (i *Installer) Install(ctx context.Context, cfg *config.Config) error {
	for _, step := range EnabledSteps(cfg) {
		if err := i.InstallStep(ctx, step.Name, cfg); err != nil {
			return fmt.Errorf("failed to install addon %s: %w", step.Name, err)
		}
	}
	return nil
}

// InstallStep installs a single add-on by name.
func (i *Installer) InstallStep(ctx context.Context, stepName string, cfg *config.Config) error {
	switch stepName {
	case StepLoadBalancerController:
		return i.installLoadBalancerController(ctx, cfg)
	case StepClusterAutoscaler:
		return i.installClusterAutoscaler(ctx, cfg)
	case StepMetricsServer:
		return i.installMetricsServer(ctx, cfg)
	case StepMonitoring:
		return i.installMonitoring(ctx, cfg)
	default:
		return fmt.Errorf("unknown addon step: %s", stepName)
	}
}

// installRelease installs or upgrades one chart release in its
// namespace, resolving the chart spec with any config override.
func (i *Installer) installRelease(ctx context.Context, namespace, releaseName string, cfg *config.Config, values helm.Values) error {
	h, err := i.newHelmClient(namespace)
	if err != nil {
		return fmt.Errorf("failed to create helm client for %s: %w", namespace, err)
	}

	override := cfg.Addons.Charts[releaseName]
	spec := helm.GetChartSpec(releaseName, override)

	values, err = helm.ApplyOverrides(values, override)
	if err != nil {
		return fmt.Errorf("failed to load values override for %s: %w", releaseName, err)
	}

	if _, err := h.InstallOrUpgrade(ctx, releaseName, spec, values); err != nil {
		return fmt.Errorf("failed to install release %s: %w", releaseName, err)
	}
	return nil
}
