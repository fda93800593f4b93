package helm

import "github.com/ibraheemcisse/ekstack/internal/config"

// ChartSpec locates a chart: repository URL, chart name, and version.
type ChartSpec struct {
	Repository string
	Name       string
	Version    string
}

// DefaultChartSpecs contains the default chart specifications for each
// addon, pointing at the official repositories. Users can override any
// of them via addons.charts in the config.
var DefaultChartSpecs = map[string]ChartSpec{
	"aws-load-balancer-controller": {
		Repository: "https://aws.github.io/eks-charts",
		Name:       "aws-load-balancer-controller",
		Version:    "1.13.4",
	},
	"cluster-autoscaler": {
		Repository: "https://kubernetes.github.io/autoscaler",
		Name:       "cluster-autoscaler",
		Version:    "9.50.1",
	},
	"metrics-server": {
		Repository: "https://kubernetes-sigs.github.io/metrics-server",
		Name:       "metrics-server",
		Version:    "3.12.2",
	},
	"kube-prometheus-stack": {
		Repository: "https://prometheus-community.github.io/helm-charts",
		Name:       "kube-prometheus-stack",
		Version:    "77.1.0",
	},
	"argo-cd": {
		Repository: "https://argoproj.github.io/argo-helm",
		Name:       "argo-cd",
		Version:    "9.3.5",
	},
}

// GetChartSpec returns the chart spec for the given release name,
// applying any overrides from the config.
func GetChartSpec(name string, override config.ChartOverride) ChartSpec {
	spec, ok := DefaultChartSpecs[name]
	if !ok {
		// Unknown release: the override must supply everything.
		spec = ChartSpec{Name: name}
	}

	if override.Repository != "" {
		spec.Repository = override.Repository
	}
	if override.Chart != "" {
		spec.Name = override.Chart
	}
	if override.Version != "" {
		spec.Version = override.Version
	}

	return spec
}
