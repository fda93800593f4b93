package addons

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"helm.sh/helm/v3/pkg/release"
	corev1 "k8s.io/api/core/v1"

	"github.com/ibraheemcisse/ekstack/internal/addons/helm"
	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/kube"
)

// fakeKube stubs the cluster operations the installer touches; all
// other methods panic through the embedded nil interface.
type fakeKube struct {
	kube.Client

	applied         []string
	secrets         map[string]*corev1.Secret
	waitedFor       []string
	existingSecrets map[string]bool
}

func newFakeKube() *fakeKube {
	return &fakeKube{
		secrets:         make(map[string]*corev1.Secret),
		existingSecrets: make(map[string]bool),
	}
}

func (f *fakeKube) ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) error {
	f.applied = append(f.applied, string(manifests))
	return nil
}

func (f *fakeKube) SecretExists(ctx context.Context, namespace, name string) (bool, error) {
	return f.existingSecrets[namespace+"/"+name], nil
}

func (f *fakeKube) CreateSecret(ctx context.Context, secret *corev1.Secret) error {
	f.secrets[secret.Namespace+"/"+secret.Name] = secret
	return nil
}

func (f *fakeKube) WaitForDeployment(ctx context.Context, namespace, name string, timeout time.Duration) error {
	f.waitedFor = append(f.waitedFor, namespace+"/"+name)
	return nil
}

// fakeHelm records released charts.
type fakeHelm struct {
	namespace string
	records   *[]installedRelease
}

type installedRelease struct {
	namespace   string
	releaseName string
	spec        helm.ChartSpec
	values      helm.Values
}

func (f *fakeHelm) InstallOrUpgrade(ctx context.Context, releaseName string, spec helm.ChartSpec, values helm.Values) (*release.Release, error) {
	*f.records = append(*f.records, installedRelease{
		namespace:   f.namespace,
		releaseName: releaseName,
		spec:        spec,
		values:      values,
	})
	return &release.Release{Name: releaseName}, nil
}

func newTestInstaller(k *fakeKube) (*Installer, *[]installedRelease) {
	records := &[]installedRelease{}
	installer := &Installer{
		kube:   k,
		inputs: testInputs(),
		newHelmClient: func(namespace string) (helmClient, error) {
			return &fakeHelm{namespace: namespace, records: records}, nil
		},
	}
	return installer, records
}

func TestEnabledSteps_Defaults(t *testing.T) {
	cfg := &config.Config{Name: "demo"}

	steps := EnabledSteps(cfg)

	require.Len(t, steps, 3)
	assert.Equal(t, StepLoadBalancerController, steps[0].Name)
	assert.Equal(t, StepClusterAutoscaler, steps[1].Name)
	assert.Equal(t, StepMetricsServer, steps[2].Name)
	for _, step := range steps {
		assert.Equal(t, "kube-system", step.Namespace)
	}
}

func TestEnabledSteps_WithMonitoring(t *testing.T) {
	cfg := &config.Config{
		Name:   "demo",
		Addons: config.Addons{Monitoring: boolPtr(true)},
	}

	steps := EnabledSteps(cfg)

	require.Len(t, steps, 4)
	assert.Equal(t, StepMonitoring, steps[3].Name)
	assert.Equal(t, monitoringNamespace, steps[3].Namespace)
}

func TestEnabledSteps_AllDisabled(t *testing.T) {
	cfg := &config.Config{
		Name: "demo",
		Addons: config.Addons{
			LoadBalancerController: boolPtr(false),
			ClusterAutoscaler:      boolPtr(false),
			MetricsServer:          boolPtr(false),
		},
	}

	assert.Empty(t, EnabledSteps(cfg))
}

func TestInstaller_Install_Defaults(t *testing.T) {
	k := newFakeKube()
	installer, records := newTestInstaller(k)

	cfg := &config.Config{Name: "demo"}
	err := installer.Install(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, *records, 3)
	assert.Equal(t, StepLoadBalancerController, (*records)[0].releaseName)
	assert.Equal(t, StepClusterAutoscaler, (*records)[1].releaseName)
	assert.Equal(t, StepMetricsServer, (*records)[2].releaseName)

	// Each release resolves its pinned chart spec.
	assert.Equal(t, "https://aws.github.io/eks-charts", (*records)[0].spec.Repository)

	// The controller gets an explicit readiness wait on top of the Helm
	// wait.
	assert.Contains(t, k.waitedFor, "kube-system/aws-load-balancer-controller")
}

func TestInstaller_Install_MonitoringCreatesGrafanaSecret(t *testing.T) {
	k := newFakeKube()
	installer, records := newTestInstaller(k)

	cfg := &config.Config{
		Name:   "demo",
		Addons: config.Addons{Monitoring: boolPtr(true)},
	}
	err := installer.Install(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, *records, 4)
	last := (*records)[3]
	assert.Equal(t, monitoringNamespace, last.namespace)
	assert.Equal(t, StepMonitoring, last.releaseName)

	// Namespace applied before the chart.
	require.NotEmpty(t, k.applied)
	assert.Contains(t, k.applied[0], "kind: Namespace")
	assert.Contains(t, k.applied[0], "name: monitoring")

	secret, ok := k.secrets["monitoring/grafana-admin"]
	require.True(t, ok, "grafana admin secret must be created")
	assert.Equal(t, []byte("admin"), secret.Data["admin-user"])
	assert.NotEmpty(t, secret.Data["admin-password"])
}

func TestInstaller_Install_KeepsExistingGrafanaPassword(t *testing.T) {
	k := newFakeKube()
	k.existingSecrets["monitoring/grafana-admin"] = true
	installer, _ := newTestInstaller(k)

	cfg := &config.Config{
		Name:   "demo",
		Addons: config.Addons{Monitoring: boolPtr(true)},
	}
	err := installer.Install(context.Background(), cfg)
	require.NoError(t, err)

	_, replaced := k.secrets["monitoring/grafana-admin"]
	assert.False(t, replaced, "existing admin password must not be rotated")
}

func TestInstaller_InstallStep_Unknown(t *testing.T) {
	k := newFakeKube()
	installer, _ := newTestInstaller(k)

	err := installer.InstallStep(context.Background(), "no-such-addon", &config.Config{Name: "demo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown addon step")
}

func TestInstaller_InstallStep_AppliesChartOverride(t *testing.T) {
	k := newFakeKube()
	installer, records := newTestInstaller(k)

	cfg := &config.Config{
		Name: "demo",
		Addons: config.Addons{
			Charts: map[string]config.ChartOverride{
				StepMetricsServer: {Version: "0.0.1-test"},
			},
		},
	}

	err := installer.InstallStep(context.Background(), StepMetricsServer, cfg)
	require.NoError(t, err)

	require.Len(t, *records, 1)
	assert.Equal(t, "0.0.1-test", (*records)[0].spec.Version)
}

func TestInstaller_InstallStep_MergesValuesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics-server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("replicas: 5\nhostNetwork:\n  enabled: true\n"), 0o644))

	k := newFakeKube()
	installer, records := newTestInstaller(k)

	cfg := &config.Config{
		Name: "demo",
		Addons: config.Addons{
			Charts: map[string]config.ChartOverride{
				StepMetricsServer: {ValuesFile: path},
			},
		},
	}

	err := installer.InstallStep(context.Background(), StepMetricsServer, cfg)
	require.NoError(t, err)

	require.Len(t, *records, 1)
	values := (*records)[0].values

	// The file overrides the computed replica count and adds new keys;
	// untouched defaults stay.
	assert.Equal(t, float64(5), values["replicas"])
	assert.Contains(t, values, "hostNetwork")
	assert.Contains(t, values, "podDisruptionBudget")
}

func TestInstaller_InstallStep_ValuesFileMissing(t *testing.T) {
	k := newFakeKube()
	installer, _ := newTestInstaller(k)

	cfg := &config.Config{
		Name: "demo",
		Addons: config.Addons{
			Charts: map[string]config.ChartOverride{
				StepMetricsServer: {ValuesFile: filepath.Join(t.TempDir(), "no-such.yaml")},
			},
		},
	}

	err := installer.InstallStep(context.Background(), StepMetricsServer, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load values override for metrics-server")
}
