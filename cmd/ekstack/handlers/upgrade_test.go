package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibraheemcisse/ekstack/internal/addons"
	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/kube"
	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
	ektest "github.com/ibraheemcisse/ekstack/internal/testing"
)

// mockInstaller records the add-on steps it is asked to install.
type mockInstaller struct {
	steps []string
	err   error
}

func (m *mockInstaller) InstallStep(_ context.Context, stepName string, _ *config.Config) error {
	if m.err != nil {
		return m.err
	}
	m.steps = append(m.steps, stepName)
	return nil
}

// upgradeCloud is a fake with a standing cluster one minor behind.
func upgradeCloud() *fakeCloudClient {
	cloud := newFakeCloudClient()
	cloud.ExistingCluster = &aws.Cluster{
		Name:     "test",
		Status:   "ACTIVE",
		Version:  "1.31",
		Endpoint: "https://test.eks.example.com",
	}
	cloud.ExistingGroups = []aws.NodeGroup{
		{Name: "workers", Status: "ACTIVE", InstanceType: "t3.large", Version: "1.31"},
	}
	cloud.ExistingAddons = []aws.Addon{
		{Name: "vpc-cni", Version: "v1.18.0"},
		{Name: "coredns", Version: "v1.11.1"},
	}
	return cloud
}

// mutatingCalls filters the fake's call log down to the calls that
// change anything, preserving order.
func mutatingCalls(cloud *fakeCloudClient) []string {
	var calls []string
	for _, call := range cloud.Calls() {
		if strings.HasPrefix(call, "Upgrade") || strings.HasPrefix(call, "EnsureCoreAddon") || call == "WaitClusterActive" {
			calls = append(calls, call)
		}
	}
	return calls
}

func TestUpgrade_WithInjection(t *testing.T) {
	t.Run("no target version", func(t *testing.T) {
		saveAndRestoreFactories(t)

		cfg := ektest.NewConfigBuilder().Build()
		cfg.Version = ""
		stubConfig(cfg)

		err := Upgrade(context.Background(), UpgradeOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no target version")
	})

	t.Run("cluster does not exist", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithVersion("1.32").Build())
		newCloudClient = func(context.Context, *config.Config) (cloudClient, error) {
			return newFakeCloudClient(), nil
		}
		initKubeLogging = func(logr.Logger) {}

		err := Upgrade(context.Background(), UpgradeOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
		assert.Contains(t, err.Error(), "ekstack apply")
	})

	t.Run("dry run plans without changes", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithVersion("1.32").Build())
		cloud := upgradeCloud()
		newCloudClient = func(context.Context, *config.Config) (cloudClient, error) {
			return cloud, nil
		}
		initKubeLogging = func(logr.Logger) {}

		err := Upgrade(context.Background(), UpgradeOptions{DryRun: true})
		require.NoError(t, err)
		assert.Empty(t, mutatingCalls(cloud))
	})

	t.Run("control plane first, then node groups, then core addons", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithVersion("1.32").Build())
		cloud := upgradeCloud()
		newCloudClient = func(context.Context, *config.Config) (cloudClient, error) {
			return cloud, nil
		}
		initKubeLogging = func(logr.Logger) {}

		err := Upgrade(context.Background(), UpgradeOptions{SkipAddons: true})
		require.NoError(t, err)

		assert.Equal(t, []string{
			"UpgradeCluster 1.32",
			"WaitClusterActive",
			"UpgradeNodeGroup workers 1.32",
			"EnsureCoreAddon vpc-cni",
			"EnsureCoreAddon coredns",
		}, mutatingCalls(cloud))
	})

	t.Run("control plane already at target", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithVersion("1.32").Build())
		cloud := upgradeCloud()
		cloud.ExistingCluster.Version = "1.32"
		newCloudClient = func(context.Context, *config.Config) (cloudClient, error) {
			return cloud, nil
		}
		initKubeLogging = func(logr.Logger) {}

		err := Upgrade(context.Background(), UpgradeOptions{SkipAddons: true})
		require.NoError(t, err)

		calls := mutatingCalls(cloud)
		assert.NotContains(t, calls, "UpgradeCluster 1.32")
		assert.Contains(t, calls, "UpgradeNodeGroup workers 1.32")
	})

	t.Run("flag overrides config version", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithVersion("1.32").Build())
		cloud := upgradeCloud()
		newCloudClient = func(context.Context, *config.Config) (cloudClient, error) {
			return cloud, nil
		}
		initKubeLogging = func(logr.Logger) {}

		err := Upgrade(context.Background(), UpgradeOptions{Version: "1.33", SkipAddons: true})
		require.NoError(t, err)
		assert.Contains(t, mutatingCalls(cloud), "UpgradeCluster 1.33")
	})

	t.Run("control plane upgrade failure", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithVersion("1.32").Build())
		cloud := upgradeCloud()
		cloud.Errs["UpgradeCluster"] = errors.New("insufficient subnet capacity")
		newCloudClient = func(context.Context, *config.Config) (cloudClient, error) {
			return cloud, nil
		}
		initKubeLogging = func(logr.Logger) {}

		err := Upgrade(context.Background(), UpgradeOptions{SkipAddons: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "control plane upgrade failed")
	})

	t.Run("node group upgrade failure", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithVersion("1.32").Build())
		cloud := upgradeCloud()
		cloud.Errs["UpgradeNodeGroup"] = errors.New("rolling update stuck")
		newCloudClient = func(context.Context, *config.Config) (cloudClient, error) {
			return cloud, nil
		}
		initKubeLogging = func(logr.Logger) {}

		err := Upgrade(context.Background(), UpgradeOptions{SkipAddons: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "node group workers upgrade failed")
	})

	t.Run("helm addons reinstalled after the cluster upgrade", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithVersion("1.32").Build())
		cloud := upgradeCloud()
		cloud.ExistingNetwork = &aws.Network{VPC: aws.VPC{ID: "vpc-123"}}
		newCloudClient = func(context.Context, *config.Config) (cloudClient, error) {
			return cloud, nil
		}
		initKubeLogging = func(logr.Logger) {}
		newClusterKubeClient = func(awssdk.Config, *aws.Cluster) (kube.Client, error) {
			return ektest.NewFakeKube(), nil
		}

		installer := &mockInstaller{}
		var gotInputs addons.Inputs
		newAddonInstaller = func(_ kube.Client, inputs addons.Inputs) addonInstaller {
			gotInputs = inputs
			return installer
		}

		err := Upgrade(context.Background(), UpgradeOptions{})
		require.NoError(t, err)

		assert.Equal(t, []string{
			addons.StepLoadBalancerController,
			addons.StepClusterAutoscaler,
			addons.StepMetricsServer,
		}, installer.steps)
		assert.Equal(t, "vpc-123", gotInputs.VPCID)
	})

	t.Run("skip addons leaves helm releases alone", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithVersion("1.32").Build())
		cloud := upgradeCloud()
		newCloudClient = func(context.Context, *config.Config) (cloudClient, error) {
			return cloud, nil
		}
		initKubeLogging = func(logr.Logger) {}
		newAddonInstaller = func(kube.Client, addons.Inputs) addonInstaller {
			t.Fatal("installer must not be built with --skip-addons")
			return nil
		}

		err := Upgrade(context.Background(), UpgradeOptions{SkipAddons: true})
		require.NoError(t, err)
	})

	t.Run("addon failure surfaces the step", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithVersion("1.32").Build())
		cloud := upgradeCloud()
		newCloudClient = func(context.Context, *config.Config) (cloudClient, error) {
			return cloud, nil
		}
		initKubeLogging = func(logr.Logger) {}
		newClusterKubeClient = func(awssdk.Config, *aws.Cluster) (kube.Client, error) {
			return ektest.NewFakeKube(), nil
		}
		newAddonInstaller = func(kube.Client, addons.Inputs) addonInstaller {
			return &mockInstaller{err: errors.New("chart pull failed")}
		}

		err := Upgrade(context.Background(), UpgradeOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upgrade addon aws-load-balancer-controller")
	})
}

func TestAddonInputsFromCloud(t *testing.T) {
	t.Run("populates from live state", func(t *testing.T) {
		cloud := newFakeCloudClient()
		cloud.ExistingNetwork = &aws.Network{VPC: aws.VPC{ID: "vpc-123"}}
		cfg := ektest.NewConfigBuilder().Build()

		inputs, err := addonInputsFromCloud(context.Background(), cloud, cfg)
		require.NoError(t, err)

		assert.Equal(t, "test", inputs.ClusterName)
		assert.Equal(t, "eu-central-1", inputs.Region)
		assert.Equal(t, "vpc-123", inputs.VPCID)
		assert.Contains(t, inputs.LoadBalancerControllerRoleARN, "test-aws-load-balancer-controller-irsa")
		assert.Contains(t, inputs.AutoscalerRoleARN, "test-cluster-autoscaler-irsa")
	})

	t.Run("network lookup failure", func(t *testing.T) {
		cloud := newFakeCloudClient()
		cloud.Errs["GetNetwork"] = errors.New("throttled")

		_, err := addonInputsFromCloud(context.Background(), cloud, ektest.NewConfigBuilder().Build())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to look up network")
	})
}
