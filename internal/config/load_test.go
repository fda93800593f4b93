package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: prod
region: eu-central-1
nodeGroups:
  - name: workers
    instanceType: t3.large
    min: 2
    max: 6
  - name: batch
    instanceType: m7g.xlarge
    min: 0
    desired: 1
    max: 4
    capacityType: spot
    taints:
      - key: workload
        value: batch
        effect: NoSchedule
registries:
  - name: api
  - name: web
    scanOnPush: false
    keepImages: 10
database:
  instanceClass: db.r6g.large
  storageGB: 100
  multiAZ: true
gitops:
  repoURL: https://github.com/org/platform-apps
  apps:
    - name: shop
    - name: billing
      namespace: finance
`

func TestLoadFromBytes(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFromBytes([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Name)
	assert.Equal(t, RegionEUCentral1, cfg.Region)
	assert.Equal(t, DefaultVersion(), cfg.Version, "version should default")

	require.Len(t, cfg.NodeGroups, 2)
	workers := cfg.NodeGroup("workers")
	require.NotNil(t, workers)
	assert.Equal(t, 2, workers.Desired, "desired should default to min")
	assert.Equal(t, CapacityOnDemand, workers.CapacityType)
	assert.Equal(t, DefaultNodeDiskGB, workers.DiskGB)

	batch := cfg.NodeGroup("batch")
	require.NotNil(t, batch)
	assert.Equal(t, CapacitySpot, batch.CapacityType)
	require.Len(t, batch.Taints, 1)
	assert.Equal(t, TaintNoSchedule, batch.Taints[0].Effect)

	require.Len(t, cfg.Registries, 2)
	assert.True(t, cfg.Registries[0].ScanOnPushEnabled())
	assert.False(t, cfg.Registries[1].ScanOnPushEnabled())
	assert.Equal(t, DefaultRegistryKeepImages, cfg.Registries[0].KeepImages)

	require.True(t, cfg.HasDatabase())
	assert.Equal(t, "db.r6g.large", cfg.Database.InstanceClass)
	assert.Equal(t, 100, cfg.Database.StorageGB)
	assert.True(t, cfg.Database.MultiAZ)
	assert.Equal(t, DefaultDBEngineVersion, cfg.Database.EngineVersion)
	assert.Equal(t, DefaultDBUsername, cfg.Database.Username)

	require.True(t, cfg.HasGitOps())
	assert.Equal(t, DefaultGitOpsBranch, cfg.GitOps.Branch)
	assert.Equal(t, DefaultGitOpsPath, cfg.GitOps.Path)
	require.Len(t, cfg.GitOps.Apps, 2)
	assert.Equal(t, "apps/shop", cfg.GitOps.Apps[0].EffectivePath(cfg.GitOps.Path))
	assert.Equal(t, "shop", cfg.GitOps.Apps[0].EffectiveNamespace())
	assert.Equal(t, "finance", cfg.GitOps.Apps[1].EffectiveNamespace())
}

func TestLoadFromBytes_InvalidYAML(t *testing.T) {
	t.Parallel()
	_, err := LoadFromBytes([]byte("name: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadFromBytes_ValidationFailure(t *testing.T) {
	t.Parallel()
	_, err := LoadFromBytes([]byte("name: prod\nregion: nowhere-1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestLoad_File(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "ekstack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFromBytes([]byte(sampleYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Name, loaded.Name)
	assert.Equal(t, cfg.NodeGroups, loaded.NodeGroups)
	assert.Equal(t, cfg.Database, loaded.Database)
}

func TestLoadFromBytes_Timeouts(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFromBytes([]byte(`
name: prod
region: eu-central-1
nodeGroups:
  - name: workers
    instanceType: t3.large
    min: 1
    max: 3
timeouts:
  clusterCreate: 40m
  retryMaxAttempts: 3
  retryInitialDelay: 500ms
`))
	require.NoError(t, err)

	assert.Equal(t, 40*time.Minute, cfg.Timeouts.ClusterCreate)
	assert.Equal(t, 3, cfg.Timeouts.RetryMaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Timeouts.RetryInitialDelay)
	assert.Equal(t, DefaultTimeouts().Destroy, cfg.Timeouts.Destroy, "unset timeouts should default")
}

func TestLoadFromBytes_InvalidTimeout(t *testing.T) {
	t.Parallel()
	_, err := LoadFromBytes([]byte(`
name: prod
region: eu-central-1
nodeGroups:
  - name: workers
    instanceType: t3.large
    min: 1
    max: 3
timeouts:
  clusterCreate: soon
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeouts.clusterCreate")
}

func TestLoadFromBytes_LoadTestAndPrerequisites(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFromBytes([]byte(`
name: prod
region: eu-central-1
nodeGroups:
  - name: workers
    instanceType: t3.large
    min: 1
    max: 3
prerequisites: false
loadtest:
  scenario: loadtests/checkout.yaml
  reportBucket: prod-loadtest-reports
`))
	require.NoError(t, err)

	assert.False(t, cfg.PrerequisitesEnabled())
	require.NotNil(t, cfg.LoadTest)
	assert.Equal(t, "loadtests/checkout.yaml", cfg.LoadTest.Scenario)
	assert.Equal(t, "prod-loadtest-reports", cfg.LoadTest.ReportBucket)
	assert.Empty(t, cfg.LoadTest.MetricsAddr)
}

func TestPrerequisitesEnabled_Default(t *testing.T) {
	t.Parallel()
	cfg := &Config{}
	assert.True(t, cfg.PrerequisitesEnabled())
}

func TestTotalNodes(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFromBytes([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.TotalMinNodes())
	assert.Equal(t, 10, cfg.TotalMaxNodes())
}
