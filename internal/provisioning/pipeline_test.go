package provisioning

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibraheemcisse/ekstack/internal/config"
	ektest "github.com/ibraheemcisse/ekstack/internal/testing"
)

const testYAML = `
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
registries:
  - name: api
  - name: web
database:
  instanceClass: db.r6g.large
  storageGB: 100
addons:
  loadBalancerController: true
  clusterAutoscaler: true
`

// testConfig parses the shared test configuration with defaults applied.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFromBytes([]byte(testYAML))
	require.NoError(t, err)
	cfg.Timeouts = config.TestTimeouts()
	return cfg
}

// recordingObserver captures events for assertions.
type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) Printf(string, ...any) {}

func (o *recordingObserver) Event(event Event) {
	o.mu.Lock()
	o.events = append(o.events, event)
	o.mu.Unlock()
}

func (o *recordingObserver) Progress(string, int, int) {}

func (o *recordingObserver) byType(eventType EventType) []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	var matched []Event
	for _, event := range o.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func TestApplyPhases_DatabaseOnlyWhenConfigured(t *testing.T) {
	t.Parallel()

	withDB := testConfig(t)
	names := phaseNames(ApplyPhases(withDB))
	assert.Contains(t, names, "database")
	assert.Equal(t, "database", names[len(names)-1], "database phase runs last")

	withoutDB := testConfig(t)
	withoutDB.Database = nil
	assert.NotContains(t, phaseNames(ApplyPhases(withoutDB)), "database")
}

func TestApplyPhases_Order(t *testing.T) {
	t.Parallel()

	names := phaseNames(ApplyPhases(testConfig(t)))
	assert.Equal(t, []string{
		"validation", "network", "encryption", "logging", "registry",
		"iam", "cluster", "irsa", "nodegroup", "coreaddons", "database",
	}, names)
}

func TestRunPhases_PopulatesState(t *testing.T) {
	t.Parallel()

	cloud := ektest.NewFakeCloud()
	observer := &recordingObserver{}
	cfg := testConfig(t)
	ctx := NewContext(context.Background(), cfg, cloud, observer)

	err := RunPhases(ctx, ApplyPhases(cfg))
	require.NoError(t, err)

	state := ctx.State
	require.NotNil(t, state.Network)
	assert.Equal(t, "vpc-123", state.Network.VPC.ID)
	require.NotNil(t, state.Key)
	require.NotNil(t, state.LogGroup)
	assert.Len(t, state.Repositories, 2)
	require.NotNil(t, state.ClusterRole)
	require.NotNil(t, state.NodeRole)
	require.NotNil(t, state.Cluster)
	assert.True(t, state.Cluster.Ready())
	require.NotNil(t, state.OIDCProvider)

	// Both optional addons are enabled, so both get IRSA roles.
	assert.Contains(t, state.IRSARoles, "aws-load-balancer-controller")
	assert.Contains(t, state.IRSARoles, "cluster-autoscaler")

	require.Len(t, state.NodeGroups, 2)
	assert.Equal(t, "prod-batch", state.NodeGroups[0].Name, "groups sorted by name")
	assert.Equal(t, "prod-workers", state.NodeGroups[1].Name)

	require.Len(t, state.CoreAddons, 3)
	assert.Equal(t, "vpc-cni", state.CoreAddons[0].Name)
	assert.Equal(t, "coredns", state.CoreAddons[2].Name, "coredns pinned after nodes exist")

	require.NotNil(t, state.Database)
	assert.True(t, state.Database.Ready())
	assert.NotEmpty(t, state.DatabasePassword, "fresh instance gets a generated password")
}

func TestRunPhases_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	cloud := ektest.NewFakeCloud()
	cloud.Errs["EnsureCluster"] = assert.AnError
	cfg := testConfig(t)
	ctx := NewContext(context.Background(), cfg, cloud, &recordingObserver{})

	err := RunPhases(ctx, ApplyPhases(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster phase failed")

	for _, call := range cloud.Calls() {
		assert.NotContains(t, call, "EnsureNodeGroup", "later phases must not run")
	}
}

func TestRunPhases_EmitsPhaseEvents(t *testing.T) {
	t.Parallel()

	cloud := ektest.NewFakeCloud()
	observer := &recordingObserver{}
	cfg := testConfig(t)
	cfg.Database = nil
	ctx := NewContext(context.Background(), cfg, cloud, observer)

	phases := ApplyPhases(cfg)
	require.NoError(t, RunPhases(ctx, phases))

	started := observer.byType(EventPhaseStarted)
	completed := observer.byType(EventPhaseCompleted)
	assert.Len(t, started, len(phases))
	assert.Len(t, completed, len(phases))
	assert.Empty(t, observer.byType(EventPhaseFailed))
}

func TestRunPhases_FailureEventCarriesPhase(t *testing.T) {
	t.Parallel()

	cloud := ektest.NewFakeCloud()
	cloud.Errs["EnsureNetwork"] = assert.AnError
	observer := &recordingObserver{}
	cfg := testConfig(t)
	ctx := NewContext(context.Background(), cfg, cloud, observer)

	err := RunPhases(ctx, ApplyPhases(cfg))
	require.Error(t, err)

	failed := observer.byType(EventPhaseFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "network", failed[0].Phase)
}

func phaseNames(phases []Phase) []string {
	names := make([]string, 0, len(phases))
	for _, phase := range phases {
		names = append(names, phase.Name())
	}
	return names
}
