package loadtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vegeta "github.com/tsenart/vegeta/v12/lib"
)

func TestEvaluateChecks_DefaultStatus(t *testing.T) {
	t.Parallel()
	st := Step{Name: "GET /"}

	assert.Empty(t, evaluateChecks(st, 200, nil, 0))
	assert.Empty(t, evaluateChecks(st, 302, nil, 0))

	fails := evaluateChecks(st, 503, nil, 0)
	require.Len(t, fails, 1)
	assert.Equal(t, checkStatus, fails[0].check)
	assert.Equal(t, "got 503", fails[0].detail)

	// Transport errors surface as code 0.
	fails = evaluateChecks(st, 0, nil, 0)
	require.Len(t, fails, 1)
	assert.Equal(t, "got 0", fails[0].detail)
}

func TestEvaluateChecks_ExplicitStatus(t *testing.T) {
	t.Parallel()
	st := Step{Name: "POST /cart", Checks: Checks{Status: []int{200, 201}}}

	assert.Empty(t, evaluateChecks(st, 201, nil, 0))

	fails := evaluateChecks(st, 302, nil, 0)
	require.Len(t, fails, 1)
	assert.Equal(t, "got 302", fails[0].detail, "a redirect outside the list should fail")
}

func TestEvaluateChecks_BodyContains(t *testing.T) {
	t.Parallel()
	st := Step{Name: "GET /p", Checks: Checks{BodyContains: "sku"}}

	assert.Empty(t, evaluateChecks(st, 200, []byte(`{"sku": 42}`), 0))

	fails := evaluateChecks(st, 200, []byte(`{}`), 0)
	require.Len(t, fails, 1)
	assert.Equal(t, checkBodyContains, fails[0].check)
	assert.Equal(t, `missing "sku"`, fails[0].detail)
}

func TestEvaluateChecks_MaxLatency(t *testing.T) {
	t.Parallel()
	st := Step{Name: "GET /p", Checks: Checks{MaxLatency: Duration(100 * time.Millisecond)}}

	assert.Empty(t, evaluateChecks(st, 200, nil, 50*time.Millisecond))

	fails := evaluateChecks(st, 200, nil, 150*time.Millisecond)
	require.Len(t, fails, 1)
	assert.Equal(t, checkMaxLatency, fails[0].check)
	assert.Equal(t, "over 100ms", fails[0].detail)
}

func TestEvaluateChecks_MultipleFailures(t *testing.T) {
	t.Parallel()
	st := Step{
		Name: "GET /p",
		Checks: Checks{
			Status:       []int{200},
			BodyContains: "ok",
			MaxLatency:   Duration(10 * time.Millisecond),
		},
	}

	fails := evaluateChecks(st, 500, []byte("error"), 20*time.Millisecond)
	assert.Len(t, fails, 3)
}

func TestEvaluateThresholds(t *testing.T) {
	t.Parallel()
	m := &vegeta.Metrics{
		Requests: 100,
		Success:  0.97,
		Latencies: vegeta.LatencyMetrics{
			P95: 150 * time.Millisecond,
			P99: 400 * time.Millisecond,
		},
	}

	maxErr := 0.05
	results := evaluateThresholds(Thresholds{
		P95:          Duration(100 * time.Millisecond),
		P99:          Duration(500 * time.Millisecond),
		MaxErrorRate: &maxErr,
	}, m)
	require.Len(t, results, 3)

	p95 := results[0]
	assert.Equal(t, "p95", p95.Name)
	assert.False(t, p95.Passed)
	assert.Equal(t, "100ms", p95.Limit)
	assert.Equal(t, "150ms", p95.Actual)

	assert.True(t, results[1].Passed, "p99 under the limit should pass")

	errRate := results[2]
	assert.Equal(t, "errorRate", errRate.Name)
	assert.True(t, errRate.Passed)
	assert.Equal(t, "5.00%", errRate.Limit)
	assert.Equal(t, "3.00%", errRate.Actual)
}

func TestEvaluateThresholds_Unset(t *testing.T) {
	t.Parallel()
	m := &vegeta.Metrics{Requests: 10, Success: 0.5}
	assert.Empty(t, evaluateThresholds(Thresholds{}, m))
}

func TestErrorRate_NoRequests(t *testing.T) {
	t.Parallel()
	assert.Zero(t, errorRate(&vegeta.Metrics{}))
}
