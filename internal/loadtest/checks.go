package loadtest

import (
	"bytes"
	"fmt"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// Check names as they appear in reports. They match the scenario YAML
// keys.
const (
	checkStatus       = "status"
	checkBodyContains = "bodyContains"
	checkMaxLatency   = "maxLatency"
)

// checkFail is one failed check on one response.
type checkFail struct {
	check  string
	detail string
}

// evaluateChecks applies the step's checks to a single response. When no
// status list is declared, any code below 400 passes; transport errors
// surface as code 0 and fail.
func evaluateChecks(st Step, code int, body []byte, latency time.Duration) []checkFail {
	var fails []checkFail

	if len(st.Checks.Status) > 0 {
		if !containsInt(st.Checks.Status, code) {
			fails = append(fails, checkFail{checkStatus, fmt.Sprintf("got %d", code)})
		}
	} else if code < 200 || code >= 400 {
		fails = append(fails, checkFail{checkStatus, fmt.Sprintf("got %d", code)})
	}

	if st.Checks.BodyContains != "" && !bytes.Contains(body, []byte(st.Checks.BodyContains)) {
		fails = append(fails, checkFail{checkBodyContains, fmt.Sprintf("missing %q", st.Checks.BodyContains)})
	}

	if st.Checks.MaxLatency > 0 && latency > time.Duration(st.Checks.MaxLatency) {
		fails = append(fails, checkFail{checkMaxLatency, fmt.Sprintf("over %s", st.Checks.MaxLatency)})
	}

	return fails
}

func containsInt(list []int, v int) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}

// ThresholdResult is one threshold verdict for a flow.
type ThresholdResult struct {
	Name   string `json:"name"`
	Limit  string `json:"limit"`
	Actual string `json:"actual"`
	Passed bool   `json:"passed"`
}

// evaluateThresholds applies the thresholds to a flow's closed metrics.
// Unset thresholds produce no result.
func evaluateThresholds(t Thresholds, m *vegeta.Metrics) []ThresholdResult {
	var results []ThresholdResult

	if t.P95 > 0 {
		results = append(results, ThresholdResult{
			Name:   "p95",
			Limit:  t.P95.String(),
			Actual: formatLatency(m.Latencies.P95),
			Passed: m.Latencies.P95 <= time.Duration(t.P95),
		})
	}
	if t.P99 > 0 {
		results = append(results, ThresholdResult{
			Name:   "p99",
			Limit:  t.P99.String(),
			Actual: formatLatency(m.Latencies.P99),
			Passed: m.Latencies.P99 <= time.Duration(t.P99),
		})
	}
	if t.MaxErrorRate != nil {
		rate := errorRate(m)
		results = append(results, ThresholdResult{
			Name:   "errorRate",
			Limit:  formatPercent(*t.MaxErrorRate),
			Actual: formatPercent(rate),
			Passed: rate <= *t.MaxErrorRate,
		})
	}

	return results
}

// errorRate returns the fraction of requests vegeta counted as failed.
func errorRate(m *vegeta.Metrics) float64 {
	if m.Requests == 0 {
		return 0
	}
	return 1 - m.Success
}

func formatLatency(d time.Duration) string {
	return d.Round(10 * time.Microsecond).String()
}

func formatPercent(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}
