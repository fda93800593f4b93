package loadtest

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Report is the evaluated outcome of a run: per-flow metrics, threshold
// verdicts, and check failures. It renders as a text summary and as a
// JSON artifact.
type Report struct {
	Scenario  string       `json:"scenario"`
	Target    string       `json:"target"`
	StartedAt time.Time    `json:"startedAt"`
	Duration  string       `json:"duration"`
	Requests  uint64       `json:"requests"`
	Passed    bool         `json:"passed"`
	Flows     []FlowReport `json:"flows"`
}

// FlowReport summarizes one flow.
type FlowReport struct {
	Name          string            `json:"name"`
	Requests      uint64            `json:"requests"`
	RatePerSec    float64           `json:"ratePerSec"`
	SuccessRatio  float64           `json:"successRatio"`
	ErrorRate     float64           `json:"errorRate"`
	LatencyMean   string            `json:"latencyMean"`
	LatencyP95    string            `json:"latencyP95"`
	LatencyP99    string            `json:"latencyP99"`
	LatencyMax    string            `json:"latencyMax"`
	StatusCodes   map[string]int    `json:"statusCodes,omitempty"`
	Errors        []string          `json:"errors,omitempty"`
	Thresholds    []ThresholdResult `json:"thresholds,omitempty"`
	CheckFailures []CheckFailure    `json:"checkFailures,omitempty"`
	Passed        bool              `json:"passed"`
}

// CheckFailure aggregates the failures of one check on one step.
type CheckFailure struct {
	Step   string `json:"step"`
	Check  string `json:"check"`
	Detail string `json:"detail,omitempty"`
	Count  int    `json:"count"`
}

// buildReport evaluates the flow outcomes against the scenario thresholds.
func buildReport(s *Scenario, target string, startedAt time.Time, wall time.Duration, outcomes []flowOutcome) *Report {
	report := &Report{
		Scenario:  s.Name,
		Target:    target,
		StartedAt: startedAt.UTC(),
		Duration:  wall.Round(10 * time.Millisecond).String(),
		Passed:    true,
	}

	for i := range outcomes {
		o := &outcomes[i]
		m := &o.metrics

		fr := FlowReport{
			Name:          o.flow.Name,
			Requests:      m.Requests,
			RatePerSec:    math.Round(m.Rate*100) / 100,
			SuccessRatio:  m.Success,
			ErrorRate:     errorRate(m),
			LatencyMean:   formatLatency(m.Latencies.Mean),
			LatencyP95:    formatLatency(m.Latencies.P95),
			LatencyP99:    formatLatency(m.Latencies.P99),
			LatencyMax:    formatLatency(m.Latencies.Max),
			StatusCodes:   m.StatusCodes,
			Errors:        m.Errors,
			Thresholds:    evaluateThresholds(s.EffectiveThresholds(o.flow), m),
			CheckFailures: sortedFailures(o.failures),
			Passed:        true,
		}

		for _, tr := range fr.Thresholds {
			if !tr.Passed {
				fr.Passed = false
			}
		}
		if len(fr.CheckFailures) > 0 {
			fr.Passed = false
		}
		if !fr.Passed {
			report.Passed = false
		}

		report.Requests += m.Requests
		report.Flows = append(report.Flows, fr)
	}

	return report
}

func sortedFailures(failures map[failureKey]int) []CheckFailure {
	out := make([]CheckFailure, 0, len(failures))
	for k, n := range failures {
		out = append(out, CheckFailure{Step: k.step, Check: k.check, Detail: k.detail, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Step != out[j].Step {
			return out[i].Step < out[j].Step
		}
		if out[i].Check != out[j].Check {
			return out[i].Check < out[j].Check
		}
		return out[i].Detail < out[j].Detail
	})
	return out
}

// JSON returns the report as an indented JSON artifact.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ArtifactName returns a timestamped file name for the JSON artifact.
func (r *Report) ArtifactName() string {
	return fmt.Sprintf("%s-%s.json", r.Scenario, r.StartedAt.Format("20060102-150405"))
}

// FailedFlows returns the names of the flows that failed.
func (r *Report) FailedFlows() []string {
	var names []string
	for _, f := range r.Flows {
		if !f.Passed {
			names = append(names, f.Name)
		}
	}
	return names
}

// Text renders the summary table for terminal display.
func (r *Report) Text() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Load test: %s\n", r.Scenario)
	fmt.Fprintf(&sb, "Target:    %s\n", r.Target)
	fmt.Fprintf(&sb, "Duration:  %s   Requests: %d   Result: %s\n\n", r.Duration, r.Requests, verdict(r.Passed))

	fmt.Fprintf(&sb, "  %-16s %9s %10s %8s %10s %10s %10s  %s\n",
		"FLOW", "REQUESTS", "RATE", "SUCCESS", "P95", "P99", "MAX", "RESULT")
	for _, f := range r.Flows {
		fmt.Fprintf(&sb, "  %-16s %9d %8.1f/s %7.2f%% %10s %10s %10s  %s\n",
			f.Name, f.Requests, f.RatePerSec, f.SuccessRatio*100,
			f.LatencyP95, f.LatencyP99, f.LatencyMax, verdict(f.Passed))
	}

	if details := r.failureDetails(); len(details) > 0 {
		sb.WriteString("\n")
		for _, d := range details {
			fmt.Fprintf(&sb, "  %s\n", d)
		}
	}

	return sb.String()
}

func verdict(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

// failureDetails lists broken thresholds, check failures, and a capped
// sample of transport errors.
func (r *Report) failureDetails() []string {
	var details []string

	for _, f := range r.Flows {
		for _, tr := range f.Thresholds {
			if !tr.Passed {
				details = append(details, fmt.Sprintf("%s: threshold %s: limit %s, actual %s",
					f.Name, tr.Name, tr.Limit, tr.Actual))
			}
		}
		for _, cf := range f.CheckFailures {
			d := fmt.Sprintf("%s: check %s on %s", f.Name, cf.Check, cf.Step)
			if cf.Detail != "" {
				d += ": " + cf.Detail
			}
			details = append(details, fmt.Sprintf("%s (x%d)", d, cf.Count))
		}
		for i, e := range f.Errors {
			if i == 3 {
				details = append(details, fmt.Sprintf("%s: and %d more errors", f.Name, len(f.Errors)-3))
				break
			}
			details = append(details, fmt.Sprintf("%s: error: %s", f.Name, e))
		}
	}

	return details
}
