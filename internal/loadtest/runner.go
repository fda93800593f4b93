package loadtest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// requestTimeout bounds each individual request.
const requestTimeout = 30 * time.Second

// Runner executes a scenario against a resolved base URL. Each flow
// drives its own attacker; the load generation itself is vegeta's.
type Runner struct {
	scenario  *Scenario
	baseURL   string
	out       io.Writer
	collector *Collector

	mu sync.Mutex
}

// NewRunner creates a runner. out receives progress lines and may be nil;
// collector receives live metrics and may be nil.
func NewRunner(scenario *Scenario, baseURL string, out io.Writer, collector *Collector) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{scenario: scenario, baseURL: baseURL, out: out, collector: collector}
}

// Run executes all flows concurrently through every stage and returns the
// evaluated report. Canceling the context stops the attackers.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	stages := r.scenario.EffectiveStages()
	started := time.Now()

	r.printf("load test %s: %d flow(s) against %s\n", r.scenario.Name, len(r.scenario.Flows), r.baseURL)

	outcomes := make([]flowOutcome, len(r.scenario.Flows))
	var wg sync.WaitGroup
	for i := range r.scenario.Flows {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = r.attackFlow(ctx, r.scenario.Flows[i], stages)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load test aborted: %w", err)
	}
	return buildReport(r.scenario, r.baseURL, started, time.Since(started), outcomes), nil
}

// flowOutcome is the raw result of one flow: vegeta metrics plus check
// failure counts.
type flowOutcome struct {
	flow     Flow
	metrics  vegeta.Metrics
	failures map[failureKey]int
}

type failureKey struct {
	step   string
	check  string
	detail string
}

func (r *Runner) attackFlow(ctx context.Context, f Flow, stages []Stage) flowOutcome {
	targets, stepIndex := buildTargets(r.baseURL, f)
	targeter := vegeta.NewStaticTargeter(targets...)
	attacker := vegeta.NewAttacker(vegeta.Timeout(requestTimeout))

	stop := context.AfterFunc(ctx, func() { attacker.Stop() })
	defer stop()

	out := flowOutcome{flow: f, failures: map[failureKey]int{}}
	for i, stage := range stages {
		if ctx.Err() != nil {
			break
		}

		rate := vegeta.Rate{Freq: r.scenario.FlowRate(f, stage.Rate), Per: time.Second}
		r.printf("flow %s: stage %d/%d at %d req/s for %s\n", f.Name, i+1, len(stages), rate.Freq, stage.Duration)

		for res := range attacker.Attack(targeter, rate, time.Duration(stage.Duration), f.Name) {
			out.metrics.Add(res)
			r.record(f, stepIndex, res, &out)
		}
	}
	out.metrics.Close()
	return out
}

// record evaluates the result's step checks and feeds the live metrics.
func (r *Runner) record(f Flow, stepIndex map[string]int, res *vegeta.Result, out *flowOutcome) {
	idx, ok := stepIndex[res.Method+" "+res.URL]
	if !ok {
		return
	}
	st := f.Steps[idx]

	fails := evaluateChecks(st, int(res.Code), res.Body, res.Latency)
	for _, cf := range fails {
		out.failures[failureKey{step: st.Name, check: cf.check, detail: cf.detail}]++
	}

	if r.collector == nil {
		return
	}
	r.collector.recordResult(f.Name, int(res.Code), res.Latency)
	for _, cf := range fails {
		r.collector.recordCheckFailure(f.Name, st.Name, cf.check)
	}
}

// buildTargets converts the flow's steps into vegeta targets. The static
// targeter cycles them in declaration order. Repeated method+path steps
// are attributed to the first declaration when evaluating checks.
func buildTargets(baseURL string, f Flow) ([]vegeta.Target, map[string]int) {
	targets := make([]vegeta.Target, 0, len(f.Steps))
	index := make(map[string]int, len(f.Steps))

	for i, st := range f.Steps {
		target := vegeta.Target{Method: st.Method, URL: baseURL + st.Path}
		if st.Body != "" {
			target.Body = []byte(st.Body)
		}
		if len(st.Headers) > 0 {
			target.Header = make(http.Header, len(st.Headers))
			for k, v := range st.Headers {
				target.Header.Set(k, v)
			}
		}
		targets = append(targets, target)

		key := st.Method + " " + target.URL
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return targets, index
}

// printf writes a progress line. Flows print concurrently, so writes are
// serialized.
func (r *Runner) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}
