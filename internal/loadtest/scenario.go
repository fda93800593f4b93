package loadtest

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by ApplyDefaults when fields are unset.
const (
	DefaultRate     = 10
	DefaultDuration = Duration(time.Minute)
	DefaultMethod   = http.MethodGet
)

// Duration wraps time.Duration so scenario files can use forms like "30s"
// and "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Scenario is a declarative load test: where to aim, how hard, for how
// long, and what counts as passing.
type Scenario struct {
	// Name identifies the run in reports.
	Name string `yaml:"name"`

	// Target is the base URL requests are sent to. The form
	// "service:<namespace>/<name>" resolves the load balancer hostname of
	// a Service in the cluster instead.
	Target string `yaml:"target"`

	// Rate is the total request rate per second, split across flows by
	// weight. Defaults to 10. Ignored when Stages are set.
	Rate int `yaml:"rate,omitempty"`

	// Duration is how long the attack runs. Defaults to 1m. Ignored when
	// Stages are set.
	Duration Duration `yaml:"duration,omitempty"`

	// Stages ramp the rate in steps; each stage runs its rate for its
	// duration.
	Stages []Stage `yaml:"stages,omitempty"`

	// Thresholds are the pass criteria applied to every flow unless the
	// flow overrides them.
	Thresholds Thresholds `yaml:"thresholds,omitempty"`

	// Flows are the request mixes attacked concurrently.
	Flows []Flow `yaml:"flows"`
}

// Stage is one step of a ramp.
type Stage struct {
	// Rate is the total request rate per second during the stage.
	Rate int `yaml:"rate"`

	// Duration is how long the stage runs.
	Duration Duration `yaml:"duration"`
}

// Thresholds are pass criteria evaluated per flow after the run. Zero
// fields are not evaluated.
type Thresholds struct {
	// P95 is the highest acceptable 95th percentile latency.
	P95 Duration `yaml:"p95,omitempty"`

	// P99 is the highest acceptable 99th percentile latency.
	P99 Duration `yaml:"p99,omitempty"`

	// MaxErrorRate is the highest acceptable error fraction in [0, 1].
	// An explicit 0 means no errors are tolerated.
	MaxErrorRate *float64 `yaml:"maxErrorRate,omitempty"`
}

// Flow is a named mix of request steps attacked at a share of the
// scenario rate.
type Flow struct {
	// Name identifies the flow in reports and metrics.
	Name string `yaml:"name"`

	// Weight is the flow's share of the scenario rate relative to the
	// other flows. Defaults to 1.
	Weight int `yaml:"weight,omitempty"`

	// Rate overrides the weighted share with an absolute rate per second.
	Rate int `yaml:"rate,omitempty"`

	// Thresholds override the scenario thresholds for this flow. Set
	// fields win; unset fields inherit.
	Thresholds *Thresholds `yaml:"thresholds,omitempty"`

	// Steps are the requests of the flow, issued in order round-robin.
	Steps []Step `yaml:"steps"`
}

// Step is one request in a flow.
type Step struct {
	// Name identifies the step in check failure reports. Defaults to
	// "<method> <path>".
	Name string `yaml:"name,omitempty"`

	// Method is the HTTP method. Defaults to GET.
	Method string `yaml:"method,omitempty"`

	// Path is the request path appended to the base URL.
	Path string `yaml:"path"`

	// Headers are added to the request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Body is the request body.
	Body string `yaml:"body,omitempty"`

	// Checks are evaluated against every response of the step.
	Checks Checks `yaml:"checks,omitempty"`
}

// Checks are per-response assertions. Zero fields are not evaluated,
// except Status: when empty, any code below 400 passes.
type Checks struct {
	// Status lists the acceptable response status codes.
	Status []int `yaml:"status,omitempty"`

	// BodyContains requires the response body to contain the substring.
	BodyContains string `yaml:"bodyContains,omitempty"`

	// MaxLatency is the highest acceptable latency for a single response.
	MaxLatency Duration `yaml:"maxLatency,omitempty"`
}

// LoadScenario loads a scenario from a file, applies defaults, and
// validates it.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML, applies defaults, and validates.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}

	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}
	return &s, nil
}

// ApplyDefaults fills unset fields with their default values.
func (s *Scenario) ApplyDefaults() {
	if len(s.Stages) == 0 {
		if s.Rate == 0 {
			s.Rate = DefaultRate
		}
		if s.Duration == 0 {
			s.Duration = DefaultDuration
		}
	}

	for i := range s.Flows {
		f := &s.Flows[i]
		if f.Weight == 0 {
			f.Weight = 1
		}
		for j := range f.Steps {
			st := &f.Steps[j]
			if st.Method == "" {
				st.Method = DefaultMethod
			}
			st.Method = strings.ToUpper(st.Method)
			if st.Name == "" {
				st.Name = st.Method + " " + st.Path
			}
		}
	}
}

// Validate validates the scenario. All problems are collected and joined
// rather than returned one at a time.
func (s *Scenario) Validate() error {
	var errs []error

	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if s.Target == "" {
		errs = append(errs, errors.New("target is required"))
	} else if !strings.HasPrefix(s.Target, "http://") &&
		!strings.HasPrefix(s.Target, "https://") &&
		!strings.HasPrefix(s.Target, "service:") {
		errs = append(errs, fmt.Errorf("target %q must be an http(s) URL or service:<namespace>/<name>", s.Target))
	}

	if len(s.Stages) == 0 {
		if s.Rate < 1 {
			errs = append(errs, errors.New("rate must be >= 1"))
		}
		if s.Duration <= 0 {
			errs = append(errs, errors.New("duration must be positive"))
		}
	}
	for i, st := range s.Stages {
		if st.Rate < 1 {
			errs = append(errs, fmt.Errorf("stages[%d]: rate must be >= 1", i))
		}
		if st.Duration <= 0 {
			errs = append(errs, fmt.Errorf("stages[%d]: duration must be positive", i))
		}
	}

	errs = append(errs, validateThresholds("thresholds", s.Thresholds)...)

	if len(s.Flows) == 0 {
		errs = append(errs, errors.New("at least one flow is required"))
	}
	seen := map[string]bool{}
	for _, f := range s.Flows {
		if f.Name == "" {
			errs = append(errs, errors.New("flows: name is required"))
			continue
		}
		prefix := fmt.Sprintf("flows[%s]", f.Name)

		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate flow name", prefix))
		}
		seen[f.Name] = true

		if f.Weight < 1 {
			errs = append(errs, fmt.Errorf("%s: weight must be >= 1", prefix))
		}
		if f.Rate < 0 {
			errs = append(errs, fmt.Errorf("%s: rate must be >= 0", prefix))
		}
		if f.Thresholds != nil {
			errs = append(errs, validateThresholds(prefix+".thresholds", *f.Thresholds)...)
		}

		if len(f.Steps) == 0 {
			errs = append(errs, fmt.Errorf("%s: at least one step is required", prefix))
		}
		for j, st := range f.Steps {
			stepPrefix := fmt.Sprintf("%s.steps[%d]", prefix, j)
			if st.Path == "" || !strings.HasPrefix(st.Path, "/") {
				errs = append(errs, fmt.Errorf("%s: path must start with /", stepPrefix))
			}
			for _, code := range st.Checks.Status {
				if code < 100 || code > 599 {
					errs = append(errs, fmt.Errorf("%s: status %d is not a valid HTTP status code", stepPrefix, code))
				}
			}
			if st.Checks.MaxLatency < 0 {
				errs = append(errs, fmt.Errorf("%s: maxLatency must be positive", stepPrefix))
			}
		}
	}

	return errors.Join(errs...)
}

func validateThresholds(prefix string, t Thresholds) []error {
	var errs []error
	if t.P95 < 0 {
		errs = append(errs, fmt.Errorf("%s.p95 must be positive", prefix))
	}
	if t.P99 < 0 {
		errs = append(errs, fmt.Errorf("%s.p99 must be positive", prefix))
	}
	if t.MaxErrorRate != nil && (*t.MaxErrorRate < 0 || *t.MaxErrorRate > 1) {
		errs = append(errs, fmt.Errorf("%s.maxErrorRate must be in [0, 1]", prefix))
	}
	return errs
}

// EffectiveStages returns the ramp stages, or a single stage built from
// Rate and Duration when none are declared.
func (s *Scenario) EffectiveStages() []Stage {
	if len(s.Stages) > 0 {
		return s.Stages
	}
	return []Stage{{Rate: s.Rate, Duration: s.Duration}}
}

// TotalWeight returns the summed flow weights.
func (s *Scenario) TotalWeight() int {
	total := 0
	for _, f := range s.Flows {
		total += f.Weight
	}
	return total
}

// FlowRate returns the flow's request rate during a stage running at
// stageRate: the flow's absolute rate if set, otherwise its weighted share
// of the stage rate, never below 1.
func (s *Scenario) FlowRate(f Flow, stageRate int) int {
	if f.Rate > 0 {
		return f.Rate
	}
	rate := stageRate * f.Weight / s.TotalWeight()
	if rate < 1 {
		rate = 1
	}
	return rate
}

// EffectiveThresholds returns the scenario thresholds with the flow's
// overrides applied.
func (s *Scenario) EffectiveThresholds(f Flow) Thresholds {
	t := s.Thresholds
	if f.Thresholds == nil {
		return t
	}
	if f.Thresholds.P95 != 0 {
		t.P95 = f.Thresholds.P95
	}
	if f.Thresholds.P99 != 0 {
		t.P99 = f.Thresholds.P99
	}
	if f.Thresholds.MaxErrorRate != nil {
		t.MaxErrorRate = f.Thresholds.MaxErrorRate
	}
	return t
}

// TotalDuration returns the wall-clock length of the attack across all
// stages.
func (s *Scenario) TotalDuration() time.Duration {
	var total time.Duration
	for _, st := range s.EffectiveStages() {
		total += time.Duration(st.Duration)
	}
	return total
}
