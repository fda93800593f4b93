// Package loadtest runs declarative HTTP load scenarios against the
// platform.
//
// A scenario YAML describes named flows of request steps with inline
// checks, the request rate and duration (or ramp stages), and latency and
// error-rate thresholds. Each flow drives one vegeta attacker; results are
// folded into vegeta metrics, evaluated against the checks and thresholds,
// and rendered as a text summary and a JSON artifact. A failed threshold
// or check fails the run so CI can gate on the exit code.
package loadtest
