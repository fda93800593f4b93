// Package benchmarks provides timing estimates for provisioning phases.
package benchmarks

import "time"

// PhaseRecord is one observed phase timing. A zero EndedAt means the phase
// is still running.
type PhaseRecord struct {
	Phase     string
	StartedAt time.Time
	EndedAt   time.Time
}

// DefaultTimings are median durations from full apply runs (seconds).
var DefaultTimings = map[string]int{
	"validation":      5,
	"network":         150,
	"encryption":      5,
	"logging":         5,
	"registry":        5,
	"iam":             15,
	"cluster":         540,
	"irsa":            15,
	"nodegroup":       180,
	"coreaddons":      90,
	"database":        540,
	"workloads":       60,
	"database-secret": 5,
	"addons":          240,
	"gitops":          120,
}

// PhaseOrder is the complete apply sequence. Conditional phases are filtered
// out by ApplySequence for runs that do not include them.
var PhaseOrder = []string{
	"validation",
	"network",
	"encryption",
	"logging",
	"registry",
	"iam",
	"cluster",
	"irsa",
	"nodegroup",
	"coreaddons",
	"database",
	"workloads",
	"database-secret",
	"addons",
	"gitops",
}

// ApplySequence returns the phase sequence for one apply run. Database and
// GitOps phases only run when configured.
func ApplySequence(hasDatabase, hasGitOps bool) []string {
	sequence := make([]string, 0, len(PhaseOrder))
	for _, phase := range PhaseOrder {
		switch phase {
		case "database", "database-secret":
			if !hasDatabase {
				continue
			}
		case "gitops":
			if !hasGitOps {
				continue
			}
		}
		sequence = append(sequence, phase)
	}
	return sequence
}

// EstimateRemaining calculates the estimated time remaining based on the
// current phase, elapsed time, and historical phase records. A nil sequence
// falls back to PhaseOrder.
func EstimateRemaining(sequence []string, currentPhase string, phaseElapsed time.Duration, history []PhaseRecord) time.Duration {
	return EstimateRemainingWithScale(sequence, currentPhase, phaseElapsed, history, PerformanceScale(currentPhase, phaseElapsed, history))
}

// EstimateRemainingWithScale calculates ETA while applying a performance
// scale factor.
func EstimateRemainingWithScale(
	sequence []string,
	currentPhase string,
	phaseElapsed time.Duration,
	history []PhaseRecord,
	scale float64,
) time.Duration {
	if len(sequence) == 0 {
		sequence = PhaseOrder
	}

	var remaining time.Duration

	// Find the index of the current phase
	currentIdx := -1
	for i, p := range sequence {
		if p == currentPhase {
			currentIdx = i
			break
		}
	}
	if currentIdx < 0 {
		return 0
	}

	// For the current phase: max(0, expected - elapsed)
	if expected, ok := DefaultTimings[currentPhase]; ok {
		expectedDur := time.Duration(expected) * time.Second
		expectedDur = time.Duration(float64(expectedDur) * scale)
		if expectedDur > phaseElapsed {
			remaining += expectedDur - phaseElapsed
		}
	}

	// For future phases: use DefaultTimings unless history already shows
	// them completed.
	completedPhases := make(map[string]bool)
	for _, rec := range history {
		if !rec.EndedAt.IsZero() {
			completedPhases[rec.Phase] = true
		}
	}

	for i := currentIdx + 1; i < len(sequence); i++ {
		phase := sequence[i]
		if completedPhases[phase] {
			continue
		}
		if expected, ok := DefaultTimings[phase]; ok {
			expectedDur := time.Duration(expected) * time.Second
			remaining += time.Duration(float64(expectedDur) * scale)
		}
	}

	return remaining
}

// PerformanceScale derives a speed multiplier from observed-vs-expected
// durations. Example: expected 3m, observed 4m30s => scale=1.5 (future ETAs
// are stretched by 50%).
func PerformanceScale(currentPhase string, phaseElapsed time.Duration, history []PhaseRecord) float64 {
	var expectedTotal time.Duration
	var actualTotal time.Duration

	for _, rec := range history {
		expectedSecs, ok := DefaultTimings[rec.Phase]
		if !ok || rec.EndedAt.IsZero() {
			continue
		}
		expectedTotal += time.Duration(expectedSecs) * time.Second
		actualTotal += rec.EndedAt.Sub(rec.StartedAt)
	}

	// If the current phase is overrunning, fold it in immediately so the ETA
	// adapts quickly.
	if expectedSecs, ok := DefaultTimings[currentPhase]; ok && phaseElapsed > 0 {
		expectedCurrent := time.Duration(expectedSecs) * time.Second
		if phaseElapsed > expectedCurrent {
			expectedTotal += expectedCurrent
			actualTotal += phaseElapsed
		}
	}

	if expectedTotal == 0 || actualTotal == 0 {
		return 1.0
	}

	scale := float64(actualTotal) / float64(expectedTotal)
	if scale < 0.6 {
		return 0.6
	}
	if scale > 3.0 {
		return 3.0
	}
	return scale
}

// TotalEstimate returns the total estimated time for a phase sequence. A nil
// sequence falls back to PhaseOrder.
func TotalEstimate(sequence []string) time.Duration {
	if len(sequence) == 0 {
		sequence = PhaseOrder
	}
	var total time.Duration
	for _, phase := range sequence {
		if secs, ok := DefaultTimings[phase]; ok {
			total += time.Duration(secs) * time.Second
		}
	}
	return total
}
