package provisioning

import (
	"fmt"
	"time"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

// Phase is one step of provisioning.
type Phase interface {
	// Name returns the phase name used in events and error messages.
	Name() string

	// Provision executes the phase against the shared context.
	Provision(ctx *Context) error
}

// ApplyPhases returns the ordered phases for provisioning the configured
// platform. The database phase is only included when one is configured.
func ApplyPhases(cfg *config.Config) []Phase {
	phases := []Phase{
		NewValidationPhase(),
		NewNetworkPhase(),
		NewEncryptionPhase(),
		NewLoggingPhase(),
		NewRegistryPhase(),
		NewIAMPhase(),
		NewClusterPhase(),
		NewIRSAPhase(),
		NewNodeGroupPhase(),
		NewCoreAddonsPhase(),
	}
	if cfg.HasDatabase() {
		phases = append(phases, NewDatabasePhase())
	}
	return phases
}

// RunPhases executes the given phases sequentially, stopping at the first
// failure.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("starting provisioning with %d phases", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		logPhaseStart(ctx.Observer, phase.Name())
		ctx.Observer.Progress(phase.Name(), i, len(phases))

		if err := phase.Provision(ctx); err != nil {
			logPhaseFailed(ctx.Observer, phase.Name(), err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		logPhaseComplete(ctx.Observer, phase.Name(), time.Since(phaseStart))
	}

	ctx.Observer.Progress("done", len(phases), len(phases))
	ctx.Observer.Printf("provisioning completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
