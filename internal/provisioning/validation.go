package provisioning

import (
	"fmt"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

// ValidationPhase runs pre-flight checks before anything touches AWS.
type ValidationPhase struct{}

// NewValidationPhase creates the validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{}
}

// Name implements Phase.
func (p *ValidationPhase) Name() string { return "validation" }

// Provision implements Phase. Hard configuration errors abort the run;
// soft findings are surfaced as warnings and provisioning continues.
func (p *ValidationPhase) Provision(ctx *Context) error {
	if err := ctx.Config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for _, warning := range configWarnings(ctx.Config) {
		logWarning(ctx.Observer, p.Name(), warning)
	}

	return nil
}

// configWarnings reports non-fatal configuration findings.
func configWarnings(cfg *config.Config) []string {
	var warnings []string

	if cfg.Network.NAT == config.NATSingle && cfg.Network.AvailabilityZones > 1 {
		warnings = append(warnings,
			"a single NAT gateway is one failure domain for all private subnet egress; use nat: per-az for zone fault isolation")
	}

	allSpot := len(cfg.NodeGroups) > 0
	for _, group := range cfg.NodeGroups {
		if group.CapacityType != config.CapacitySpot {
			allSpot = false
			break
		}
	}
	if allSpot {
		warnings = append(warnings,
			"every node group uses spot capacity; system workloads are interrupted together when capacity is reclaimed")
	}

	if cfg.HasDatabase() && cfg.Database.BackupRetentionDays == 0 {
		warnings = append(warnings,
			"database backups are disabled (backupRetentionDays: 0)")
	}

	return warnings
}
