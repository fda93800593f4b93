package provisioning

import (
	"fmt"

	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

// LoggingPhase provisions the CloudWatch log group that receives control
// plane logs. Creating it ahead of the cluster pins the retention; EKS
// would otherwise create it with logs kept forever.
type LoggingPhase struct{}

// NewLoggingPhase creates the logging phase.
func NewLoggingPhase() *LoggingPhase {
	return &LoggingPhase{}
}

// Name implements Phase.
func (p *LoggingPhase) Name() string { return "logging" }

// Provision implements Phase.
func (p *LoggingPhase) Provision(ctx *Context) error {
	name := naming.LogGroup(ctx.Config.Name)
	retention := int32(ctx.Config.Logging.RetentionDays)

	group, err := ctx.Cloud.EnsureLogGroup(ctx, ctx.Config.Name, name, retention)
	if err != nil {
		return fmt.Errorf("failed to ensure log group: %w", err)
	}

	ctx.State.LogGroup = group
	logResourceReady(ctx.Observer, p.Name(), name,
		fmt.Sprintf("log group ready with %d day retention", group.RetentionDays))
	return nil
}
