package provisioning

import (
	"fmt"

	"github.com/sethvargo/go-password/password"

	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

// DatabasePhase provisions the managed Postgres instance on the private
// subnets, reachable only from the cluster's workload security group, and
// waits until it accepts connections.
type DatabasePhase struct{}

// NewDatabasePhase creates the database phase.
func NewDatabasePhase() *DatabasePhase {
	return &DatabasePhase{}
}

// Name implements Phase.
func (p *DatabasePhase) Name() string { return "database" }

// Provision implements Phase.
func (p *DatabasePhase) Provision(ctx *Context) error {
	if !ctx.Config.HasDatabase() {
		return nil
	}
	if ctx.State.Network == nil {
		return fmt.Errorf("network phase must run first")
	}
	if ctx.State.Cluster == nil {
		return fmt.Errorf("cluster phase must run first")
	}

	identifier := naming.DBInstance(ctx.Config.Name)

	existing, err := ctx.Cloud.GetDatabase(ctx, identifier)
	if err != nil {
		return fmt.Errorf("failed to look up database %s: %w", identifier, err)
	}

	if existing == nil {
		// The master password can only be set at creation time. RDS
		// rejects '/', '@', '"' and spaces, so stick to alphanumerics.
		masterPassword, err := password.Generate(32, 10, 0, false, true)
		if err != nil {
			return fmt.Errorf("failed to generate database password: %w", err)
		}
		ctx.State.DatabasePassword = masterPassword
	}

	db := ctx.Config.Database
	spec := aws.DatabaseSpec{
		Cluster:               ctx.Config.Name,
		Identifier:            identifier,
		EngineVersion:         db.EngineVersion,
		InstanceClass:         db.InstanceClass,
		StorageGB:             int32(db.StorageGB),
		MultiAZ:               db.MultiAZ,
		BackupRetentionDays:   int32(db.BackupRetentionDays),
		DatabaseName:          db.Name,
		Username:              db.Username,
		Password:              ctx.State.DatabasePassword,
		VPCID:                 ctx.State.Network.VPC.ID,
		SubnetIDs:             subnetIDs(ctx.State.Network.PrivateSubnets),
		SourceSecurityGroupID: ctx.State.Cluster.SecurityGroupID,
	}
	if ctx.State.Key != nil {
		spec.KMSKeyARN = ctx.State.Key.ARN
	}

	instance, err := ctx.Cloud.EnsureDatabase(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to ensure database: %w", err)
	}

	if !instance.Ready() {
		ctx.Observer.Printf("waiting for database %s to become available", identifier)
		instance, err = ctx.Cloud.WaitDatabaseAvailable(ctx, identifier)
		if err != nil {
			return err
		}
	}
	ctx.State.Database = instance
	logResourceReady(ctx.Observer, p.Name(), instance.Identifier,
		fmt.Sprintf("postgres %s at %s:%d", instance.EngineVersion, instance.Endpoint, instance.Port))

	return nil
}
