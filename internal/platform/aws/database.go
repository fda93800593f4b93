package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/ibraheemcisse/ekstack/internal/util/naming"
	"github.com/ibraheemcisse/ekstack/internal/util/ptr"
	"github.com/ibraheemcisse/ekstack/internal/util/tags"
)

const postgresPort = 5432

// EnsureDatabase provisions the managed Postgres instance: its security
// group (reachable only from cluster workloads), the subnet group spanning
// the private subnets, and the instance itself. The call returns once
// creation is underway; WaitDatabaseAvailable blocks until the endpoint
// accepts connections.
func (c *RealClient) EnsureDatabase(ctx context.Context, spec DatabaseSpec) (*DBInstance, error) {
	dbSG, err := c.ensureSecurityGroup(ctx, spec.Cluster, spec.VPCID,
		naming.DatabaseSecurityGroup(spec.Cluster), "Postgres access from cluster workloads")
	if err != nil {
		return nil, err
	}
	if err := c.authorizeIngressFromGroup(ctx, dbSG.ID, spec.SourceSecurityGroupID, "tcp", postgresPort, postgresPort); err != nil {
		return nil, fmt.Errorf("allowing Postgres traffic from cluster: %w", err)
	}

	if err := c.ensureDBSubnetGroup(ctx, spec.Cluster, spec.SubnetIDs); err != nil {
		return nil, err
	}

	op := &EnsureOperation[*DBInstance]{
		Name:         spec.Identifier,
		ResourceType: "database instance",
		Get: func(ctx context.Context) (*DBInstance, bool, error) {
			return c.findDBInstance(ctx, spec.Identifier)
		},
		Create: func(ctx context.Context) (*DBInstance, error) {
			input := &rds.CreateDBInstanceInput{
				DBInstanceIdentifier:    ptr.String(spec.Identifier),
				Engine:                  ptr.String("postgres"),
				EngineVersion:           ptr.String(spec.EngineVersion),
				DBInstanceClass:         ptr.String(spec.InstanceClass),
				AllocatedStorage:        ptr.Int32(spec.StorageGB),
				StorageType:             ptr.String("gp3"),
				DBName:                  ptr.String(spec.DatabaseName),
				MasterUsername:          ptr.String(spec.Username),
				MasterUserPassword:      ptr.String(spec.Password),
				DBSubnetGroupName:       ptr.String(naming.DBSubnetGroup(spec.Cluster)),
				VpcSecurityGroupIds:     []string{dbSG.ID},
				MultiAZ:                 ptr.Bool(spec.MultiAZ),
				BackupRetentionPeriod:   ptr.Int32(spec.BackupRetentionDays),
				PubliclyAccessible:      ptr.Bool(false),
				StorageEncrypted:        ptr.Bool(true),
				AutoMinorVersionUpgrade: ptr.Bool(true),
				CopyTagsToSnapshot:      ptr.Bool(true),
				Tags: toRDSTags(tags.NewBuilder(spec.Cluster).
					WithName(spec.Identifier).
					WithRole(tags.RoleDatabase).
					Build()),
			}
			if spec.KMSKeyARN != "" {
				input.KmsKeyId = ptr.String(spec.KMSKeyARN)
			}

			out, err := c.rds.CreateDBInstance(ctx, input)
			if err != nil {
				return nil, err
			}
			return dbInstanceFromAPI(out.DBInstance), nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// GetDatabase resolves the instance by identifier, returning nil when it
// does not exist.
func (c *RealClient) GetDatabase(ctx context.Context, identifier string) (*DBInstance, error) {
	instance, found, err := c.findDBInstance(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return instance, nil
}

// WaitDatabaseAvailable blocks until the instance reports available, then
// returns fresh state including the connection endpoint.
func (c *RealClient) WaitDatabaseAvailable(ctx context.Context, identifier string) (*DBInstance, error) {
	waiter := rds.NewDBInstanceAvailableWaiter(c.rds)
	out, err := waiter.WaitForOutput(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: ptr.String(identifier),
	}, c.timeouts.DatabaseCreate)
	if err != nil {
		return nil, fmt.Errorf("waiting for database %s: %w", identifier, err)
	}
	if len(out.DBInstances) == 0 {
		return nil, fmt.Errorf("database %s disappeared while waiting", identifier)
	}
	return dbInstanceFromAPI(&out.DBInstances[0]), nil
}

// DeleteDatabase removes the instance without a final snapshot, waits for
// it to be gone, then removes the subnet group. The database security
// group falls with the rest of the network.
func (c *RealClient) DeleteDatabase(ctx context.Context, cluster, identifier string) error {
	op := &DeleteOperation[*DBInstance]{
		Name:         identifier,
		ResourceType: "database instance",
		Get: func(ctx context.Context) (*DBInstance, bool, error) {
			return c.findDBInstance(ctx, identifier)
		},
		Delete: func(ctx context.Context, _ *DBInstance) error {
			_, err := c.rds.DeleteDBInstance(ctx, &rds.DeleteDBInstanceInput{
				DBInstanceIdentifier:   ptr.String(identifier),
				SkipFinalSnapshot:      ptr.Bool(true),
				DeleteAutomatedBackups: ptr.Bool(true),
			})
			return err
		},
		Wait: func(ctx context.Context) error {
			waiter := rds.NewDBInstanceDeletedWaiter(c.rds)
			return waiter.Wait(ctx, &rds.DescribeDBInstancesInput{
				DBInstanceIdentifier: ptr.String(identifier),
			}, c.timeouts.Destroy)
		},
	}
	if err := op.Execute(ctx, c); err != nil {
		return err
	}

	return c.deleteDBSubnetGroup(ctx, cluster)
}

func (c *RealClient) ensureDBSubnetGroup(ctx context.Context, cluster string, subnetIDs []string) error {
	name := naming.DBSubnetGroup(cluster)
	op := &EnsureOperation[*DBSubnetGroup]{
		Name:         name,
		ResourceType: "database subnet group",
		Get: func(ctx context.Context) (*DBSubnetGroup, bool, error) {
			return c.findDBSubnetGroup(ctx, name)
		},
		Create: func(ctx context.Context) (*DBSubnetGroup, error) {
			out, err := c.rds.CreateDBSubnetGroup(ctx, &rds.CreateDBSubnetGroupInput{
				DBSubnetGroupName:        ptr.String(name),
				DBSubnetGroupDescription: ptr.String(fmt.Sprintf("Private subnets for cluster %s", cluster)),
				SubnetIds:                subnetIDs,
				Tags: toRDSTags(tags.NewBuilder(cluster).
					WithRole(tags.RoleDatabase).
					Build()),
			})
			if err != nil {
				return nil, err
			}
			return &DBSubnetGroup{
				Name: awssdk.ToString(out.DBSubnetGroup.DBSubnetGroupName),
				ARN:  awssdk.ToString(out.DBSubnetGroup.DBSubnetGroupArn),
			}, nil
		},
	}
	_, err := op.Execute(ctx, c)
	return err
}

func (c *RealClient) deleteDBSubnetGroup(ctx context.Context, cluster string) error {
	name := naming.DBSubnetGroup(cluster)
	op := &DeleteOperation[*DBSubnetGroup]{
		Name:         name,
		ResourceType: "database subnet group",
		Get: func(ctx context.Context) (*DBSubnetGroup, bool, error) {
			return c.findDBSubnetGroup(ctx, name)
		},
		Delete: func(ctx context.Context, _ *DBSubnetGroup) error {
			_, err := c.rds.DeleteDBSubnetGroup(ctx, &rds.DeleteDBSubnetGroupInput{
				DBSubnetGroupName: ptr.String(name),
			})
			return err
		},
	}
	return op.Execute(ctx, c)
}

func (c *RealClient) findDBSubnetGroup(ctx context.Context, name string) (*DBSubnetGroup, bool, error) {
	out, err := c.rds.DescribeDBSubnetGroups(ctx, &rds.DescribeDBSubnetGroupsInput{
		DBSubnetGroupName: ptr.String(name),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up database subnet group %s: %w", name, err)
	}
	if len(out.DBSubnetGroups) == 0 {
		return nil, false, nil
	}
	group := out.DBSubnetGroups[0]
	return &DBSubnetGroup{
		Name: awssdk.ToString(group.DBSubnetGroupName),
		ARN:  awssdk.ToString(group.DBSubnetGroupArn),
	}, true, nil
}

func (c *RealClient) findDBInstance(ctx context.Context, identifier string) (*DBInstance, bool, error) {
	out, err := c.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: ptr.String(identifier),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up database %s: %w", identifier, err)
	}
	if len(out.DBInstances) == 0 {
		return nil, false, nil
	}
	return dbInstanceFromAPI(&out.DBInstances[0]), true, nil
}

func dbInstanceFromAPI(api *rdstypes.DBInstance) *DBInstance {
	instance := &DBInstance{
		Identifier:    awssdk.ToString(api.DBInstanceIdentifier),
		ARN:           awssdk.ToString(api.DBInstanceArn),
		Status:        awssdk.ToString(api.DBInstanceStatus),
		EngineVersion: awssdk.ToString(api.EngineVersion),
		MultiAZ:       awssdk.ToBool(api.MultiAZ),
	}
	if api.Endpoint != nil {
		instance.Endpoint = awssdk.ToString(api.Endpoint.Address)
		instance.Port = awssdk.ToInt32(api.Endpoint.Port)
	}
	return instance
}
