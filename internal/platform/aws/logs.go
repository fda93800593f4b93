package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/ibraheemcisse/ekstack/internal/util/ptr"
	"github.com/ibraheemcisse/ekstack/internal/util/tags"
)

// EnsureLogGroup provisions the CloudWatch log group that receives control
// plane logs, creating it ahead of the cluster so the retention policy is
// in place before EKS starts writing.
func (c *RealClient) EnsureLogGroup(ctx context.Context, cluster, name string, retentionDays int32) (*LogGroup, error) {
	op := &EnsureOperation[*LogGroup]{
		Name:         name,
		ResourceType: "log group",
		Get: func(ctx context.Context) (*LogGroup, bool, error) {
			return c.findLogGroup(ctx, name)
		},
		Create: func(ctx context.Context) (*LogGroup, error) {
			_, err := c.logs.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
				LogGroupName: ptr.String(name),
				Tags: tags.NewBuilder(cluster).
					WithRole(tags.RoleCluster).
					Build(),
			})
			if err != nil {
				return nil, err
			}
			if err := c.putRetention(ctx, name, retentionDays); err != nil {
				return nil, err
			}
			group, found, err := c.findLogGroup(ctx, name)
			if err != nil {
				return nil, err
			}
			if !found {
				return &LogGroup{Name: name, RetentionDays: retentionDays}, nil
			}
			return group, nil
		},
		Update: func(ctx context.Context, existing *LogGroup) (*LogGroup, bool, error) {
			if existing.RetentionDays == retentionDays {
				return existing, false, nil
			}
			if err := c.putRetention(ctx, name, retentionDays); err != nil {
				return nil, false, err
			}
			existing.RetentionDays = retentionDays
			return existing, true, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// DeleteLogGroup removes the log group and everything in it.
func (c *RealClient) DeleteLogGroup(ctx context.Context, name string) error {
	return c.retryDo(ctx, func() error {
		_, err := c.logs.DeleteLogGroup(ctx, &cloudwatchlogs.DeleteLogGroupInput{
			LogGroupName: ptr.String(name),
		})
		if err != nil && IsNotFound(err) {
			return nil
		}
		return classify(err)
	})
}

func (c *RealClient) findLogGroup(ctx context.Context, name string) (*LogGroup, bool, error) {
	out, err := c.logs.DescribeLogGroups(ctx, &cloudwatchlogs.DescribeLogGroupsInput{
		LogGroupNamePrefix: ptr.String(name),
	})
	if err != nil {
		return nil, false, fmt.Errorf("looking up log group %s: %w", name, err)
	}
	// Prefix matching can return siblings, pick the exact name.
	for _, group := range out.LogGroups {
		if awssdk.ToString(group.LogGroupName) != name {
			continue
		}
		return &LogGroup{
			Name:          name,
			ARN:           awssdk.ToString(group.Arn),
			RetentionDays: awssdk.ToInt32(group.RetentionInDays),
		}, true, nil
	}
	return nil, false, nil
}

func (c *RealClient) putRetention(ctx context.Context, name string, days int32) error {
	_, err := c.logs.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    ptr.String(name),
		RetentionInDays: ptr.Int32(days),
	})
	if err != nil {
		return fmt.Errorf("setting retention on %s: %w", name, err)
	}
	return nil
}
