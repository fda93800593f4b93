package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"

	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/util/ptr"
	"github.com/ibraheemcisse/ekstack/internal/util/tags"
)

// EnsureNodeGroup provisions a managed node group and waits until every
// node has joined the cluster.
func (c *RealClient) EnsureNodeGroup(ctx context.Context, spec NodeGroupSpec) (*NodeGroup, error) {
	op := &EnsureOperation[*NodeGroup]{
		Name:         spec.Name,
		ResourceType: "node group",
		Get: func(ctx context.Context) (*NodeGroup, bool, error) {
			return c.findNodeGroup(ctx, spec.Cluster, spec.Name)
		},
		Create: func(ctx context.Context) (*NodeGroup, error) {
			input := &eks.CreateNodegroupInput{
				ClusterName:   ptr.String(spec.Cluster),
				NodegroupName: ptr.String(spec.Name),
				NodeRole:      ptr.String(spec.RoleARN),
				Subnets:       spec.SubnetIDs,
				InstanceTypes: []string{spec.InstanceType},
				CapacityType:  capacityTypeFromConfig(spec.CapacityType),
				DiskSize:      ptr.Int32(spec.DiskGB),
				ScalingConfig: &ekstypes.NodegroupScalingConfig{
					MinSize:     ptr.Int32(spec.Min),
					DesiredSize: ptr.Int32(spec.Desired),
					MaxSize:     ptr.Int32(spec.Max),
				},
				Labels: spec.Labels,
				Tags: tags.NewBuilder(spec.Cluster).
					WithRole(tags.RoleNode).
					WithNodeGroup(spec.Name).
					Build(),
			}
			for _, taint := range spec.Taints {
				input.Taints = append(input.Taints, ekstypes.Taint{
					Key:    ptr.String(taint.Key),
					Value:  ptr.String(taint.Value),
					Effect: taintEffectFromConfig(taint.Effect),
				})
			}
			if spec.SSHKeyName != "" {
				input.RemoteAccess = &ekstypes.RemoteAccessConfig{
					Ec2SshKey: ptr.String(spec.SSHKeyName),
				}
			}

			out, err := c.eks.CreateNodegroup(ctx, input)
			if err != nil {
				return nil, err
			}
			return nodeGroupFromAPI(out.Nodegroup), nil
		},
		Wait: func(ctx context.Context, _ *NodeGroup) (*NodeGroup, error) {
			return c.waitNodeGroupActive(ctx, spec.Cluster, spec.Name)
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// GetNodeGroup resolves a node group, returning nil when it does not exist.
func (c *RealClient) GetNodeGroup(ctx context.Context, cluster, name string) (*NodeGroup, error) {
	group, found, err := c.findNodeGroup(ctx, cluster, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return group, nil
}

// ListNodeGroups lists every node group attached to a cluster.
func (c *RealClient) ListNodeGroups(ctx context.Context, cluster string) ([]NodeGroup, error) {
	list, err := c.eks.ListNodegroups(ctx, &eks.ListNodegroupsInput{ClusterName: ptr.String(cluster)})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing node groups: %w", err)
	}

	groups := make([]NodeGroup, 0, len(list.Nodegroups))
	for _, name := range list.Nodegroups {
		group, found, err := c.findNodeGroup(ctx, cluster, name)
		if err != nil {
			return nil, err
		}
		if found {
			groups = append(groups, *group)
		}
	}
	return groups, nil
}

// ScaleNodeGroup changes the scaling bounds of a node group and waits for
// the change to be applied.
func (c *RealClient) ScaleNodeGroup(ctx context.Context, cluster, name string, min, desired, max int32) error {
	err := c.retryDo(ctx, func() error {
		_, uerr := c.eks.UpdateNodegroupConfig(ctx, &eks.UpdateNodegroupConfigInput{
			ClusterName:   ptr.String(cluster),
			NodegroupName: ptr.String(name),
			ScalingConfig: &ekstypes.NodegroupScalingConfig{
				MinSize:     ptr.Int32(min),
				DesiredSize: ptr.Int32(desired),
				MaxSize:     ptr.Int32(max),
			},
		})
		return classify(uerr)
	})
	if err != nil {
		return fmt.Errorf("scaling node group %s: %w", name, err)
	}
	_, err = c.waitNodeGroupActive(ctx, cluster, name)
	return err
}

// UpgradeNodeGroup starts a rolling replacement of the group's nodes onto
// the given Kubernetes version and waits for it to finish.
func (c *RealClient) UpgradeNodeGroup(ctx context.Context, cluster, name, version string) error {
	err := c.retryDo(ctx, func() error {
		_, uerr := c.eks.UpdateNodegroupVersion(ctx, &eks.UpdateNodegroupVersionInput{
			ClusterName:   ptr.String(cluster),
			NodegroupName: ptr.String(name),
			Version:       ptr.String(version),
		})
		return classify(uerr)
	})
	if err != nil {
		return fmt.Errorf("upgrading node group %s: %w", name, err)
	}
	_, err = c.waitNodeGroupActive(ctx, cluster, name)
	return err
}

// DeleteNodeGroup removes a node group and waits until its instances are
// gone.
func (c *RealClient) DeleteNodeGroup(ctx context.Context, cluster, name string) error {
	op := &DeleteOperation[*NodeGroup]{
		Name:         name,
		ResourceType: "node group",
		Get: func(ctx context.Context) (*NodeGroup, bool, error) {
			return c.findNodeGroup(ctx, cluster, name)
		},
		Delete: func(ctx context.Context, _ *NodeGroup) error {
			_, err := c.eks.DeleteNodegroup(ctx, &eks.DeleteNodegroupInput{
				ClusterName:   ptr.String(cluster),
				NodegroupName: ptr.String(name),
			})
			return err
		},
		Wait: func(ctx context.Context) error {
			waiter := eks.NewNodegroupDeletedWaiter(c.eks)
			return waiter.Wait(ctx, &eks.DescribeNodegroupInput{
				ClusterName:   ptr.String(cluster),
				NodegroupName: ptr.String(name),
			}, c.timeouts.Destroy)
		},
	}
	return op.Execute(ctx, c)
}

func (c *RealClient) waitNodeGroupActive(ctx context.Context, cluster, name string) (*NodeGroup, error) {
	waiter := eks.NewNodegroupActiveWaiter(c.eks)
	out, err := waiter.WaitForOutput(ctx, &eks.DescribeNodegroupInput{
		ClusterName:   ptr.String(cluster),
		NodegroupName: ptr.String(name),
	}, c.timeouts.NodeGroupCreate)
	if err != nil {
		return nil, fmt.Errorf("waiting for node group %s: %w", name, err)
	}
	return nodeGroupFromAPI(out.Nodegroup), nil
}

func (c *RealClient) findNodeGroup(ctx context.Context, cluster, name string) (*NodeGroup, bool, error) {
	out, err := c.eks.DescribeNodegroup(ctx, &eks.DescribeNodegroupInput{
		ClusterName:   ptr.String(cluster),
		NodegroupName: ptr.String(name),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up node group %s: %w", name, err)
	}
	return nodeGroupFromAPI(out.Nodegroup), true, nil
}

func capacityTypeFromConfig(capacityType string) ekstypes.CapacityTypes {
	if config.CapacityType(capacityType) == config.CapacitySpot {
		return ekstypes.CapacityTypesSpot
	}
	return ekstypes.CapacityTypesOnDemand
}

func taintEffectFromConfig(effect string) ekstypes.TaintEffect {
	switch config.TaintEffect(effect) {
	case config.TaintPreferNoSchedule:
		return ekstypes.TaintEffectPreferNoSchedule
	case config.TaintNoExecute:
		return ekstypes.TaintEffectNoExecute
	default:
		return ekstypes.TaintEffectNoSchedule
	}
}

func nodeGroupFromAPI(api *ekstypes.Nodegroup) *NodeGroup {
	group := &NodeGroup{
		Name:    awssdk.ToString(api.NodegroupName),
		ARN:     awssdk.ToString(api.NodegroupArn),
		Status:  string(api.Status),
		Version: awssdk.ToString(api.Version),
	}
	if len(api.InstanceTypes) > 0 {
		group.InstanceType = api.InstanceTypes[0]
	}
	switch api.CapacityType {
	case ekstypes.CapacityTypesSpot:
		group.CapacityType = string(config.CapacitySpot)
	default:
		group.CapacityType = string(config.CapacityOnDemand)
	}
	if api.ScalingConfig != nil {
		group.Min = awssdk.ToInt32(api.ScalingConfig.MinSize)
		group.Desired = awssdk.ToInt32(api.ScalingConfig.DesiredSize)
		group.Max = awssdk.ToInt32(api.ScalingConfig.MaxSize)
	}
	return group
}
