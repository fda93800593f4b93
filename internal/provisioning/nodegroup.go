package provisioning

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
	"github.com/ibraheemcisse/ekstack/internal/util/async"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

// NodeGroupPhase provisions one managed node group per configured pool and
// waits until every group's nodes joined the cluster. Groups are independent
// of each other, so they are created in parallel.
type NodeGroupPhase struct{}

// NewNodeGroupPhase creates the node group phase.
func NewNodeGroupPhase() *NodeGroupPhase {
	return &NodeGroupPhase{}
}

// Name implements Phase.
func (p *NodeGroupPhase) Name() string { return "nodegroup" }

// Provision implements Phase.
func (p *NodeGroupPhase) Provision(ctx *Context) error {
	if ctx.State.Cluster == nil {
		return fmt.Errorf("cluster phase must run first")
	}
	if ctx.State.NodeRole == nil {
		return fmt.Errorf("iam phase must run first")
	}

	var (
		mu     sync.Mutex
		groups []aws.NodeGroup
	)

	tasks := make([]async.Task, 0, len(ctx.Config.NodeGroups))
	for _, pool := range ctx.Config.NodeGroups {
		spec := p.groupSpec(ctx, pool.Name)

		tasks = append(tasks, async.Task{
			Name: spec.Name,
			Func: func(taskCtx context.Context) error {
				group, err := ctx.Cloud.EnsureNodeGroup(taskCtx, spec)
				if err != nil {
					return err
				}
				mu.Lock()
				groups = append(groups, *group)
				mu.Unlock()

				logResourceReady(ctx.Observer, p.Name(), group.Name,
					fmt.Sprintf("%d/%d/%d x %s (%s)",
						group.Min, group.Desired, group.Max,
						group.InstanceType, group.CapacityType))
				return nil
			},
		})
	}

	if err := async.RunParallel(ctx, tasks); err != nil {
		return err
	}

	// Parallel completion order is nondeterministic; keep the state stable.
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	ctx.State.NodeGroups = groups

	return nil
}

// groupSpec maps one configured pool onto the cloud node group spec.
func (p *NodeGroupPhase) groupSpec(ctx *Context, pool string) aws.NodeGroupSpec {
	group := ctx.Config.NodeGroup(pool)

	spec := aws.NodeGroupSpec{
		Cluster:      ctx.Config.Name,
		Name:         naming.NodeGroup(ctx.Config.Name, group.Name),
		RoleARN:      ctx.State.NodeRole.ARN,
		SubnetIDs:    subnetIDs(ctx.State.Network.PrivateSubnets),
		InstanceType: group.InstanceType,
		CapacityType: string(group.CapacityType),
		Min:          int32(group.Min),
		Desired:      int32(group.Desired),
		Max:          int32(group.Max),
		DiskGB:       int32(group.DiskGB),
		Labels:       group.Labels,
	}
	if ctx.State.KeyPair != nil {
		spec.SSHKeyName = ctx.State.KeyPair.Name
	}
	for _, taint := range group.Taints {
		spec.Taints = append(spec.Taints, aws.NodeTaint{
			Key:    taint.Key,
			Value:  taint.Value,
			Effect: string(taint.Effect),
		})
	}
	return spec
}
