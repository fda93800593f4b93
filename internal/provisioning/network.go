package provisioning

import (
	"fmt"

	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
)

// NetworkPhase provisions the VPC: subnets across availability zones, the
// internet gateway, NAT gateways per the configured strategy, route
// tables, and the cluster and node security groups.
type NetworkPhase struct{}

// NewNetworkPhase creates the network phase.
func NewNetworkPhase() *NetworkPhase {
	return &NetworkPhase{}
}

// Name implements Phase.
func (p *NetworkPhase) Name() string { return "network" }

// Provision implements Phase.
func (p *NetworkPhase) Provision(ctx *Context) error {
	network, err := ctx.Cloud.EnsureNetwork(ctx, aws.NetworkSpec{
		Cluster:           ctx.Config.Name,
		CIDR:              ctx.Config.Network.CIDR,
		AvailabilityZones: ctx.Config.Network.AvailabilityZones,
		NATStrategy:       string(ctx.Config.Network.NAT),
	})
	if err != nil {
		return fmt.Errorf("failed to ensure network: %w", err)
	}

	ctx.State.Network = network
	logResourceReady(ctx.Observer, p.Name(), network.VPC.ID,
		fmt.Sprintf("VPC %s with %d public and %d private subnets",
			network.VPC.CIDR, len(network.PublicSubnets), len(network.PrivateSubnets)))
	return nil
}
