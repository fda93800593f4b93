package aws

import (
	"context"
	"fmt"
	"sort"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
	"github.com/ibraheemcisse/ekstack/internal/util/ptr"
	"github.com/ibraheemcisse/ekstack/internal/util/tags"
)

const natGatewayWait = 10 * time.Minute

// EnsureNetwork provisions the full cluster network: VPC, subnets across
// availability zones, internet gateway, NAT gateways per strategy, route
// tables, and the base security groups. Re-running against an existing
// network is a no-op.
func (c *RealClient) EnsureNetwork(ctx context.Context, spec NetworkSpec) (*Network, error) {
	plan, err := config.PlanSubnets(spec.CIDR, spec.AvailabilityZones)
	if err != nil {
		return nil, fmt.Errorf("planning subnets: %w", err)
	}

	zones, err := c.availabilityZones(ctx, spec.AvailabilityZones)
	if err != nil {
		return nil, err
	}

	vpc, err := c.ensureVPC(ctx, spec.Cluster, spec.CIDR)
	if err != nil {
		return nil, err
	}

	network := &Network{VPC: *vpc}

	for i, cidr := range plan.Public {
		subnet, err := c.ensureSubnet(ctx, spec.Cluster, vpc.ID, "public", i, cidr, zones[i])
		if err != nil {
			return nil, err
		}
		network.PublicSubnets = append(network.PublicSubnets, *subnet)
	}
	for i, cidr := range plan.Private {
		subnet, err := c.ensureSubnet(ctx, spec.Cluster, vpc.ID, "private", i, cidr, zones[i])
		if err != nil {
			return nil, err
		}
		network.PrivateSubnets = append(network.PrivateSubnets, *subnet)
	}

	igw, err := c.ensureInternetGateway(ctx, spec.Cluster, vpc.ID)
	if err != nil {
		return nil, err
	}

	nats, err := c.ensureNATGateways(ctx, spec.Cluster, spec.NATStrategy, network.PublicSubnets)
	if err != nil {
		return nil, err
	}

	if err := c.ensureRouting(ctx, spec.Cluster, vpc.ID, igw.ID, spec.NATStrategy, nats, network.PublicSubnets, network.PrivateSubnets); err != nil {
		return nil, err
	}

	clusterSG, err := c.ensureSecurityGroup(ctx, spec.Cluster, vpc.ID,
		naming.ClusterSecurityGroup(spec.Cluster), "Additional security group for the EKS control plane")
	if err != nil {
		return nil, err
	}
	network.ClusterSecurity = *clusterSG

	nodeSG, err := c.ensureSecurityGroup(ctx, spec.Cluster, vpc.ID,
		naming.NodeSecurityGroup(spec.Cluster), "Shared security group for worker nodes")
	if err != nil {
		return nil, err
	}
	if err := c.authorizeIngressFromGroup(ctx, nodeSG.ID, nodeSG.ID, "-1", -1, -1); err != nil {
		return nil, fmt.Errorf("allowing node-to-node traffic: %w", err)
	}
	network.NodeSecurity = *nodeSG

	return network, nil
}

// GetNetwork looks the cluster network up by tags. It returns nil when the
// VPC does not exist.
func (c *RealClient) GetNetwork(ctx context.Context, cluster string) (*Network, error) {
	vpc, found, err := c.findVPC(ctx, cluster)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	network := &Network{VPC: *vpc}

	out, err := c.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: []ec2types.Filter{clusterFilter(cluster), vpcFilter(vpc.ID)},
	})
	if err != nil {
		return nil, fmt.Errorf("listing subnets: %w", err)
	}
	for _, s := range out.Subnets {
		subnet := Subnet{
			ID:               awssdk.ToString(s.SubnetId),
			CIDR:             awssdk.ToString(s.CidrBlock),
			AvailabilityZone: awssdk.ToString(s.AvailabilityZone),
			Public:           awssdk.ToBool(s.MapPublicIpOnLaunch),
		}
		if subnet.Public {
			network.PublicSubnets = append(network.PublicSubnets, subnet)
		} else {
			network.PrivateSubnets = append(network.PrivateSubnets, subnet)
		}
	}
	sortSubnets(network.PublicSubnets)
	sortSubnets(network.PrivateSubnets)

	if sg, found, err := c.findSecurityGroup(ctx, vpc.ID, naming.ClusterSecurityGroup(cluster)); err != nil {
		return nil, err
	} else if found {
		network.ClusterSecurity = *sg
	}
	if sg, found, err := c.findSecurityGroup(ctx, vpc.ID, naming.NodeSecurityGroup(cluster)); err != nil {
		return nil, err
	} else if found {
		network.NodeSecurity = *sg
	}

	return network, nil
}

// DeleteNetwork tears the cluster network down in dependency order: NAT
// gateways, elastic IPs, security groups, subnets, route tables, internet
// gateway, VPC. Missing pieces are skipped.
func (c *RealClient) DeleteNetwork(ctx context.Context, cluster string) error {
	vpc, found, err := c.findVPC(ctx, cluster)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if err := c.deleteNATGateways(ctx, cluster); err != nil {
		return err
	}
	if err := c.releaseAddresses(ctx, cluster); err != nil {
		return err
	}
	if err := c.deleteSecurityGroups(ctx, vpc.ID); err != nil {
		return err
	}
	if err := c.deleteSubnets(ctx, vpc.ID); err != nil {
		return err
	}
	if err := c.deleteRouteTables(ctx, vpc.ID); err != nil {
		return err
	}
	if err := c.deleteInternetGateway(ctx, vpc.ID); err != nil {
		return err
	}

	op := &DeleteOperation[*VPC]{
		Name:         vpc.ID,
		ResourceType: "VPC",
		Get: func(ctx context.Context) (*VPC, bool, error) {
			return c.findVPC(ctx, cluster)
		},
		Delete: func(ctx context.Context, v *VPC) error {
			_, err := c.ec2.DeleteVpc(ctx, &ec2.DeleteVpcInput{VpcId: ptr.String(v.ID)})
			return err
		},
	}
	return op.Execute(ctx, c)
}

func (c *RealClient) availabilityZones(ctx context.Context, count int) ([]string, error) {
	out, err := c.ec2.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []ec2types.Filter{
			{Name: ptr.String("state"), Values: []string{"available"}},
			{Name: ptr.String("zone-type"), Values: []string{"availability-zone"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing availability zones: %w", err)
	}

	zones := make([]string, 0, len(out.AvailabilityZones))
	for _, az := range out.AvailabilityZones {
		zones = append(zones, awssdk.ToString(az.ZoneName))
	}
	sort.Strings(zones)

	if len(zones) < count {
		return nil, fmt.Errorf("region %s has %d availability zones, need %d", c.region, len(zones), count)
	}
	return zones[:count], nil
}

func (c *RealClient) findVPC(ctx context.Context, cluster string) (*VPC, bool, error) {
	out, err := c.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: []ec2types.Filter{clusterFilter(cluster)},
	})
	if err != nil {
		return nil, false, fmt.Errorf("looking up VPC: %w", err)
	}
	if len(out.Vpcs) == 0 {
		return nil, false, nil
	}
	v := out.Vpcs[0]
	return &VPC{ID: awssdk.ToString(v.VpcId), CIDR: awssdk.ToString(v.CidrBlock)}, true, nil
}

func (c *RealClient) ensureVPC(ctx context.Context, cluster, cidr string) (*VPC, error) {
	name := naming.VPC(cluster)
	op := &EnsureOperation[*VPC]{
		Name:         name,
		ResourceType: "VPC",
		Get: func(ctx context.Context) (*VPC, bool, error) {
			return c.findVPC(ctx, cluster)
		},
		Validate: func(v *VPC) error {
			if v.CIDR != cidr {
				return fmt.Errorf("has CIDR %s, configuration wants %s", v.CIDR, cidr)
			}
			return nil
		},
		Create: func(ctx context.Context) (*VPC, error) {
			out, err := c.ec2.CreateVpc(ctx, &ec2.CreateVpcInput{
				CidrBlock: ptr.String(cidr),
				TagSpecifications: ec2TagSpec(ec2types.ResourceTypeVpc,
					tags.NewBuilder(cluster).WithName(name).WithRole(tags.RoleNetwork).Build()),
			})
			if err != nil {
				return nil, err
			}
			vpcID := awssdk.ToString(out.Vpc.VpcId)

			// EKS requires DNS resolution and hostnames inside the VPC.
			for _, attr := range []ec2.ModifyVpcAttributeInput{
				{VpcId: ptr.String(vpcID), EnableDnsSupport: &ec2types.AttributeBooleanValue{Value: ptr.Bool(true)}},
				{VpcId: ptr.String(vpcID), EnableDnsHostnames: &ec2types.AttributeBooleanValue{Value: ptr.Bool(true)}},
			} {
				if _, err := c.ec2.ModifyVpcAttribute(ctx, &attr); err != nil {
					return nil, fmt.Errorf("enabling VPC DNS attributes: %w", err)
				}
			}
			return &VPC{ID: vpcID, CIDR: cidr}, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

func (c *RealClient) ensureSubnet(ctx context.Context, cluster, vpcID, visibility string, index int, cidr, zone string) (*Subnet, error) {
	name := naming.Subnet(cluster, visibility, index)
	public := visibility == "public"

	subnetTags := tags.NewBuilder(cluster).
		WithName(name).
		WithRole(tags.RoleNetwork).
		Merge(map[string]string{tags.SharedCluster(cluster): "shared"}).
		Build()
	if public {
		subnetTags[tags.KeyELBRole] = "1"
	} else {
		subnetTags[tags.KeyInternalELBRole] = "1"
	}

	op := &EnsureOperation[*Subnet]{
		Name:         name,
		ResourceType: "subnet",
		Get: func(ctx context.Context) (*Subnet, bool, error) {
			out, err := c.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
				Filters: []ec2types.Filter{nameFilter(name), vpcFilter(vpcID)},
			})
			if err != nil {
				return nil, false, fmt.Errorf("looking up subnet: %w", err)
			}
			if len(out.Subnets) == 0 {
				return nil, false, nil
			}
			s := out.Subnets[0]
			return &Subnet{
				ID:               awssdk.ToString(s.SubnetId),
				CIDR:             awssdk.ToString(s.CidrBlock),
				AvailabilityZone: awssdk.ToString(s.AvailabilityZone),
				Public:           public,
			}, true, nil
		},
		Validate: func(s *Subnet) error {
			if s.CIDR != cidr {
				return fmt.Errorf("has CIDR %s, plan wants %s", s.CIDR, cidr)
			}
			return nil
		},
		Create: func(ctx context.Context) (*Subnet, error) {
			out, err := c.ec2.CreateSubnet(ctx, &ec2.CreateSubnetInput{
				VpcId:             ptr.String(vpcID),
				CidrBlock:         ptr.String(cidr),
				AvailabilityZone:  ptr.String(zone),
				TagSpecifications: ec2TagSpec(ec2types.ResourceTypeSubnet, subnetTags),
			})
			if err != nil {
				return nil, err
			}
			subnetID := awssdk.ToString(out.Subnet.SubnetId)

			if public {
				_, err = c.ec2.ModifySubnetAttribute(ctx, &ec2.ModifySubnetAttributeInput{
					SubnetId:            ptr.String(subnetID),
					MapPublicIpOnLaunch: &ec2types.AttributeBooleanValue{Value: ptr.Bool(true)},
				})
				if err != nil {
					return nil, fmt.Errorf("enabling public IPs on launch: %w", err)
				}
			}
			return &Subnet{ID: subnetID, CIDR: cidr, AvailabilityZone: zone, Public: public}, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

func (c *RealClient) ensureInternetGateway(ctx context.Context, cluster, vpcID string) (*InternetGateway, error) {
	name := naming.InternetGateway(cluster)
	op := &EnsureOperation[*InternetGateway]{
		Name:         name,
		ResourceType: "internet gateway",
		Get: func(ctx context.Context) (*InternetGateway, bool, error) {
			out, err := c.ec2.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
				Filters: []ec2types.Filter{nameFilter(name)},
			})
			if err != nil {
				return nil, false, fmt.Errorf("looking up internet gateway: %w", err)
			}
			if len(out.InternetGateways) == 0 {
				return nil, false, nil
			}
			igw := out.InternetGateways[0]
			return &InternetGateway{
				ID:       awssdk.ToString(igw.InternetGatewayId),
				Attached: len(igw.Attachments) > 0,
			}, true, nil
		},
		Create: func(ctx context.Context) (*InternetGateway, error) {
			out, err := c.ec2.CreateInternetGateway(ctx, &ec2.CreateInternetGatewayInput{
				TagSpecifications: ec2TagSpec(ec2types.ResourceTypeInternetGateway,
					tags.NewBuilder(cluster).WithName(name).WithRole(tags.RoleNetwork).Build()),
			})
			if err != nil {
				return nil, err
			}
			return &InternetGateway{ID: awssdk.ToString(out.InternetGateway.InternetGatewayId)}, nil
		},
		Update: func(ctx context.Context, igw *InternetGateway) (*InternetGateway, bool, error) {
			if igw.Attached {
				return igw, false, nil
			}
			if err := c.attachInternetGateway(ctx, igw.ID, vpcID); err != nil {
				return nil, false, err
			}
			igw.Attached = true
			return igw, true, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	igw := result.Resource
	if !igw.Attached {
		if err := c.attachInternetGateway(ctx, igw.ID, vpcID); err != nil {
			return nil, err
		}
		igw.Attached = true
	}
	return igw, nil
}

func (c *RealClient) attachInternetGateway(ctx context.Context, igwID, vpcID string) error {
	_, err := c.ec2.AttachInternetGateway(ctx, &ec2.AttachInternetGatewayInput{
		InternetGatewayId: ptr.String(igwID),
		VpcId:             ptr.String(vpcID),
	})
	if err != nil && !IsAlreadyExists(err) {
		return fmt.Errorf("attaching internet gateway: %w", err)
	}
	return nil
}

func (c *RealClient) ensureNATGateways(ctx context.Context, cluster string, strategy string, publicSubnets []Subnet) ([]NATGateway, error) {
	var count int
	switch config.NATStrategy(strategy) {
	case config.NATNone:
		return nil, nil
	case config.NATPerAZ:
		count = len(publicSubnets)
	default:
		count = 1
	}

	nats := make([]NATGateway, 0, count)
	for i := 0; i < count; i++ {
		nat, err := c.ensureNATGateway(ctx, cluster, i, publicSubnets[i].ID)
		if err != nil {
			return nil, err
		}
		nats = append(nats, *nat)
	}
	return nats, nil
}

func (c *RealClient) ensureNATGateway(ctx context.Context, cluster string, index int, subnetID string) (*NATGateway, error) {
	name := naming.NATGateway(cluster, index)
	op := &EnsureOperation[*NATGateway]{
		Name:         name,
		ResourceType: "NAT gateway",
		Get: func(ctx context.Context) (*NATGateway, bool, error) {
			out, err := c.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
				Filter: []ec2types.Filter{
					nameFilter(name),
					{Name: ptr.String("state"), Values: []string{"pending", "available"}},
				},
			})
			if err != nil {
				return nil, false, fmt.Errorf("looking up NAT gateway: %w", err)
			}
			if len(out.NatGateways) == 0 {
				return nil, false, nil
			}
			gw := out.NatGateways[0]
			nat := &NATGateway{
				ID:       awssdk.ToString(gw.NatGatewayId),
				SubnetID: awssdk.ToString(gw.SubnetId),
				State:    string(gw.State),
			}
			if len(gw.NatGatewayAddresses) > 0 {
				nat.AllocationID = awssdk.ToString(gw.NatGatewayAddresses[0].AllocationId)
			}
			return nat, true, nil
		},
		Create: func(ctx context.Context) (*NATGateway, error) {
			allocationID, err := c.allocateAddress(ctx, cluster, name)
			if err != nil {
				return nil, err
			}
			out, err := c.ec2.CreateNatGateway(ctx, &ec2.CreateNatGatewayInput{
				SubnetId:     ptr.String(subnetID),
				AllocationId: ptr.String(allocationID),
				TagSpecifications: ec2TagSpec(ec2types.ResourceTypeNatgateway,
					tags.NewBuilder(cluster).WithName(name).WithRole(tags.RoleNetwork).Build()),
			})
			if err != nil {
				return nil, err
			}
			return &NATGateway{
				ID:           awssdk.ToString(out.NatGateway.NatGatewayId),
				SubnetID:     subnetID,
				AllocationID: allocationID,
				State:        string(out.NatGateway.State),
			}, nil
		},
		Wait: func(ctx context.Context, nat *NATGateway) (*NATGateway, error) {
			waiter := ec2.NewNatGatewayAvailableWaiter(c.ec2)
			err := waiter.Wait(ctx, &ec2.DescribeNatGatewaysInput{
				NatGatewayIds: []string{nat.ID},
			}, natGatewayWait)
			if err != nil {
				return nil, err
			}
			nat.State = "available"
			return nat, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

func (c *RealClient) allocateAddress(ctx context.Context, cluster, name string) (string, error) {
	// Reuse a previously allocated address if an earlier run died between
	// allocation and NAT gateway creation.
	out, err := c.ec2.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{
		Filters: []ec2types.Filter{nameFilter(name)},
	})
	if err != nil {
		return "", fmt.Errorf("looking up elastic IP: %w", err)
	}
	for _, addr := range out.Addresses {
		if addr.AssociationId == nil {
			return awssdk.ToString(addr.AllocationId), nil
		}
	}

	alloc, err := c.ec2.AllocateAddress(ctx, &ec2.AllocateAddressInput{
		Domain: ec2types.DomainTypeVpc,
		TagSpecifications: ec2TagSpec(ec2types.ResourceTypeElasticIp,
			tags.NewBuilder(cluster).WithName(name).WithRole(tags.RoleNetwork).Build()),
	})
	if err != nil {
		return "", fmt.Errorf("allocating elastic IP: %w", err)
	}
	return awssdk.ToString(alloc.AllocationId), nil
}

func (c *RealClient) ensureRouting(ctx context.Context, cluster, vpcID, igwID string, strategy string, nats []NATGateway, public, private []Subnet) error {
	publicRT, err := c.ensureRouteTable(ctx, cluster, vpcID, "public", 0)
	if err != nil {
		return err
	}
	if err := c.ensureRoute(ctx, publicRT.ID, "0.0.0.0/0", routeTargetIGW, igwID); err != nil {
		return err
	}
	for _, subnet := range public {
		if err := c.associateRouteTable(ctx, publicRT.ID, subnet.ID); err != nil {
			return err
		}
	}

	if config.NATStrategy(strategy) == config.NATNone || len(nats) == 0 {
		return nil
	}

	// Single strategy shares one table; per-AZ gets a table per zone so
	// each private subnet exits through its local NAT gateway.
	for i, subnet := range private {
		tableIndex, natIndex := 0, 0
		if config.NATStrategy(strategy) == config.NATPerAZ {
			tableIndex, natIndex = i, i%len(nats)
		}
		privateRT, err := c.ensureRouteTable(ctx, cluster, vpcID, "private", tableIndex)
		if err != nil {
			return err
		}
		if err := c.ensureRoute(ctx, privateRT.ID, "0.0.0.0/0", routeTargetNAT, nats[natIndex].ID); err != nil {
			return err
		}
		if err := c.associateRouteTable(ctx, privateRT.ID, subnet.ID); err != nil {
			return err
		}
	}
	return nil
}

func (c *RealClient) ensureRouteTable(ctx context.Context, cluster, vpcID, visibility string, index int) (*RouteTable, error) {
	name := naming.RouteTable(cluster, visibility, index)
	op := &EnsureOperation[*RouteTable]{
		Name:         name,
		ResourceType: "route table",
		Get: func(ctx context.Context) (*RouteTable, bool, error) {
			out, err := c.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
				Filters: []ec2types.Filter{nameFilter(name), vpcFilter(vpcID)},
			})
			if err != nil {
				return nil, false, fmt.Errorf("looking up route table: %w", err)
			}
			if len(out.RouteTables) == 0 {
				return nil, false, nil
			}
			return &RouteTable{ID: awssdk.ToString(out.RouteTables[0].RouteTableId)}, true, nil
		},
		Create: func(ctx context.Context) (*RouteTable, error) {
			out, err := c.ec2.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
				VpcId: ptr.String(vpcID),
				TagSpecifications: ec2TagSpec(ec2types.ResourceTypeRouteTable,
					tags.NewBuilder(cluster).WithName(name).WithRole(tags.RoleNetwork).Build()),
			})
			if err != nil {
				return nil, err
			}
			return &RouteTable{ID: awssdk.ToString(out.RouteTable.RouteTableId)}, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

type routeTarget int

const (
	routeTargetIGW routeTarget = iota
	routeTargetNAT
)

func (c *RealClient) ensureRoute(ctx context.Context, routeTableID, destination string, target routeTarget, targetID string) error {
	input := &ec2.CreateRouteInput{
		RouteTableId:         ptr.String(routeTableID),
		DestinationCidrBlock: ptr.String(destination),
	}
	switch target {
	case routeTargetIGW:
		input.GatewayId = ptr.String(targetID)
	case routeTargetNAT:
		input.NatGatewayId = ptr.String(targetID)
	}

	return c.retryDo(ctx, func() error {
		_, err := c.ec2.CreateRoute(ctx, input)
		if err != nil && IsAlreadyExists(err) {
			return nil
		}
		return classify(err)
	})
}

func (c *RealClient) associateRouteTable(ctx context.Context, routeTableID, subnetID string) error {
	return c.retryDo(ctx, func() error {
		_, err := c.ec2.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
			RouteTableId: ptr.String(routeTableID),
			SubnetId:     ptr.String(subnetID),
		})
		if err != nil && IsAlreadyExists(err) {
			return nil
		}
		return classify(err)
	})
}

func (c *RealClient) findSecurityGroup(ctx context.Context, vpcID, name string) (*SecurityGroup, bool, error) {
	out, err := c.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{
			{Name: ptr.String("group-name"), Values: []string{name}},
			vpcFilter(vpcID),
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("looking up security group %s: %w", name, err)
	}
	if len(out.SecurityGroups) == 0 {
		return nil, false, nil
	}
	sg := out.SecurityGroups[0]
	return &SecurityGroup{ID: awssdk.ToString(sg.GroupId), Name: name}, true, nil
}

func (c *RealClient) ensureSecurityGroup(ctx context.Context, cluster, vpcID, name, description string) (*SecurityGroup, error) {
	op := &EnsureOperation[*SecurityGroup]{
		Name:         name,
		ResourceType: "security group",
		Get: func(ctx context.Context) (*SecurityGroup, bool, error) {
			return c.findSecurityGroup(ctx, vpcID, name)
		},
		Create: func(ctx context.Context) (*SecurityGroup, error) {
			out, err := c.ec2.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
				GroupName:   ptr.String(name),
				Description: ptr.String(description),
				VpcId:       ptr.String(vpcID),
				TagSpecifications: ec2TagSpec(ec2types.ResourceTypeSecurityGroup,
					tags.NewBuilder(cluster).WithName(name).WithRole(tags.RoleNetwork).
						Merge(map[string]string{tags.SharedCluster(cluster): "shared"}).Build()),
			})
			if err != nil {
				return nil, err
			}
			return &SecurityGroup{ID: awssdk.ToString(out.GroupId), Name: name}, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// authorizeIngressFromGroup opens protocol/port range traffic from one
// security group into another. protocol "-1" with ports -1 means all
// traffic. Duplicate rules are ignored.
func (c *RealClient) authorizeIngressFromGroup(ctx context.Context, groupID, sourceGroupID, protocol string, fromPort, toPort int32) error {
	permission := ec2types.IpPermission{
		IpProtocol:       ptr.String(protocol),
		UserIdGroupPairs: []ec2types.UserIdGroupPair{{GroupId: ptr.String(sourceGroupID)}},
	}
	if protocol != "-1" {
		permission.FromPort = ptr.Int32(fromPort)
		permission.ToPort = ptr.Int32(toPort)
	}

	return c.retryDo(ctx, func() error {
		_, err := c.ec2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:       ptr.String(groupID),
			IpPermissions: []ec2types.IpPermission{permission},
		})
		if err != nil && IsAlreadyExists(err) {
			return nil
		}
		return classify(err)
	})
}

func (c *RealClient) deleteNATGateways(ctx context.Context, cluster string) error {
	out, err := c.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		Filter: []ec2types.Filter{clusterFilter(cluster)},
	})
	if err != nil {
		return fmt.Errorf("listing NAT gateways: %w", err)
	}

	var pending []string
	for _, gw := range out.NatGateways {
		switch gw.State {
		case ec2types.NatGatewayStateDeleted, ec2types.NatGatewayStateFailed:
			continue
		}
		id := awssdk.ToString(gw.NatGatewayId)
		if gw.State != ec2types.NatGatewayStateDeleting {
			err := c.retryDo(ctx, func() error {
				_, derr := c.ec2.DeleteNatGateway(ctx, &ec2.DeleteNatGatewayInput{NatGatewayId: ptr.String(id)})
				if derr != nil && IsNotFound(derr) {
					return nil
				}
				return classify(derr)
			})
			if err != nil {
				return fmt.Errorf("deleting NAT gateway %s: %w", id, err)
			}
		}
		pending = append(pending, id)
	}

	if len(pending) == 0 {
		return nil
	}
	waiter := ec2.NewNatGatewayDeletedWaiter(c.ec2)
	err = waiter.Wait(ctx, &ec2.DescribeNatGatewaysInput{NatGatewayIds: pending}, natGatewayWait)
	if err != nil {
		return fmt.Errorf("waiting for NAT gateways to delete: %w", err)
	}
	return nil
}

func (c *RealClient) releaseAddresses(ctx context.Context, cluster string) error {
	out, err := c.ec2.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{
		Filters: []ec2types.Filter{clusterFilter(cluster)},
	})
	if err != nil {
		return fmt.Errorf("listing elastic IPs: %w", err)
	}
	for _, addr := range out.Addresses {
		id := awssdk.ToString(addr.AllocationId)
		err := c.retryDo(ctx, func() error {
			_, rerr := c.ec2.ReleaseAddress(ctx, &ec2.ReleaseAddressInput{AllocationId: ptr.String(id)})
			if rerr != nil && IsNotFound(rerr) {
				return nil
			}
			return classify(rerr)
		})
		if err != nil {
			return fmt.Errorf("releasing elastic IP %s: %w", id, err)
		}
	}
	return nil
}

// deleteSecurityGroups removes every non-default group in the VPC. The VPC
// is dedicated to one cluster, so this also catches the group EKS creates
// for the control plane.
func (c *RealClient) deleteSecurityGroups(ctx context.Context, vpcID string) error {
	out, err := c.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{vpcFilter(vpcID)},
	})
	if err != nil {
		return fmt.Errorf("listing security groups: %w", err)
	}
	for _, sg := range out.SecurityGroups {
		if awssdk.ToString(sg.GroupName) == "default" {
			continue
		}
		id := awssdk.ToString(sg.GroupId)
		err := c.retryDo(ctx, func() error {
			_, derr := c.ec2.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{GroupId: ptr.String(id)})
			if derr != nil && IsNotFound(derr) {
				return nil
			}
			return classify(derr)
		})
		if err != nil {
			return fmt.Errorf("deleting security group %s: %w", id, err)
		}
	}
	return nil
}

func (c *RealClient) deleteSubnets(ctx context.Context, vpcID string) error {
	out, err := c.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: []ec2types.Filter{vpcFilter(vpcID)},
	})
	if err != nil {
		return fmt.Errorf("listing subnets: %w", err)
	}
	for _, subnet := range out.Subnets {
		id := awssdk.ToString(subnet.SubnetId)
		err := c.retryDo(ctx, func() error {
			_, derr := c.ec2.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{SubnetId: ptr.String(id)})
			if derr != nil && IsNotFound(derr) {
				return nil
			}
			return classify(derr)
		})
		if err != nil {
			return fmt.Errorf("deleting subnet %s: %w", id, err)
		}
	}
	return nil
}

func (c *RealClient) deleteRouteTables(ctx context.Context, vpcID string) error {
	out, err := c.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: []ec2types.Filter{vpcFilter(vpcID)},
	})
	if err != nil {
		return fmt.Errorf("listing route tables: %w", err)
	}
	for _, rt := range out.RouteTables {
		main := false
		for _, assoc := range rt.Associations {
			if awssdk.ToBool(assoc.Main) {
				main = true
				break
			}
		}
		if main {
			continue
		}
		id := awssdk.ToString(rt.RouteTableId)
		err := c.retryDo(ctx, func() error {
			_, derr := c.ec2.DeleteRouteTable(ctx, &ec2.DeleteRouteTableInput{RouteTableId: ptr.String(id)})
			if derr != nil && IsNotFound(derr) {
				return nil
			}
			return classify(derr)
		})
		if err != nil {
			return fmt.Errorf("deleting route table %s: %w", id, err)
		}
	}
	return nil
}

func (c *RealClient) deleteInternetGateway(ctx context.Context, vpcID string) error {
	out, err := c.ec2.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
		Filters: []ec2types.Filter{
			{Name: ptr.String("attachment.vpc-id"), Values: []string{vpcID}},
		},
	})
	if err != nil {
		return fmt.Errorf("listing internet gateways: %w", err)
	}
	for _, igw := range out.InternetGateways {
		id := awssdk.ToString(igw.InternetGatewayId)
		err := c.retryDo(ctx, func() error {
			_, derr := c.ec2.DetachInternetGateway(ctx, &ec2.DetachInternetGatewayInput{
				InternetGatewayId: ptr.String(id),
				VpcId:             ptr.String(vpcID),
			})
			if derr != nil && (IsNotFound(derr) || isAPIErrorCode(derr, "Gateway.NotAttached")) {
				return nil
			}
			return classify(derr)
		})
		if err != nil {
			return fmt.Errorf("detaching internet gateway %s: %w", id, err)
		}

		err = c.retryDo(ctx, func() error {
			_, derr := c.ec2.DeleteInternetGateway(ctx, &ec2.DeleteInternetGatewayInput{InternetGatewayId: ptr.String(id)})
			if derr != nil && IsNotFound(derr) {
				return nil
			}
			return classify(derr)
		})
		if err != nil {
			return fmt.Errorf("deleting internet gateway %s: %w", id, err)
		}
	}
	return nil
}

func sortSubnets(subnets []Subnet) {
	sort.Slice(subnets, func(i, j int) bool {
		return subnets[i].AvailabilityZone < subnets[j].AvailabilityZone
	})
}
