package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibraheemcisse/ekstack/internal/util/naming"
	"github.com/ibraheemcisse/ekstack/internal/util/ptr"
)

// stubEC2 overrides the handful of calls a test needs. Calls without a
// handler panic, which flags tests exercising more API surface than they
// stubbed.
type stubEC2 struct {
	EC2API

	describeAvailabilityZones func(*ec2.DescribeAvailabilityZonesInput) (*ec2.DescribeAvailabilityZonesOutput, error)
	describeVpcs              func(*ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error)
	describeSubnets           func(*ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error)
	describeSecurityGroups    func(*ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error)
	describeAddresses         func(*ec2.DescribeAddressesInput) (*ec2.DescribeAddressesOutput, error)
	allocateAddress           func(*ec2.AllocateAddressInput) (*ec2.AllocateAddressOutput, error)
}

func (s *stubEC2) DescribeAvailabilityZones(_ context.Context, params *ec2.DescribeAvailabilityZonesInput, _ ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error) {
	return s.describeAvailabilityZones(params)
}

func (s *stubEC2) DescribeVpcs(_ context.Context, params *ec2.DescribeVpcsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	return s.describeVpcs(params)
}

func (s *stubEC2) DescribeSubnets(_ context.Context, params *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	return s.describeSubnets(params)
}

func (s *stubEC2) DescribeSecurityGroups(_ context.Context, params *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	return s.describeSecurityGroups(params)
}

func (s *stubEC2) DescribeAddresses(_ context.Context, params *ec2.DescribeAddressesInput, _ ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error) {
	return s.describeAddresses(params)
}

func (s *stubEC2) AllocateAddress(_ context.Context, params *ec2.AllocateAddressInput, _ ...func(*ec2.Options)) (*ec2.AllocateAddressOutput, error) {
	return s.allocateAddress(params)
}

func filterValues(filters []ec2types.Filter, name string) []string {
	for _, f := range filters {
		if awssdk.ToString(f.Name) == name {
			return f.Values
		}
	}
	return nil
}

func TestAvailabilityZones_SortedAndTruncated(t *testing.T) {
	t.Parallel()

	stub := &stubEC2{
		describeAvailabilityZones: func(params *ec2.DescribeAvailabilityZonesInput) (*ec2.DescribeAvailabilityZonesOutput, error) {
			assert.Equal(t, []string{"available"}, filterValues(params.Filters, "state"))
			assert.Equal(t, []string{"availability-zone"}, filterValues(params.Filters, "zone-type"))
			return &ec2.DescribeAvailabilityZonesOutput{
				AvailabilityZones: []ec2types.AvailabilityZone{
					{ZoneName: ptr.String("us-east-1c")},
					{ZoneName: ptr.String("us-east-1a")},
					{ZoneName: ptr.String("us-east-1b")},
				},
			}, nil
		},
	}

	c := testClient(WithEC2API(stub))
	zones, err := c.availabilityZones(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1a", "us-east-1b"}, zones)
}

func TestAvailabilityZones_NotEnough(t *testing.T) {
	t.Parallel()

	stub := &stubEC2{
		describeAvailabilityZones: func(_ *ec2.DescribeAvailabilityZonesInput) (*ec2.DescribeAvailabilityZonesOutput, error) {
			return &ec2.DescribeAvailabilityZonesOutput{
				AvailabilityZones: []ec2types.AvailabilityZone{
					{ZoneName: ptr.String("us-east-1a")},
				},
			}, nil
		},
	}

	c := testClient(WithEC2API(stub))
	_, err := c.availabilityZones(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "need 3")
}

func TestGetNetwork_AbsentReturnsNil(t *testing.T) {
	t.Parallel()

	stub := &stubEC2{
		describeVpcs: func(_ *ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error) {
			return &ec2.DescribeVpcsOutput{}, nil
		},
	}

	c := testClient(WithEC2API(stub))
	network, err := c.GetNetwork(context.Background(), "demo")
	require.NoError(t, err)
	assert.Nil(t, network)
}

func TestGetNetwork_ClassifiesAndSortsSubnets(t *testing.T) {
	t.Parallel()

	stub := &stubEC2{
		describeVpcs: func(_ *ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error) {
			return &ec2.DescribeVpcsOutput{
				Vpcs: []ec2types.Vpc{
					{VpcId: ptr.String("vpc-123"), CidrBlock: ptr.String("10.0.0.0/16")},
				},
			}, nil
		},
		describeSubnets: func(_ *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error) {
			return &ec2.DescribeSubnetsOutput{
				Subnets: []ec2types.Subnet{
					{SubnetId: ptr.String("subnet-priv-b"), AvailabilityZone: ptr.String("us-east-1b"), CidrBlock: ptr.String("10.0.96.0/19"), MapPublicIpOnLaunch: ptr.Bool(false)},
					{SubnetId: ptr.String("subnet-pub-a"), AvailabilityZone: ptr.String("us-east-1a"), CidrBlock: ptr.String("10.0.0.0/20"), MapPublicIpOnLaunch: ptr.Bool(true)},
					{SubnetId: ptr.String("subnet-priv-a"), AvailabilityZone: ptr.String("us-east-1a"), CidrBlock: ptr.String("10.0.64.0/19"), MapPublicIpOnLaunch: ptr.Bool(false)},
					{SubnetId: ptr.String("subnet-pub-b"), AvailabilityZone: ptr.String("us-east-1b"), CidrBlock: ptr.String("10.0.16.0/20"), MapPublicIpOnLaunch: ptr.Bool(true)},
				},
			}, nil
		},
		describeSecurityGroups: func(params *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
			names := filterValues(params.Filters, "group-name")
			require.Len(t, names, 1)
			var id string
			switch names[0] {
			case naming.ClusterSecurityGroup("demo"):
				id = "sg-cluster"
			case naming.NodeSecurityGroup("demo"):
				id = "sg-node"
			default:
				return &ec2.DescribeSecurityGroupsOutput{}, nil
			}
			return &ec2.DescribeSecurityGroupsOutput{
				SecurityGroups: []ec2types.SecurityGroup{
					{GroupId: ptr.String(id), GroupName: ptr.String(names[0])},
				},
			}, nil
		},
	}

	c := testClient(WithEC2API(stub))
	network, err := c.GetNetwork(context.Background(), "demo")
	require.NoError(t, err)
	require.NotNil(t, network)

	assert.Equal(t, "vpc-123", network.VPC.ID)
	require.Len(t, network.PublicSubnets, 2)
	require.Len(t, network.PrivateSubnets, 2)
	assert.Equal(t, "subnet-pub-a", network.PublicSubnets[0].ID, "subnets should sort by availability zone")
	assert.Equal(t, "subnet-pub-b", network.PublicSubnets[1].ID)
	assert.Equal(t, "subnet-priv-a", network.PrivateSubnets[0].ID)
	assert.True(t, network.PublicSubnets[0].Public)
	assert.False(t, network.PrivateSubnets[0].Public)
	assert.Equal(t, "sg-cluster", network.ClusterSecurity.ID)
	assert.Equal(t, "sg-node", network.NodeSecurity.ID)
}

func TestAllocateAddress_ReusesOrphanedAllocation(t *testing.T) {
	t.Parallel()

	stub := &stubEC2{
		describeAddresses: func(_ *ec2.DescribeAddressesInput) (*ec2.DescribeAddressesOutput, error) {
			return &ec2.DescribeAddressesOutput{
				Addresses: []ec2types.Address{
					{AllocationId: ptr.String("eipalloc-used"), AssociationId: ptr.String("eipassoc-1")},
					{AllocationId: ptr.String("eipalloc-free")},
				},
			}, nil
		},
		allocateAddress: func(_ *ec2.AllocateAddressInput) (*ec2.AllocateAddressOutput, error) {
			t.Fatal("AllocateAddress should not run when a free address is tagged for this NAT gateway")
			return nil, nil
		},
	}

	c := testClient(WithEC2API(stub))
	allocID, err := c.allocateAddress(context.Background(), "demo", naming.NATGateway("demo", 0))
	require.NoError(t, err)
	assert.Equal(t, "eipalloc-free", allocID)
}

func TestEnsureNATGateways_StrategyNone(t *testing.T) {
	t.Parallel()

	// No stub handlers: any API call would panic.
	c := testClient(WithEC2API(&stubEC2{}))
	nats, err := c.ensureNATGateways(context.Background(), "demo", "none", []Subnet{{ID: "subnet-pub-a"}})
	require.NoError(t, err)
	assert.Empty(t, nats)
}
