package testing

import (
	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
)

// CloudFixture provides pre-configured fake clouds for common test
// scenarios.
type CloudFixture struct {
	fake *FakeCloud
}

// NewCloudFixture creates a new cloud fixture.
func NewCloudFixture() *CloudFixture {
	return &CloudFixture{fake: NewFakeCloud()}
}

// Fake returns the underlying FakeCloud for custom configuration.
func (f *CloudFixture) Fake() *FakeCloud {
	return f.fake
}

// EmptyAccount configures the fake for a first apply: nothing exists yet.
// Returns the same fake for chaining.
func (f *CloudFixture) EmptyAccount() *FakeCloud {
	return f.fake
}

// RunningPlatform configures the fake as if apply already completed for
// the named cluster: control plane active, one worker group, database
// available.
func (f *CloudFixture) RunningPlatform(cluster string) *FakeCloud {
	f.fake.ExistingCluster = &aws.Cluster{
		Name:            cluster,
		Status:          "ACTIVE",
		Version:         "1.33",
		Endpoint:        "https://" + cluster + ".eks.example.com",
		OIDCIssuer:      "https://oidc.eks.example.com/id/ABC123",
		SecurityGroupID: "sg-eks-workload",
	}
	f.fake.ExistingGroups = []aws.NodeGroup{
		{
			Name:         cluster + "-workers",
			Status:       "ACTIVE",
			InstanceType: "t3.large",
			CapacityType: "on-demand",
			Min:          2,
			Desired:      2,
			Max:          4,
			Version:      "1.33",
		},
	}
	f.fake.ExistingDatabase = &aws.DBInstance{
		Identifier: cluster + "-db",
		Status:     "available",
		Endpoint:   cluster + "-db.abc.eu-central-1.rds.amazonaws.com",
		Port:       5432,
	}
	f.fake.ExistingNetwork = &aws.Network{
		VPC: aws.VPC{ID: "vpc-123", CIDR: "10.0.0.0/16"},
		PrivateSubnets: []aws.Subnet{
			{ID: "subnet-priv-a"}, {ID: "subnet-priv-b"},
		},
	}
	f.fake.ExistingAddons = []aws.Addon{
		{Name: "vpc-cni", Status: "ACTIVE", Version: "v1"},
		{Name: "kube-proxy", Status: "ACTIVE", Version: "v1"},
		{Name: "coredns", Status: "ACTIVE", Version: "v1"},
	}
	return f.fake
}
