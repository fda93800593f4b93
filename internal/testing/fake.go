package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
)

// FakeCloud implements aws.CloudManager with canned responses. It records
// every call so tests can assert ordering, and fails any method listed in
// Errs. The zero value of every knob means "resource absent, operations
// succeed".
type FakeCloud struct {
	mu    sync.Mutex
	calls []string

	// Errs fails the named method with the given error.
	Errs map[string]error

	// Pre-existing resources returned by the Get/List methods. Nil means
	// absent.
	ExistingCluster  *aws.Cluster
	ExistingDatabase *aws.DBInstance
	ExistingGroups   []aws.NodeGroup
	ExistingAddons   []aws.Addon
	ExistingNetwork  *aws.Network

	// ClusterStatus overrides the status EnsureCluster reports, to
	// exercise the wait path.
	ClusterStatus string
	// DatabaseStatus overrides the status EnsureDatabase reports.
	DatabaseStatus string
}

// NewFakeCloud creates a fake with no pre-existing resources.
func NewFakeCloud() *FakeCloud {
	return &FakeCloud{Errs: make(map[string]error)}
}

func (f *FakeCloud) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

// Calls returns a copy of the recorded call log.
func (f *FakeCloud) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeCloud) fail(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Errs[method]
}

func (f *FakeCloud) EnsureNetwork(_ context.Context, spec aws.NetworkSpec) (*aws.Network, error) {
	f.record("EnsureNetwork")
	if err := f.fail("EnsureNetwork"); err != nil {
		return nil, err
	}
	return &aws.Network{
		VPC: aws.VPC{ID: "vpc-123", CIDR: spec.CIDR},
		PublicSubnets: []aws.Subnet{
			{ID: "subnet-pub-a", Public: true, AvailabilityZone: "a"},
			{ID: "subnet-pub-b", Public: true, AvailabilityZone: "b"},
		},
		PrivateSubnets: []aws.Subnet{
			{ID: "subnet-priv-a", AvailabilityZone: "a"},
			{ID: "subnet-priv-b", AvailabilityZone: "b"},
		},
		ClusterSecurity: aws.SecurityGroup{ID: "sg-cluster"},
		NodeSecurity:    aws.SecurityGroup{ID: "sg-node"},
	}, nil
}

func (f *FakeCloud) GetNetwork(_ context.Context, _ string) (*aws.Network, error) {
	f.record("GetNetwork")
	if err := f.fail("GetNetwork"); err != nil {
		return nil, err
	}
	return f.ExistingNetwork, nil
}

func (f *FakeCloud) DeleteNetwork(_ context.Context, _ string) error {
	f.record("DeleteNetwork")
	return f.fail("DeleteNetwork")
}

func (f *FakeCloud) EnsureKeyPair(_ context.Context, _, name string, _ []byte) (*aws.KeyPair, error) {
	f.record("EnsureKeyPair")
	if err := f.fail("EnsureKeyPair"); err != nil {
		return nil, err
	}
	// Fingerprint never matches a freshly generated key, mimicking an
	// already imported pair.
	return &aws.KeyPair{Name: name, Fingerprint: "unmatched"}, nil
}

func (f *FakeCloud) DeleteKeyPair(_ context.Context, _ string) error {
	f.record("DeleteKeyPair")
	return f.fail("DeleteKeyPair")
}

func (f *FakeCloud) EnsureKey(_ context.Context, _, alias string) (*aws.Key, error) {
	f.record("EnsureKey")
	if err := f.fail("EnsureKey"); err != nil {
		return nil, err
	}
	return &aws.Key{ID: "key-123", ARN: "arn:aws:kms:::key/key-123", Alias: alias}, nil
}

func (f *FakeCloud) GetKey(_ context.Context, alias string) (*aws.Key, error) {
	f.record("GetKey")
	if err := f.fail("GetKey"); err != nil {
		return nil, err
	}
	return &aws.Key{ID: "key-123", ARN: "arn:aws:kms:::key/key-123", Alias: alias}, nil
}

func (f *FakeCloud) DeleteKey(_ context.Context, _ string) error {
	f.record("DeleteKey")
	return f.fail("DeleteKey")
}

func (f *FakeCloud) EnsureLogGroup(_ context.Context, _, name string, retentionDays int32) (*aws.LogGroup, error) {
	f.record("EnsureLogGroup")
	if err := f.fail("EnsureLogGroup"); err != nil {
		return nil, err
	}
	return &aws.LogGroup{Name: name, RetentionDays: retentionDays}, nil
}

func (f *FakeCloud) DeleteLogGroup(_ context.Context, _ string) error {
	f.record("DeleteLogGroup")
	return f.fail("DeleteLogGroup")
}

func (f *FakeCloud) EnsureRepository(_ context.Context, spec aws.RepositorySpec) (*aws.Repository, error) {
	f.record("EnsureRepository")
	if err := f.fail("EnsureRepository"); err != nil {
		return nil, err
	}
	return &aws.Repository{
		Name: spec.Name,
		URI:  "123456789012.dkr.ecr.eu-central-1.amazonaws.com/" + spec.Name,
	}, nil
}

func (f *FakeCloud) GetRepository(_ context.Context, name string) (*aws.Repository, error) {
	f.record("GetRepository")
	if err := f.fail("GetRepository"); err != nil {
		return nil, err
	}
	return &aws.Repository{Name: name}, nil
}

func (f *FakeCloud) DeleteRepository(_ context.Context, name string) error {
	f.record("DeleteRepository " + name)
	return f.fail("DeleteRepository")
}

func (f *FakeCloud) EnsureClusterRole(_ context.Context, cluster string) (*aws.Role, error) {
	f.record("EnsureClusterRole")
	if err := f.fail("EnsureClusterRole"); err != nil {
		return nil, err
	}
	name := cluster + "-cluster-role"
	return &aws.Role{Name: name, ARN: "arn:aws:iam::123456789012:role/" + name}, nil
}

func (f *FakeCloud) EnsureNodeRole(_ context.Context, cluster string) (*aws.Role, error) {
	f.record("EnsureNodeRole")
	if err := f.fail("EnsureNodeRole"); err != nil {
		return nil, err
	}
	name := cluster + "-node-role"
	return &aws.Role{Name: name, ARN: "arn:aws:iam::123456789012:role/" + name}, nil
}

func (f *FakeCloud) EnsureOIDCProvider(_ context.Context, _, issuerURL string) (*aws.OIDCProvider, error) {
	f.record("EnsureOIDCProvider")
	if err := f.fail("EnsureOIDCProvider"); err != nil {
		return nil, err
	}
	return &aws.OIDCProvider{ARN: "arn:aws:iam::123456789012:oidc-provider/example", URL: issuerURL}, nil
}

func (f *FakeCloud) EnsureIRSARole(_ context.Context, spec aws.IRSARoleSpec) (*aws.Role, error) {
	f.record("EnsureIRSARole " + spec.Name)
	if err := f.fail("EnsureIRSARole"); err != nil {
		return nil, err
	}
	return &aws.Role{Name: spec.Name, ARN: "arn:aws:iam::123456789012:role/" + spec.Name}, nil
}

func (f *FakeCloud) GetRole(_ context.Context, name string) (*aws.Role, error) {
	f.record("GetRole")
	if err := f.fail("GetRole"); err != nil {
		return nil, err
	}
	return &aws.Role{Name: name, ARN: "arn:aws:iam::123456789012:role/" + name}, nil
}

func (f *FakeCloud) DeleteRole(_ context.Context, name string) error {
	f.record("DeleteRole " + name)
	return f.fail("DeleteRole")
}

func (f *FakeCloud) DeleteOIDCProvider(_ context.Context, _ string) error {
	f.record("DeleteOIDCProvider")
	return f.fail("DeleteOIDCProvider")
}

func (f *FakeCloud) EnsureCluster(_ context.Context, spec aws.ClusterSpec) (*aws.Cluster, error) {
	f.record("EnsureCluster")
	if err := f.fail("EnsureCluster"); err != nil {
		return nil, err
	}
	status := f.ClusterStatus
	if status == "" {
		status = "ACTIVE"
	}
	return &aws.Cluster{
		Name:            spec.Name,
		Status:          status,
		Version:         spec.Version,
		Endpoint:        "https://" + spec.Name + ".eks.example.com",
		OIDCIssuer:      "https://oidc.eks.example.com/id/ABC123",
		SecurityGroupID: "sg-eks-workload",
	}, nil
}

func (f *FakeCloud) GetCluster(_ context.Context, _ string) (*aws.Cluster, error) {
	f.record("GetCluster")
	if err := f.fail("GetCluster"); err != nil {
		return nil, err
	}
	return f.ExistingCluster, nil
}

func (f *FakeCloud) WaitClusterActive(_ context.Context, name string) (*aws.Cluster, error) {
	f.record("WaitClusterActive")
	if err := f.fail("WaitClusterActive"); err != nil {
		return nil, err
	}
	return &aws.Cluster{
		Name:            name,
		Status:          "ACTIVE",
		Endpoint:        "https://" + name + ".eks.example.com",
		OIDCIssuer:      "https://oidc.eks.example.com/id/ABC123",
		SecurityGroupID: "sg-eks-workload",
	}, nil
}

func (f *FakeCloud) UpgradeCluster(_ context.Context, _, version string) error {
	f.record("UpgradeCluster " + version)
	return f.fail("UpgradeCluster")
}

func (f *FakeCloud) DeleteCluster(_ context.Context, _ string) error {
	f.record("DeleteCluster")
	return f.fail("DeleteCluster")
}

func (f *FakeCloud) EnsureCoreAddon(_ context.Context, _, addon, _ string) (*aws.Addon, error) {
	f.record("EnsureCoreAddon " + addon)
	if err := f.fail("EnsureCoreAddon"); err != nil {
		return nil, err
	}
	return &aws.Addon{Name: addon, Status: "ACTIVE", Version: "v1"}, nil
}

func (f *FakeCloud) ListCoreAddons(_ context.Context, _ string) ([]aws.Addon, error) {
	f.record("ListCoreAddons")
	if err := f.fail("ListCoreAddons"); err != nil {
		return nil, err
	}
	return f.ExistingAddons, nil
}

func (f *FakeCloud) EnsureNodeGroup(_ context.Context, spec aws.NodeGroupSpec) (*aws.NodeGroup, error) {
	f.record("EnsureNodeGroup " + spec.Name)
	if err := f.fail("EnsureNodeGroup"); err != nil {
		return nil, err
	}
	return &aws.NodeGroup{
		Name:         spec.Name,
		Status:       "ACTIVE",
		InstanceType: spec.InstanceType,
		CapacityType: spec.CapacityType,
		Min:          spec.Min,
		Desired:      spec.Desired,
		Max:          spec.Max,
	}, nil
}

func (f *FakeCloud) GetNodeGroup(_ context.Context, _, name string) (*aws.NodeGroup, error) {
	f.record("GetNodeGroup " + name)
	if err := f.fail("GetNodeGroup"); err != nil {
		return nil, err
	}
	for i := range f.ExistingGroups {
		if f.ExistingGroups[i].Name == name {
			return &f.ExistingGroups[i], nil
		}
	}
	return nil, nil
}

func (f *FakeCloud) ListNodeGroups(_ context.Context, _ string) ([]aws.NodeGroup, error) {
	f.record("ListNodeGroups")
	if err := f.fail("ListNodeGroups"); err != nil {
		return nil, err
	}
	return f.ExistingGroups, nil
}

func (f *FakeCloud) ScaleNodeGroup(_ context.Context, _, name string, _, _, _ int32) error {
	f.record("ScaleNodeGroup " + name)
	return f.fail("ScaleNodeGroup")
}

func (f *FakeCloud) UpgradeNodeGroup(_ context.Context, _, name, version string) error {
	f.record(fmt.Sprintf("UpgradeNodeGroup %s %s", name, version))
	return f.fail("UpgradeNodeGroup")
}

func (f *FakeCloud) DeleteNodeGroup(_ context.Context, _, name string) error {
	f.record("DeleteNodeGroup " + name)
	return f.fail("DeleteNodeGroup")
}

func (f *FakeCloud) EnsureDatabase(_ context.Context, spec aws.DatabaseSpec) (*aws.DBInstance, error) {
	f.record("EnsureDatabase")
	if err := f.fail("EnsureDatabase"); err != nil {
		return nil, err
	}
	status := f.DatabaseStatus
	if status == "" {
		status = "available"
	}
	return &aws.DBInstance{
		Identifier:    spec.Identifier,
		Status:        status,
		Endpoint:      spec.Identifier + ".abc.eu-central-1.rds.amazonaws.com",
		Port:          5432,
		EngineVersion: spec.EngineVersion,
		MultiAZ:       spec.MultiAZ,
	}, nil
}

func (f *FakeCloud) GetDatabase(_ context.Context, _ string) (*aws.DBInstance, error) {
	f.record("GetDatabase")
	if err := f.fail("GetDatabase"); err != nil {
		return nil, err
	}
	return f.ExistingDatabase, nil
}

func (f *FakeCloud) WaitDatabaseAvailable(_ context.Context, identifier string) (*aws.DBInstance, error) {
	f.record("WaitDatabaseAvailable")
	if err := f.fail("WaitDatabaseAvailable"); err != nil {
		return nil, err
	}
	return &aws.DBInstance{
		Identifier: identifier,
		Status:     "available",
		Endpoint:   identifier + ".abc.eu-central-1.rds.amazonaws.com",
		Port:       5432,
	}, nil
}

func (f *FakeCloud) DeleteDatabase(_ context.Context, _, identifier string) error {
	f.record("DeleteDatabase " + identifier)
	return f.fail("DeleteDatabase")
}

func (f *FakeCloud) AccountID(context.Context) (string, error) {
	f.record("AccountID")
	if err := f.fail("AccountID"); err != nil {
		return "", err
	}
	return "123456789012", nil
}

func (f *FakeCloud) Region() string { return "eu-central-1" }
