package aws

import (
	"context"
)

// NetworkManager handles VPC, subnet, gateway, routing, and security group
// operations for a cluster network.
type NetworkManager interface {
	EnsureNetwork(ctx context.Context, spec NetworkSpec) (*Network, error)
	GetNetwork(ctx context.Context, cluster string) (*Network, error)
	DeleteNetwork(ctx context.Context, cluster string) error
}

// KeyPairManager imports and removes EC2 SSH key pairs.
type KeyPairManager interface {
	EnsureKeyPair(ctx context.Context, cluster, name string, publicKey []byte) (*KeyPair, error)
	DeleteKeyPair(ctx context.Context, name string) error
}

// KeyManager handles KMS keys used for secret envelope encryption.
type KeyManager interface {
	EnsureKey(ctx context.Context, cluster, alias string) (*Key, error)
	GetKey(ctx context.Context, alias string) (*Key, error)
	DeleteKey(ctx context.Context, alias string) error
}

// LogManager handles CloudWatch log groups for control plane logs.
type LogManager interface {
	EnsureLogGroup(ctx context.Context, cluster, name string, retentionDays int32) (*LogGroup, error)
	DeleteLogGroup(ctx context.Context, name string) error
}

// RegistryManager handles ECR repositories.
type RegistryManager interface {
	EnsureRepository(ctx context.Context, spec RepositorySpec) (*Repository, error)
	GetRepository(ctx context.Context, name string) (*Repository, error)
	DeleteRepository(ctx context.Context, name string) error
}

// IdentityManager handles IAM roles, policies, and the OIDC provider that
// backs IAM roles for service accounts.
type IdentityManager interface {
	EnsureClusterRole(ctx context.Context, cluster string) (*Role, error)
	EnsureNodeRole(ctx context.Context, cluster string) (*Role, error)
	EnsureOIDCProvider(ctx context.Context, cluster, issuerURL string) (*OIDCProvider, error)
	EnsureIRSARole(ctx context.Context, spec IRSARoleSpec) (*Role, error)
	GetRole(ctx context.Context, name string) (*Role, error)
	DeleteRole(ctx context.Context, name string) error
	DeleteOIDCProvider(ctx context.Context, issuerURL string) error
}

// ClusterManager handles the EKS control plane and its managed add-ons.
type ClusterManager interface {
	EnsureCluster(ctx context.Context, spec ClusterSpec) (*Cluster, error)
	GetCluster(ctx context.Context, name string) (*Cluster, error)
	WaitClusterActive(ctx context.Context, name string) (*Cluster, error)
	UpgradeCluster(ctx context.Context, name, version string) error
	DeleteCluster(ctx context.Context, name string) error
	EnsureCoreAddon(ctx context.Context, cluster, addon, serviceAccountRoleARN string) (*Addon, error)
	ListCoreAddons(ctx context.Context, cluster string) ([]Addon, error)
}

// NodeGroupManager handles EKS managed node groups.
type NodeGroupManager interface {
	EnsureNodeGroup(ctx context.Context, spec NodeGroupSpec) (*NodeGroup, error)
	GetNodeGroup(ctx context.Context, cluster, name string) (*NodeGroup, error)
	ListNodeGroups(ctx context.Context, cluster string) ([]NodeGroup, error)
	ScaleNodeGroup(ctx context.Context, cluster, name string, min, desired, max int32) error
	UpgradeNodeGroup(ctx context.Context, cluster, name, version string) error
	DeleteNodeGroup(ctx context.Context, cluster, name string) error
}

// DatabaseManager handles the RDS Postgres instance and its subnet group.
type DatabaseManager interface {
	EnsureDatabase(ctx context.Context, spec DatabaseSpec) (*DBInstance, error)
	GetDatabase(ctx context.Context, identifier string) (*DBInstance, error)
	WaitDatabaseAvailable(ctx context.Context, identifier string) (*DBInstance, error)
	DeleteDatabase(ctx context.Context, cluster, identifier string) error
}

// AccountManager reports on the calling AWS account.
type AccountManager interface {
	AccountID(ctx context.Context) (string, error)
	Region() string
}

// CloudManager combines all provisioning capabilities against AWS.
type CloudManager interface {
	NetworkManager
	KeyPairManager
	KeyManager
	LogManager
	RegistryManager
	IdentityManager
	ClusterManager
	NodeGroupManager
	DatabaseManager
	AccountManager
}

// NetworkSpec describes the network to ensure for a cluster.
type NetworkSpec struct {
	Cluster           string
	CIDR              string
	AvailabilityZones int
	// NATStrategy is "single", "per-az", or "none".
	NATStrategy string
}

// RepositorySpec describes an ECR repository to ensure.
type RepositorySpec struct {
	Cluster    string
	Name       string
	ScanOnPush bool
	// KeepImages is the number of images retained by the lifecycle policy.
	KeepImages int
	KMSKeyARN  string
}

// IRSARoleSpec describes an IAM role assumable by one Kubernetes service
// account through the cluster OIDC provider.
type IRSARoleSpec struct {
	Cluster        string
	Name           string
	ProviderARN    string
	IssuerHost     string
	Namespace      string
	ServiceAccount string
	// PolicyARNs are managed policies to attach.
	PolicyARNs []string
	// InlinePolicy is an optional JSON policy document.
	InlinePolicy string
}

// ClusterSpec describes the EKS control plane to ensure.
type ClusterSpec struct {
	Name            string
	Version         string
	RoleARN         string
	SubnetIDs       []string
	SecurityGroupID string
	KMSKeyARN       string
	LogTypes        []string
}

// NodeGroupSpec describes a managed node group to ensure.
type NodeGroupSpec struct {
	Cluster      string
	Name         string
	RoleARN      string
	SubnetIDs    []string
	InstanceType string
	// CapacityType is "on-demand" or "spot".
	CapacityType string
	Min          int32
	Desired      int32
	Max          int32
	DiskGB       int32
	Labels       map[string]string
	Taints       []NodeTaint
	SSHKeyName   string
}

// NodeTaint is a Kubernetes taint applied to every node in a group.
type NodeTaint struct {
	Key    string
	Value  string
	Effect string
}

// DatabaseSpec describes the RDS instance to ensure.
type DatabaseSpec struct {
	Cluster             string
	Identifier          string
	EngineVersion       string
	InstanceClass       string
	StorageGB           int32
	MultiAZ             bool
	BackupRetentionDays int32
	DatabaseName        string
	Username            string
	Password            string
	VPCID               string
	// SubnetIDs are the private subnets the instance may live in.
	SubnetIDs []string
	// SourceSecurityGroupID is the group whose members may reach Postgres,
	// normally the security group EKS assigns to cluster workloads.
	SourceSecurityGroupID string
	KMSKeyARN             string
}
