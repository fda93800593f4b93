package aws

import "time"

// VPC is the provisioned network container.
type VPC struct {
	ID   string
	CIDR string
}

// Subnet is a single subnet inside the cluster VPC.
type Subnet struct {
	ID               string
	CIDR             string
	AvailabilityZone string
	Public           bool
}

// InternetGateway attaches the VPC to the public internet.
type InternetGateway struct {
	ID       string
	Attached bool
}

// NATGateway gives private subnets outbound connectivity.
type NATGateway struct {
	ID           string
	SubnetID     string
	AllocationID string
	State        string
}

// RouteTable routes traffic for one or more subnets.
type RouteTable struct {
	ID string
}

// SecurityGroup is a named security group inside the cluster VPC.
type SecurityGroup struct {
	ID   string
	Name string
}

// Network bundles everything the network phase provisions.
type Network struct {
	VPC             VPC
	PublicSubnets   []Subnet
	PrivateSubnets  []Subnet
	ClusterSecurity SecurityGroup
	NodeSecurity    SecurityGroup
}

// KeyPair is an imported EC2 SSH key pair.
type KeyPair struct {
	Name        string
	Fingerprint string
}

// Key is a KMS key with its alias.
type Key struct {
	ID    string
	ARN   string
	Alias string
}

// LogGroup is a CloudWatch Logs group.
type LogGroup struct {
	Name          string
	ARN           string
	RetentionDays int32
}

// Repository is an ECR container registry.
type Repository struct {
	Name string
	ARN  string
	URI  string
}

// Role is an IAM role.
type Role struct {
	Name string
	ARN  string
}

// OIDCProvider is the IAM OpenID Connect provider backing IRSA.
type OIDCProvider struct {
	ARN string
	URL string
}

// Cluster is the EKS control plane.
type Cluster struct {
	Name                 string
	ARN                  string
	Status               string
	Version              string
	Endpoint             string
	CertificateAuthority []byte
	OIDCIssuer           string
	SecurityGroupID      string
	CreatedAt            time.Time
}

// Ready reports whether the control plane accepts API traffic.
func (c Cluster) Ready() bool { return c.Status == "ACTIVE" }

// NodeGroup is an EKS managed node group.
type NodeGroup struct {
	Name         string
	ARN          string
	Status       string
	InstanceType string
	CapacityType string
	Min          int32
	Desired      int32
	Max          int32
	Version      string
}

// Ready reports whether all nodes in the group joined the cluster.
func (g NodeGroup) Ready() bool { return g.Status == "ACTIVE" }

// Addon is an EKS managed add-on (vpc-cni, coredns, kube-proxy).
type Addon struct {
	Name    string
	Status  string
	Version string
}

// DBInstance is the managed Postgres instance.
type DBInstance struct {
	Identifier    string
	ARN           string
	Status        string
	Endpoint      string
	Port          int32
	EngineVersion string
	MultiAZ       bool
}

// Ready reports whether the instance accepts connections.
func (d DBInstance) Ready() bool { return d.Status == "available" }

// DBSubnetGroup groups the private subnets the database may live in.
type DBSubnetGroup struct {
	Name string
	ARN  string
}
