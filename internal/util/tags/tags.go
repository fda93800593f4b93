// Package tags provides consistent tagging utilities for AWS resources.
//
// This package enforces uniform tagging patterns across all infrastructure
// resources, enabling identification, grouping, and tag-scoped teardown of
// resources belonging to the same cluster.
//
// Standard tag keys use the ekstack.io domain prefix for namespacing.
package tags

// Standard tag keys for AWS resources.
const (
	// KeyCluster identifies which cluster a resource belongs to
	KeyCluster = "ekstack.io/cluster"

	// KeyRole identifies the role of a resource (network, node, database, ...)
	KeyRole = "ekstack.io/role"

	// KeyNodeGroup identifies the node group a resource belongs to
	KeyNodeGroup = "ekstack.io/node-group"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "ekstack.io/managed-by"

	// KeyName is the display name shown in the AWS console
	KeyName = "Name"
)

// Role values
const (
	RoleNetwork  = "network"
	RoleCluster  = "cluster"
	RoleNode     = "node"
	RoleDatabase = "database"
	RoleRegistry = "registry"
	RoleIdentity = "identity"
)

// ManagedBy value set on every resource this tool creates.
const ManagedBy = "ekstack"

// Subnet role tags consumed by the in-cluster load balancer controller
// when it discovers subnets for Service and Ingress load balancers.
const (
	KeyELBRole         = "kubernetes.io/role/elb"
	KeyInternalELBRole = "kubernetes.io/role/internal-elb"
)

// SharedCluster returns the kubernetes.io ownership tag key for a cluster.
// Subnets and security groups carry it so cloud integrations can find them.
func SharedCluster(clusterName string) string {
	return "kubernetes.io/cluster/" + clusterName
}

// Builder provides a fluent interface for building AWS resource tags.
type Builder struct {
	tags map[string]string
}

// NewBuilder creates a tag builder with the cluster and managed-by tags
// pre-set.
func NewBuilder(clusterName string) *Builder {
	return &Builder{
		tags: map[string]string{
			KeyCluster:   clusterName,
			KeyManagedBy: ManagedBy,
		},
	}
}

// WithName sets the console display name.
func (b *Builder) WithName(name string) *Builder {
	b.tags[KeyName] = name
	return b
}

// WithRole adds a role tag (e.g. "network", "node", "database").
func (b *Builder) WithRole(role string) *Builder {
	b.tags[KeyRole] = role
	return b
}

// WithNodeGroup adds a node group tag.
func (b *Builder) WithNodeGroup(pool string) *Builder {
	b.tags[KeyNodeGroup] = pool
	return b
}

// Merge adds all tags from the provided map.
func (b *Builder) Merge(extra map[string]string) *Builder {
	for k, v := range extra {
		b.tags[k] = v
	}
	return b
}

// Build returns a copy of the tags map.
// Returns a copy to prevent external mutations.
func (b *Builder) Build() map[string]string {
	result := make(map[string]string, len(b.tags))
	for k, v := range b.tags {
		result[k] = v
	}
	return result
}

// ForCluster returns the tag key/value pair that selects all resources in
// a cluster, for use in tag filters.
func ForCluster(clusterName string) (string, string) {
	return KeyCluster, clusterName
}
