package naming

import "fmt"

// Naming functions for cluster resources.
// All AWS resources follow consistent naming patterns so that console
// listings group cleanly and teardown can find everything by name or tag.

func VPC(cluster string) string {
	return fmt.Sprintf("%s-vpc", cluster)
}

func Subnet(cluster, visibility string, index int) string {
	return fmt.Sprintf("%s-%s-%d", cluster, visibility, index)
}

func InternetGateway(cluster string) string {
	return fmt.Sprintf("%s-igw", cluster)
}

func NATGateway(cluster string, index int) string {
	return fmt.Sprintf("%s-nat-%d", cluster, index)
}

func RouteTable(cluster, visibility string, index int) string {
	return fmt.Sprintf("%s-%s-rt-%d", cluster, visibility, index)
}

func ClusterSecurityGroup(cluster string) string {
	return fmt.Sprintf("%s-cluster", cluster)
}

func NodeSecurityGroup(cluster string) string {
	return fmt.Sprintf("%s-node", cluster)
}

func DatabaseSecurityGroup(cluster string) string {
	return fmt.Sprintf("%s-database", cluster)
}

func ClusterRole(cluster string) string {
	return fmt.Sprintf("%s-cluster-role", cluster)
}

func NodeRole(cluster string) string {
	return fmt.Sprintf("%s-node-role", cluster)
}

// AddonRole names the IAM role assumed by an addon's service account
// through the cluster OIDC provider.
func AddonRole(cluster, addon string) string {
	return fmt.Sprintf("%s-%s-irsa", cluster, addon)
}

func KeyAlias(cluster string) string {
	return fmt.Sprintf("alias/%s", cluster)
}

func LogGroup(cluster string) string {
	return fmt.Sprintf("/aws/eks/%s/cluster", cluster)
}

func KeyPair(cluster string) string {
	return fmt.Sprintf("%s-node", cluster)
}

func NodeGroup(cluster, pool string) string {
	return fmt.Sprintf("%s-%s", cluster, pool)
}

// Repository namespaces an image repository under the cluster name.
func Repository(cluster, name string) string {
	return fmt.Sprintf("%s/%s", cluster, name)
}

func DBSubnetGroup(cluster string) string {
	return fmt.Sprintf("%s-db", cluster)
}

func DBInstance(cluster string) string {
	return fmt.Sprintf("%s-db", cluster)
}

// DatabaseSecret names the in-cluster Secret holding database connection
// details for workloads.
func DatabaseSecret(cluster string) string {
	return fmt.Sprintf("%s-database", cluster)
}
