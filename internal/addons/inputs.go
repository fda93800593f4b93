package addons

// Inputs carries the provisioning outputs the add-on values builders
// need: identifiers the charts cannot discover on their own.
type Inputs struct {
	// ClusterName is the EKS cluster name.
	ClusterName string

	// Region is the AWS region the cluster runs in.
	Region string

	// VPCID is the cluster VPC, wired into the load balancer controller
	// so it can place load balancers without querying instance metadata.
	VPCID string

	// LoadBalancerControllerRoleARN is the IRSA role for the AWS Load
	// Balancer Controller service account.
	LoadBalancerControllerRoleARN string

	// AutoscalerRoleARN is the IRSA role for the cluster autoscaler
	// service account.
	AutoscalerRoleARN string
}
