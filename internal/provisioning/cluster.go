package provisioning

import (
	"fmt"

	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
)

// ClusterPhase provisions the EKS control plane on the private subnets,
// waits for it to become active, and registers the IAM OIDC provider that
// backs IAM roles for service accounts.
type ClusterPhase struct{}

// NewClusterPhase creates the cluster phase.
func NewClusterPhase() *ClusterPhase {
	return &ClusterPhase{}
}

// Name implements Phase.
func (p *ClusterPhase) Name() string { return "cluster" }

// Provision implements Phase.
func (p *ClusterPhase) Provision(ctx *Context) error {
	network := ctx.State.Network
	if network == nil {
		return fmt.Errorf("network phase must run first")
	}
	if ctx.State.ClusterRole == nil {
		return fmt.Errorf("iam phase must run first")
	}

	spec := aws.ClusterSpec{
		Name:            ctx.Config.Name,
		Version:         ctx.Config.Version,
		RoleARN:         ctx.State.ClusterRole.ARN,
		SubnetIDs:       subnetIDs(network.PrivateSubnets),
		SecurityGroupID: network.ClusterSecurity.ID,
		LogTypes:        logTypes(ctx),
	}
	if ctx.Config.Encryption.SecretsEnabled() && ctx.State.Key != nil {
		spec.KMSKeyARN = ctx.State.Key.ARN
	}

	cluster, err := ctx.Cloud.EnsureCluster(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to ensure cluster: %w", err)
	}

	if !cluster.Ready() {
		ctx.Observer.Printf("waiting for control plane %s to become active", cluster.Name)
		cluster, err = ctx.Cloud.WaitClusterActive(ctx, cluster.Name)
		if err != nil {
			return err
		}
	}
	ctx.State.Cluster = cluster
	logResourceReady(ctx.Observer, p.Name(), cluster.Name,
		fmt.Sprintf("control plane %s active at %s", cluster.Version, cluster.Endpoint))

	provider, err := ctx.Cloud.EnsureOIDCProvider(ctx, cluster.Name, cluster.OIDCIssuer)
	if err != nil {
		return fmt.Errorf("failed to ensure OIDC provider: %w", err)
	}
	ctx.State.OIDCProvider = provider
	logResourceReady(ctx.Observer, p.Name(), provider.URL, "OIDC provider registered")

	return nil
}

// subnetIDs collects the IDs of a subnet list.
func subnetIDs(subnets []aws.Subnet) []string {
	ids := make([]string, 0, len(subnets))
	for _, subnet := range subnets {
		ids = append(ids, subnet.ID)
	}
	return ids
}

// logTypes translates the configured control plane log types.
func logTypes(ctx *Context) []string {
	types := make([]string, 0, len(ctx.Config.Logging.Types))
	for _, logType := range ctx.Config.Logging.Types {
		types = append(types, string(logType))
	}
	return types
}
