package aws

import (
	"context"
	"encoding/base64"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"

	"github.com/ibraheemcisse/ekstack/internal/util/ptr"
	"github.com/ibraheemcisse/ekstack/internal/util/tags"
)

// EnsureCluster creates the EKS control plane if it does not exist. The
// call returns as soon as creation is underway; WaitClusterActive blocks
// until the control plane serves traffic.
func (c *RealClient) EnsureCluster(ctx context.Context, spec ClusterSpec) (*Cluster, error) {
	op := &EnsureOperation[*Cluster]{
		Name:         spec.Name,
		ResourceType: "EKS cluster",
		Get: func(ctx context.Context) (*Cluster, bool, error) {
			return c.findCluster(ctx, spec.Name)
		},
		Create: func(ctx context.Context) (*Cluster, error) {
			input := &eks.CreateClusterInput{
				Name:    ptr.String(spec.Name),
				Version: ptr.String(spec.Version),
				RoleArn: ptr.String(spec.RoleARN),
				ResourcesVpcConfig: &ekstypes.VpcConfigRequest{
					SubnetIds:             spec.SubnetIDs,
					EndpointPublicAccess:  ptr.Bool(true),
					EndpointPrivateAccess: ptr.Bool(true),
				},
				Tags: tags.NewBuilder(spec.Name).WithRole(tags.RoleCluster).Build(),
			}
			if spec.SecurityGroupID != "" {
				input.ResourcesVpcConfig.SecurityGroupIds = []string{spec.SecurityGroupID}
			}
			if spec.KMSKeyARN != "" {
				input.EncryptionConfig = []ekstypes.EncryptionConfig{{
					Provider:  &ekstypes.Provider{KeyArn: ptr.String(spec.KMSKeyARN)},
					Resources: []string{"secrets"},
				}}
			}
			if len(spec.LogTypes) > 0 {
				logTypes := make([]ekstypes.LogType, 0, len(spec.LogTypes))
				for _, t := range spec.LogTypes {
					logTypes = append(logTypes, ekstypes.LogType(t))
				}
				input.Logging = &ekstypes.Logging{
					ClusterLogging: []ekstypes.LogSetup{{
						Enabled: ptr.Bool(true),
						Types:   logTypes,
					}},
				}
			}

			out, err := c.eks.CreateCluster(ctx, input)
			if err != nil {
				return nil, err
			}
			return clusterFromAPI(out.Cluster), nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// GetCluster resolves the control plane by name, returning nil when it
// does not exist.
func (c *RealClient) GetCluster(ctx context.Context, name string) (*Cluster, error) {
	cluster, found, err := c.findCluster(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return cluster, nil
}

// WaitClusterActive blocks until the control plane reports ACTIVE, then
// returns the fresh cluster state including endpoint and OIDC issuer.
func (c *RealClient) WaitClusterActive(ctx context.Context, name string) (*Cluster, error) {
	waiter := eks.NewClusterActiveWaiter(c.eks)
	out, err := waiter.WaitForOutput(ctx, &eks.DescribeClusterInput{Name: ptr.String(name)}, c.timeouts.ClusterCreate)
	if err != nil {
		return nil, fmt.Errorf("waiting for cluster %s to become active: %w", name, err)
	}
	return clusterFromAPI(out.Cluster), nil
}

// UpgradeCluster starts a control plane version upgrade. The caller waits
// for ACTIVE afterwards.
func (c *RealClient) UpgradeCluster(ctx context.Context, name, version string) error {
	return c.retryDo(ctx, func() error {
		_, err := c.eks.UpdateClusterVersion(ctx, &eks.UpdateClusterVersionInput{
			Name:    ptr.String(name),
			Version: ptr.String(version),
		})
		return classify(err)
	})
}

// DeleteCluster removes the control plane and waits until it is gone.
// EKS refuses to delete a cluster that still has node groups.
func (c *RealClient) DeleteCluster(ctx context.Context, name string) error {
	op := &DeleteOperation[*Cluster]{
		Name:         name,
		ResourceType: "EKS cluster",
		Get: func(ctx context.Context) (*Cluster, bool, error) {
			return c.findCluster(ctx, name)
		},
		Delete: func(ctx context.Context, _ *Cluster) error {
			_, err := c.eks.DeleteCluster(ctx, &eks.DeleteClusterInput{Name: ptr.String(name)})
			return err
		},
		Wait: func(ctx context.Context) error {
			waiter := eks.NewClusterDeletedWaiter(c.eks)
			return waiter.Wait(ctx, &eks.DescribeClusterInput{Name: ptr.String(name)}, c.timeouts.Destroy)
		},
	}
	return op.Execute(ctx, c)
}

// EnsureCoreAddon installs an EKS managed add-on (vpc-cni, coredns,
// kube-proxy) at the default version for the cluster and waits until it is
// active. An optional service account role enables IRSA for the add-on.
func (c *RealClient) EnsureCoreAddon(ctx context.Context, cluster, addon, serviceAccountRoleARN string) (*Addon, error) {
	op := &EnsureOperation[*Addon]{
		Name:         addon,
		ResourceType: "EKS add-on",
		Get: func(ctx context.Context) (*Addon, bool, error) {
			return c.findAddon(ctx, cluster, addon)
		},
		Create: func(ctx context.Context) (*Addon, error) {
			input := &eks.CreateAddonInput{
				ClusterName:      ptr.String(cluster),
				AddonName:        ptr.String(addon),
				ResolveConflicts: ekstypes.ResolveConflictsOverwrite,
			}
			if serviceAccountRoleARN != "" {
				input.ServiceAccountRoleArn = ptr.String(serviceAccountRoleARN)
			}
			out, err := c.eks.CreateAddon(ctx, input)
			if err != nil {
				return nil, err
			}
			return addonFromAPI(out.Addon), nil
		},
		Wait: func(ctx context.Context, a *Addon) (*Addon, error) {
			waiter := eks.NewAddonActiveWaiter(c.eks)
			out, err := waiter.WaitForOutput(ctx, &eks.DescribeAddonInput{
				ClusterName: ptr.String(cluster),
				AddonName:   ptr.String(addon),
			}, c.timeouts.AddonInstall)
			if err != nil {
				return nil, err
			}
			return addonFromAPI(out.Addon), nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// ListCoreAddons lists the managed add-ons installed on a cluster.
func (c *RealClient) ListCoreAddons(ctx context.Context, cluster string) ([]Addon, error) {
	list, err := c.eks.ListAddons(ctx, &eks.ListAddonsInput{ClusterName: ptr.String(cluster)})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing add-ons: %w", err)
	}

	addons := make([]Addon, 0, len(list.Addons))
	for _, name := range list.Addons {
		addon, found, err := c.findAddon(ctx, cluster, name)
		if err != nil {
			return nil, err
		}
		if found {
			addons = append(addons, *addon)
		}
	}
	return addons, nil
}

func (c *RealClient) findCluster(ctx context.Context, name string) (*Cluster, bool, error) {
	out, err := c.eks.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: ptr.String(name)})
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up cluster %s: %w", name, err)
	}
	return clusterFromAPI(out.Cluster), true, nil
}

func (c *RealClient) findAddon(ctx context.Context, cluster, addon string) (*Addon, bool, error) {
	out, err := c.eks.DescribeAddon(ctx, &eks.DescribeAddonInput{
		ClusterName: ptr.String(cluster),
		AddonName:   ptr.String(addon),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up add-on %s: %w", addon, err)
	}
	return addonFromAPI(out.Addon), true, nil
}

func clusterFromAPI(api *ekstypes.Cluster) *Cluster {
	cluster := &Cluster{
		Name:      awssdk.ToString(api.Name),
		ARN:       awssdk.ToString(api.Arn),
		Status:    string(api.Status),
		Version:   awssdk.ToString(api.Version),
		Endpoint:  awssdk.ToString(api.Endpoint),
		CreatedAt: awssdk.ToTime(api.CreatedAt),
	}
	if api.CertificateAuthority != nil && api.CertificateAuthority.Data != nil {
		// The API hands the CA back base64-encoded.
		if pem, err := base64.StdEncoding.DecodeString(*api.CertificateAuthority.Data); err == nil {
			cluster.CertificateAuthority = pem
		}
	}
	if api.Identity != nil && api.Identity.Oidc != nil {
		cluster.OIDCIssuer = awssdk.ToString(api.Identity.Oidc.Issuer)
	}
	if api.ResourcesVpcConfig != nil {
		cluster.SecurityGroupID = awssdk.ToString(api.ResourcesVpcConfig.ClusterSecurityGroupId)
	}
	return cluster
}

func addonFromAPI(api *ekstypes.Addon) *Addon {
	return &Addon{
		Name:    awssdk.ToString(api.AddonName),
		Status:  string(api.Status),
		Version: awssdk.ToString(api.AddonVersion),
	}
}
