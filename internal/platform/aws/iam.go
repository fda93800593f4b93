package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/ibraheemcisse/ekstack/internal/util/naming"
	"github.com/ibraheemcisse/ekstack/internal/util/ptr"
	"github.com/ibraheemcisse/ekstack/internal/util/tags"
)

// Managed policies attached to the control plane and node roles.
var (
	clusterPolicyARNs = []string{
		"arn:aws:iam::aws:policy/AmazonEKSClusterPolicy",
	}
	nodePolicyARNs = []string{
		"arn:aws:iam::aws:policy/AmazonEKSWorkerNodePolicy",
		"arn:aws:iam::aws:policy/AmazonEKS_CNI_Policy",
		"arn:aws:iam::aws:policy/AmazonEC2ContainerRegistryReadOnly",
		"arn:aws:iam::aws:policy/AmazonSSMManagedInstanceCore",
	}
)

// IAM validates the OIDC provider against the root CA, so the pinned leaf
// thumbprint no longer matters, but the API still wants one. This is the
// Starfield root used by every EKS OIDC issuer.
const oidcRootThumbprint = "9e99a48a9960b14926bb7f3b02e22da2b0ab7280"

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string                       `json:"Effect"`
	Principal map[string]string            `json:"Principal,omitempty"`
	Action    any                          `json:"Action"`
	Resource  any                          `json:"Resource,omitempty"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

func servicePrincipalPolicy(service string) (string, error) {
	doc := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string]string{"Service": service},
			Action:    "sts:AssumeRole",
		}},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding trust policy: %w", err)
	}
	return string(raw), nil
}

// irsaTrustPolicy lets one Kubernetes service account assume the role via
// the cluster OIDC provider.
func irsaTrustPolicy(providerARN, issuerHost, namespace, serviceAccount string) (string, error) {
	doc := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string]string{"Federated": providerARN},
			Action:    "sts:AssumeRoleWithWebIdentity",
			Condition: map[string]map[string]string{
				"StringEquals": {
					issuerHost + ":sub": fmt.Sprintf("system:serviceaccount:%s:%s", namespace, serviceAccount),
					issuerHost + ":aud": "sts.amazonaws.com",
				},
			},
		}},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding IRSA trust policy: %w", err)
	}
	return string(raw), nil
}

// EnsureClusterRole provisions the IAM role the EKS control plane runs as.
func (c *RealClient) EnsureClusterRole(ctx context.Context, cluster string) (*Role, error) {
	trust, err := servicePrincipalPolicy("eks.amazonaws.com")
	if err != nil {
		return nil, err
	}
	return c.ensureRole(ctx, cluster, naming.ClusterRole(cluster), trust, clusterPolicyARNs, "")
}

// EnsureNodeRole provisions the IAM role worker nodes run as.
func (c *RealClient) EnsureNodeRole(ctx context.Context, cluster string) (*Role, error) {
	trust, err := servicePrincipalPolicy("ec2.amazonaws.com")
	if err != nil {
		return nil, err
	}
	return c.ensureRole(ctx, cluster, naming.NodeRole(cluster), trust, nodePolicyARNs, "")
}

// EnsureIRSARole provisions a role assumable by a single service account
// through the cluster OIDC provider.
func (c *RealClient) EnsureIRSARole(ctx context.Context, spec IRSARoleSpec) (*Role, error) {
	trust, err := irsaTrustPolicy(spec.ProviderARN, spec.IssuerHost, spec.Namespace, spec.ServiceAccount)
	if err != nil {
		return nil, err
	}
	return c.ensureRole(ctx, spec.Cluster, spec.Name, trust, spec.PolicyARNs, spec.InlinePolicy)
}

// GetRole resolves a role by name, returning nil when it does not exist.
func (c *RealClient) GetRole(ctx context.Context, name string) (*Role, error) {
	role, found, err := c.findRole(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return role, nil
}

// DeleteRole detaches managed policies, removes inline policies, then
// deletes the role.
func (c *RealClient) DeleteRole(ctx context.Context, name string) error {
	_, found, err := c.findRole(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	attached, err := c.iam.ListAttachedRolePolicies(ctx, &iam.ListAttachedRolePoliciesInput{
		RoleName: ptr.String(name),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("listing attached policies for %s: %w", name, err)
	}
	if attached != nil {
		for _, policy := range attached.AttachedPolicies {
			arn := awssdk.ToString(policy.PolicyArn)
			err := c.retryDo(ctx, func() error {
				_, derr := c.iam.DetachRolePolicy(ctx, &iam.DetachRolePolicyInput{
					RoleName:  ptr.String(name),
					PolicyArn: ptr.String(arn),
				})
				if derr != nil && IsNotFound(derr) {
					return nil
				}
				return classify(derr)
			})
			if err != nil {
				return fmt.Errorf("detaching %s from %s: %w", arn, name, err)
			}
		}
	}

	inline, err := c.iam.ListRolePolicies(ctx, &iam.ListRolePoliciesInput{RoleName: ptr.String(name)})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("listing inline policies for %s: %w", name, err)
	}
	if inline != nil {
		for _, policyName := range inline.PolicyNames {
			err := c.retryDo(ctx, func() error {
				_, derr := c.iam.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
					RoleName:   ptr.String(name),
					PolicyName: ptr.String(policyName),
				})
				if derr != nil && IsNotFound(derr) {
					return nil
				}
				return classify(derr)
			})
			if err != nil {
				return fmt.Errorf("deleting inline policy %s on %s: %w", policyName, name, err)
			}
		}
	}

	return c.retryDo(ctx, func() error {
		_, derr := c.iam.DeleteRole(ctx, &iam.DeleteRoleInput{RoleName: ptr.String(name)})
		if derr != nil && IsNotFound(derr) {
			return nil
		}
		return classify(derr)
	})
}

// EnsureOIDCProvider registers the cluster's OIDC issuer with IAM so
// service accounts can assume roles.
func (c *RealClient) EnsureOIDCProvider(ctx context.Context, cluster, issuerURL string) (*OIDCProvider, error) {
	op := &EnsureOperation[*OIDCProvider]{
		Name:         issuerURL,
		ResourceType: "OIDC provider",
		Get: func(ctx context.Context) (*OIDCProvider, bool, error) {
			return c.findOIDCProvider(ctx, issuerURL)
		},
		Create: func(ctx context.Context) (*OIDCProvider, error) {
			out, err := c.iam.CreateOpenIDConnectProvider(ctx, &iam.CreateOpenIDConnectProviderInput{
				Url:            ptr.String(issuerURL),
				ClientIDList:   []string{"sts.amazonaws.com"},
				ThumbprintList: []string{oidcRootThumbprint},
				Tags: toIAMTags(tags.NewBuilder(cluster).
					WithRole(tags.RoleIdentity).
					Build()),
			})
			if err != nil {
				return nil, err
			}
			return &OIDCProvider{
				ARN: awssdk.ToString(out.OpenIDConnectProviderArn),
				URL: issuerURL,
			}, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// DeleteOIDCProvider removes the provider registered for an issuer URL.
func (c *RealClient) DeleteOIDCProvider(ctx context.Context, issuerURL string) error {
	provider, found, err := c.findOIDCProvider(ctx, issuerURL)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return c.retryDo(ctx, func() error {
		_, derr := c.iam.DeleteOpenIDConnectProvider(ctx, &iam.DeleteOpenIDConnectProviderInput{
			OpenIDConnectProviderArn: ptr.String(provider.ARN),
		})
		if derr != nil && IsNotFound(derr) {
			return nil
		}
		return classify(derr)
	})
}

func (c *RealClient) findRole(ctx context.Context, name string) (*Role, bool, error) {
	out, err := c.iam.GetRole(ctx, &iam.GetRoleInput{RoleName: ptr.String(name)})
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up role %s: %w", name, err)
	}
	return &Role{
		Name: awssdk.ToString(out.Role.RoleName),
		ARN:  awssdk.ToString(out.Role.Arn),
	}, true, nil
}

func (c *RealClient) ensureRole(ctx context.Context, cluster, name, trustPolicy string, policyARNs []string, inlinePolicy string) (*Role, error) {
	op := &EnsureOperation[*Role]{
		Name:         name,
		ResourceType: "IAM role",
		Get: func(ctx context.Context) (*Role, bool, error) {
			return c.findRole(ctx, name)
		},
		Create: func(ctx context.Context) (*Role, error) {
			out, err := c.iam.CreateRole(ctx, &iam.CreateRoleInput{
				RoleName:                 ptr.String(name),
				AssumeRolePolicyDocument: ptr.String(trustPolicy),
				Description:              ptr.String(fmt.Sprintf("Managed by ekstack for cluster %s", cluster)),
				Tags: toIAMTags(tags.NewBuilder(cluster).
					WithRole(tags.RoleIdentity).
					Build()),
			})
			if err != nil {
				return nil, err
			}
			return &Role{
				Name: awssdk.ToString(out.Role.RoleName),
				ARN:  awssdk.ToString(out.Role.Arn),
			}, nil
		},
		Update: func(ctx context.Context, existing *Role) (*Role, bool, error) {
			// Attach and put calls are idempotent, re-assert them so an
			// interrupted earlier run converges.
			if err := c.applyRolePolicies(ctx, name, policyARNs, inlinePolicy); err != nil {
				return nil, false, err
			}
			return existing, false, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	if result.Outcome == OutcomeCreated || result.Outcome == OutcomeAdopted {
		if err := c.applyRolePolicies(ctx, name, policyARNs, inlinePolicy); err != nil {
			return nil, err
		}
	}
	return result.Resource, nil
}

func (c *RealClient) applyRolePolicies(ctx context.Context, name string, policyARNs []string, inlinePolicy string) error {
	for _, arn := range policyARNs {
		err := c.retryDo(ctx, func() error {
			_, aerr := c.iam.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
				RoleName:  ptr.String(name),
				PolicyArn: ptr.String(arn),
			})
			return classify(aerr)
		})
		if err != nil {
			return fmt.Errorf("attaching %s to %s: %w", arn, name, err)
		}
	}
	if inlinePolicy != "" {
		err := c.retryDo(ctx, func() error {
			_, perr := c.iam.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
				RoleName:       ptr.String(name),
				PolicyName:     ptr.String(name + "-policy"),
				PolicyDocument: ptr.String(inlinePolicy),
			})
			return classify(perr)
		})
		if err != nil {
			return fmt.Errorf("putting inline policy on %s: %w", name, err)
		}
	}
	return nil
}

func (c *RealClient) findOIDCProvider(ctx context.Context, issuerURL string) (*OIDCProvider, bool, error) {
	wantHost := strings.TrimPrefix(issuerURL, "https://")

	list, err := c.iam.ListOpenIDConnectProviders(ctx, &iam.ListOpenIDConnectProvidersInput{})
	if err != nil {
		return nil, false, fmt.Errorf("listing OIDC providers: %w", err)
	}
	for _, entry := range list.OpenIDConnectProviderList {
		arn := awssdk.ToString(entry.Arn)
		// The provider ARN ends in the issuer host, match on that before
		// paying for a Get per provider.
		if !strings.HasSuffix(arn, wantHost) {
			continue
		}
		out, err := c.iam.GetOpenIDConnectProvider(ctx, &iam.GetOpenIDConnectProviderInput{
			OpenIDConnectProviderArn: ptr.String(arn),
		})
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, false, fmt.Errorf("reading OIDC provider %s: %w", arn, err)
		}
		if awssdk.ToString(out.Url) == wantHost {
			return &OIDCProvider{ARN: arn, URL: issuerURL}, true, nil
		}
	}
	return nil, false, nil
}
