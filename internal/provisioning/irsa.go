package provisioning

import (
	"fmt"
	"strings"

	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

// IRSAPhase provisions one IAM role per addon that needs AWS API access,
// each assumable only by that addon's service account through the cluster
// OIDC provider.
type IRSAPhase struct{}

// NewIRSAPhase creates the IRSA phase.
func NewIRSAPhase() *IRSAPhase {
	return &IRSAPhase{}
}

// Name implements Phase.
func (p *IRSAPhase) Name() string { return "irsa" }

// irsaAddon describes one addon's role requirements.
type irsaAddon struct {
	Name           string
	Namespace      string
	ServiceAccount string
	InlinePolicy   string
}

// Provision implements Phase.
func (p *IRSAPhase) Provision(ctx *Context) error {
	if ctx.State.Cluster == nil || ctx.State.OIDCProvider == nil {
		return fmt.Errorf("cluster phase must run first")
	}

	issuerHost := strings.TrimPrefix(ctx.State.Cluster.OIDCIssuer, "https://")

	for _, addon := range enabledIRSAAddons(ctx) {
		role, err := ctx.Cloud.EnsureIRSARole(ctx, aws.IRSARoleSpec{
			Cluster:        ctx.Config.Name,
			Name:           naming.AddonRole(ctx.Config.Name, addon.Name),
			ProviderARN:    ctx.State.OIDCProvider.ARN,
			IssuerHost:     issuerHost,
			Namespace:      addon.Namespace,
			ServiceAccount: addon.ServiceAccount,
			InlinePolicy:   addon.InlinePolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to ensure IRSA role for %s: %w", addon.Name, err)
		}

		ctx.State.IRSARoles[addon.Name] = role
		logResourceReady(ctx.Observer, p.Name(), role.Name,
			fmt.Sprintf("bound to %s/%s", addon.Namespace, addon.ServiceAccount))
	}

	return nil
}

// enabledIRSAAddons returns the addons that get a role, in install order.
func enabledIRSAAddons(ctx *Context) []irsaAddon {
	var addons []irsaAddon

	if ctx.Config.Addons.LoadBalancerControllerEnabled() {
		addons = append(addons, irsaAddon{
			Name:           "aws-load-balancer-controller",
			Namespace:      "kube-system",
			ServiceAccount: "aws-load-balancer-controller",
			InlinePolicy:   loadBalancerControllerPolicy,
		})
	}

	if ctx.Config.Addons.ClusterAutoscalerEnabled() {
		addons = append(addons, irsaAddon{
			Name:           "cluster-autoscaler",
			Namespace:      "kube-system",
			ServiceAccount: "cluster-autoscaler",
			InlinePolicy:   clusterAutoscalerPolicy,
		})
	}

	if ctx.Config.HasDatabase() {
		addons = append(addons, irsaAddon{
			Name:           "external-secrets",
			Namespace:      "external-secrets",
			ServiceAccount: "external-secrets",
			InlinePolicy:   externalSecretsPolicy(ctx.Config.Name),
		})
	}

	return addons
}

// loadBalancerControllerPolicy grants the AWS Load Balancer Controller the
// permissions to manage ALBs/NLBs for Ingress and Service resources. It is
// a condensed rendition of the controller's published policy.
const loadBalancerControllerPolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Action": "iam:CreateServiceLinkedRole",
      "Resource": "*",
      "Condition": {
        "StringEquals": {
          "iam:AWSServiceName": "elasticloadbalancing.amazonaws.com"
        }
      }
    },
    {
      "Effect": "Allow",
      "Action": [
        "ec2:DescribeAccountAttributes",
        "ec2:DescribeAddresses",
        "ec2:DescribeAvailabilityZones",
        "ec2:DescribeInternetGateways",
        "ec2:DescribeVpcs",
        "ec2:DescribeSubnets",
        "ec2:DescribeSecurityGroups",
        "ec2:DescribeInstances",
        "ec2:DescribeNetworkInterfaces",
        "ec2:DescribeTags",
        "ec2:GetCoipPoolUsage",
        "ec2:DescribeCoipPools",
        "elasticloadbalancing:DescribeLoadBalancers",
        "elasticloadbalancing:DescribeLoadBalancerAttributes",
        "elasticloadbalancing:DescribeListeners",
        "elasticloadbalancing:DescribeListenerCertificates",
        "elasticloadbalancing:DescribeSSLPolicies",
        "elasticloadbalancing:DescribeRules",
        "elasticloadbalancing:DescribeTargetGroups",
        "elasticloadbalancing:DescribeTargetGroupAttributes",
        "elasticloadbalancing:DescribeTargetHealth",
        "elasticloadbalancing:DescribeTags"
      ],
      "Resource": "*"
    },
    {
      "Effect": "Allow",
      "Action": [
        "cognito-idp:DescribeUserPoolClient",
        "acm:ListCertificates",
        "acm:DescribeCertificate",
        "iam:ListServerCertificates",
        "iam:GetServerCertificate",
        "wafv2:GetWebACL",
        "wafv2:GetWebACLForResource",
        "wafv2:AssociateWebACL",
        "wafv2:DisassociateWebACL",
        "shield:GetSubscriptionState",
        "shield:DescribeProtection",
        "shield:CreateProtection",
        "shield:DeleteProtection"
      ],
      "Resource": "*"
    },
    {
      "Effect": "Allow",
      "Action": [
        "ec2:AuthorizeSecurityGroupIngress",
        "ec2:RevokeSecurityGroupIngress",
        "ec2:CreateSecurityGroup",
        "ec2:CreateTags",
        "ec2:DeleteTags",
        "ec2:DeleteSecurityGroup"
      ],
      "Resource": "*"
    },
    {
      "Effect": "Allow",
      "Action": [
        "elasticloadbalancing:CreateLoadBalancer",
        "elasticloadbalancing:CreateTargetGroup",
        "elasticloadbalancing:CreateListener",
        "elasticloadbalancing:DeleteListener",
        "elasticloadbalancing:CreateRule",
        "elasticloadbalancing:DeleteRule",
        "elasticloadbalancing:AddTags",
        "elasticloadbalancing:RemoveTags",
        "elasticloadbalancing:ModifyLoadBalancerAttributes",
        "elasticloadbalancing:SetIpAddressType",
        "elasticloadbalancing:SetSecurityGroups",
        "elasticloadbalancing:SetSubnets",
        "elasticloadbalancing:DeleteLoadBalancer",
        "elasticloadbalancing:ModifyTargetGroup",
        "elasticloadbalancing:ModifyTargetGroupAttributes",
        "elasticloadbalancing:DeleteTargetGroup",
        "elasticloadbalancing:RegisterTargets",
        "elasticloadbalancing:DeregisterTargets",
        "elasticloadbalancing:SetWebAcl",
        "elasticloadbalancing:ModifyListener",
        "elasticloadbalancing:AddListenerCertificates",
        "elasticloadbalancing:RemoveListenerCertificates",
        "elasticloadbalancing:ModifyRule"
      ],
      "Resource": "*"
    }
  ]
}`

// clusterAutoscalerPolicy lets the autoscaler discover node groups and
// adjust their desired capacity.
const clusterAutoscalerPolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Action": [
        "autoscaling:DescribeAutoScalingGroups",
        "autoscaling:DescribeAutoScalingInstances",
        "autoscaling:DescribeLaunchConfigurations",
        "autoscaling:DescribeScalingActivities",
        "autoscaling:DescribeTags",
        "ec2:DescribeImages",
        "ec2:DescribeInstanceTypes",
        "ec2:DescribeLaunchTemplateVersions",
        "ec2:GetInstanceTypesFromInstanceRequirements",
        "eks:DescribeNodegroup"
      ],
      "Resource": "*"
    },
    {
      "Effect": "Allow",
      "Action": [
        "autoscaling:SetDesiredCapacity",
        "autoscaling:TerminateInstanceInAutoScalingGroup"
      ],
      "Resource": "*"
    }
  ]
}`

// externalSecretsPolicy grants read access to secrets under the cluster's
// Secrets Manager prefix.
func externalSecretsPolicy(cluster string) string {
	return fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Action": [
        "secretsmanager:GetSecretValue",
        "secretsmanager:DescribeSecret",
        "secretsmanager:ListSecretVersionIds"
      ],
      "Resource": "arn:aws:secretsmanager:*:*:secret:ekstack/%s/*"
    }
  ]
}`, cluster)
}
