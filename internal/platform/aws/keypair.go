package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/ibraheemcisse/ekstack/internal/util/ptr"
	"github.com/ibraheemcisse/ekstack/internal/util/tags"
)

// EnsureKeyPair imports a public key for SSH access to worker nodes.
func (c *RealClient) EnsureKeyPair(ctx context.Context, cluster, name string, publicKey []byte) (*KeyPair, error) {
	op := &EnsureOperation[*KeyPair]{
		Name:         name,
		ResourceType: "key pair",
		Get: func(ctx context.Context) (*KeyPair, bool, error) {
			out, err := c.ec2.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{
				KeyNames: []string{name},
			})
			if err != nil {
				if IsNotFound(err) {
					return nil, false, nil
				}
				return nil, false, fmt.Errorf("looking up key pair: %w", err)
			}
			if len(out.KeyPairs) == 0 {
				return nil, false, nil
			}
			kp := out.KeyPairs[0]
			return &KeyPair{
				Name:        name,
				Fingerprint: awssdk.ToString(kp.KeyFingerprint),
			}, true, nil
		},
		Create: func(ctx context.Context) (*KeyPair, error) {
			out, err := c.ec2.ImportKeyPair(ctx, &ec2.ImportKeyPairInput{
				KeyName:           ptr.String(name),
				PublicKeyMaterial: publicKey,
				TagSpecifications: ec2TagSpec(ec2types.ResourceTypeKeyPair,
					tags.NewBuilder(cluster).WithName(name).WithRole(tags.RoleNode).Build()),
			})
			if err != nil {
				return nil, err
			}
			return &KeyPair{
				Name:        name,
				Fingerprint: awssdk.ToString(out.KeyFingerprint),
			}, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// DeleteKeyPair removes an imported key pair.
func (c *RealClient) DeleteKeyPair(ctx context.Context, name string) error {
	return c.retryDo(ctx, func() error {
		_, err := c.ec2.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{KeyName: ptr.String(name)})
		if err != nil && IsNotFound(err) {
			return nil
		}
		return classify(err)
	})
}
