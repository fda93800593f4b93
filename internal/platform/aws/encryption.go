package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"

	"github.com/ibraheemcisse/ekstack/internal/util/ptr"
	"github.com/ibraheemcisse/ekstack/internal/util/tags"
)

// Deleted KMS keys stay recoverable for a window. Seven days is the
// minimum AWS allows.
const keyDeletionWindowDays = 7

// EnsureKey provisions the KMS key used for Kubernetes secret envelope
// encryption, addressed by its alias. Key rotation is enabled on creation.
func (c *RealClient) EnsureKey(ctx context.Context, cluster, alias string) (*Key, error) {
	op := &EnsureOperation[*Key]{
		Name:         alias,
		ResourceType: "KMS key",
		Get: func(ctx context.Context) (*Key, bool, error) {
			return c.findKey(ctx, alias)
		},
		Create: func(ctx context.Context) (*Key, error) {
			out, err := c.kms.CreateKey(ctx, &kms.CreateKeyInput{
				Description: ptr.String(fmt.Sprintf("Secret encryption key for EKS cluster %s", cluster)),
				Tags: toKMSTags(tags.NewBuilder(cluster).
					WithName(alias).
					WithRole(tags.RoleCluster).
					Build()),
			})
			if err != nil {
				return nil, err
			}
			keyID := awssdk.ToString(out.KeyMetadata.KeyId)

			_, err = c.kms.CreateAlias(ctx, &kms.CreateAliasInput{
				AliasName:   ptr.String(alias),
				TargetKeyId: ptr.String(keyID),
			})
			if err != nil && !IsAlreadyExists(err) {
				return nil, fmt.Errorf("creating alias: %w", err)
			}

			_, err = c.kms.EnableKeyRotation(ctx, &kms.EnableKeyRotationInput{KeyId: ptr.String(keyID)})
			if err != nil {
				return nil, fmt.Errorf("enabling key rotation: %w", err)
			}

			return &Key{
				ID:    keyID,
				ARN:   awssdk.ToString(out.KeyMetadata.Arn),
				Alias: alias,
			}, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// GetKey resolves a key by alias, returning nil when it does not exist.
func (c *RealClient) GetKey(ctx context.Context, alias string) (*Key, error) {
	key, found, err := c.findKey(ctx, alias)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return key, nil
}

// DeleteKey removes the alias and schedules the key itself for deletion.
// KMS keys cannot be destroyed immediately.
func (c *RealClient) DeleteKey(ctx context.Context, alias string) error {
	key, found, err := c.findKey(ctx, alias)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	err = c.retryDo(ctx, func() error {
		_, derr := c.kms.DeleteAlias(ctx, &kms.DeleteAliasInput{AliasName: ptr.String(alias)})
		if derr != nil && IsNotFound(derr) {
			return nil
		}
		return classify(derr)
	})
	if err != nil {
		return fmt.Errorf("deleting alias %s: %w", alias, err)
	}

	return c.retryDo(ctx, func() error {
		_, derr := c.kms.ScheduleKeyDeletion(ctx, &kms.ScheduleKeyDeletionInput{
			KeyId:               ptr.String(key.ID),
			PendingWindowInDays: ptr.Int32(keyDeletionWindowDays),
		})
		if derr != nil && (IsNotFound(derr) || isAPIErrorCode(derr, "KMSInvalidStateException")) {
			return nil
		}
		return classify(derr)
	})
}

func (c *RealClient) findKey(ctx context.Context, alias string) (*Key, bool, error) {
	out, err := c.kms.DescribeKey(ctx, &kms.DescribeKeyInput{KeyId: ptr.String(alias)})
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up key %s: %w", alias, err)
	}
	meta := out.KeyMetadata
	if meta.KeyState == kmstypes.KeyStatePendingDeletion {
		// The alias is gone by now in practice, but guard against a key
		// caught mid-teardown: it cannot encrypt anything.
		return nil, false, nil
	}
	return &Key{
		ID:    awssdk.ToString(meta.KeyId),
		ARN:   awssdk.ToString(meta.Arn),
		Alias: alias,
	}, true, nil
}
