package aws

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"

	"github.com/ibraheemcisse/ekstack/internal/util/ptr"
	"github.com/ibraheemcisse/ekstack/internal/util/tags"
)

// EnsureRepository provisions an ECR repository with scan-on-push and a
// lifecycle policy that expires all but the most recent images.
func (c *RealClient) EnsureRepository(ctx context.Context, spec RepositorySpec) (*Repository, error) {
	op := &EnsureOperation[*Repository]{
		Name:         spec.Name,
		ResourceType: "repository",
		Get: func(ctx context.Context) (*Repository, bool, error) {
			return c.findRepository(ctx, spec.Name)
		},
		Create: func(ctx context.Context) (*Repository, error) {
			input := &ecr.CreateRepositoryInput{
				RepositoryName: ptr.String(spec.Name),
				ImageScanningConfiguration: &ecrtypes.ImageScanningConfiguration{
					ScanOnPush: spec.ScanOnPush,
				},
				Tags: toECRTags(tags.NewBuilder(spec.Cluster).
					WithRole(tags.RoleRegistry).
					Build()),
			}
			if spec.KMSKeyARN != "" {
				input.EncryptionConfiguration = &ecrtypes.EncryptionConfiguration{
					EncryptionType: ecrtypes.EncryptionTypeKms,
					KmsKey:         ptr.String(spec.KMSKeyARN),
				}
			}
			out, err := c.ecr.CreateRepository(ctx, input)
			if err != nil {
				return nil, err
			}
			repo := &Repository{
				Name: awssdk.ToString(out.Repository.RepositoryName),
				ARN:  awssdk.ToString(out.Repository.RepositoryArn),
				URI:  awssdk.ToString(out.Repository.RepositoryUri),
			}
			if err := c.putLifecyclePolicy(ctx, spec.Name, spec.KeepImages); err != nil {
				return nil, err
			}
			return repo, nil
		},
		Update: func(ctx context.Context, existing *Repository) (*Repository, bool, error) {
			// The policy put is idempotent, re-assert it so KeepImages
			// changes in configuration take effect.
			if err := c.putLifecyclePolicy(ctx, spec.Name, spec.KeepImages); err != nil {
				return nil, false, err
			}
			return existing, false, nil
		},
	}

	result, err := op.Execute(ctx, c)
	if err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// GetRepository resolves a repository by name, returning nil when absent.
func (c *RealClient) GetRepository(ctx context.Context, name string) (*Repository, error) {
	repo, found, err := c.findRepository(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return repo, nil
}

// DeleteRepository removes a repository including any images in it.
func (c *RealClient) DeleteRepository(ctx context.Context, name string) error {
	return c.retryDo(ctx, func() error {
		_, err := c.ecr.DeleteRepository(ctx, &ecr.DeleteRepositoryInput{
			RepositoryName: ptr.String(name),
			Force:          true,
		})
		if err != nil && IsNotFound(err) {
			return nil
		}
		return classify(err)
	})
}

func (c *RealClient) findRepository(ctx context.Context, name string) (*Repository, bool, error) {
	out, err := c.ecr.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{name},
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up repository %s: %w", name, err)
	}
	if len(out.Repositories) == 0 {
		return nil, false, nil
	}
	repo := out.Repositories[0]
	return &Repository{
		Name: awssdk.ToString(repo.RepositoryName),
		ARN:  awssdk.ToString(repo.RepositoryArn),
		URI:  awssdk.ToString(repo.RepositoryUri),
	}, true, nil
}

type lifecycleRule struct {
	RulePriority int                `json:"rulePriority"`
	Description  string             `json:"description"`
	Selection    lifecycleSelection `json:"selection"`
	Action       lifecycleAction    `json:"action"`
}

type lifecycleSelection struct {
	TagStatus   string `json:"tagStatus"`
	CountType   string `json:"countType"`
	CountNumber int    `json:"countNumber"`
}

type lifecycleAction struct {
	Type string `json:"type"`
}

func (c *RealClient) putLifecyclePolicy(ctx context.Context, name string, keepImages int) error {
	if keepImages <= 0 {
		return nil
	}
	policy, err := json.Marshal(struct {
		Rules []lifecycleRule `json:"rules"`
	}{
		Rules: []lifecycleRule{{
			RulePriority: 1,
			Description:  fmt.Sprintf("Keep the most recent %d images", keepImages),
			Selection: lifecycleSelection{
				TagStatus:   "any",
				CountType:   "imageCountMoreThan",
				CountNumber: keepImages,
			},
			Action: lifecycleAction{Type: "expire"},
		}},
	})
	if err != nil {
		return fmt.Errorf("encoding lifecycle policy: %w", err)
	}

	return c.retryDo(ctx, func() error {
		_, perr := c.ecr.PutLifecyclePolicy(ctx, &ecr.PutLifecyclePolicyInput{
			RepositoryName:      ptr.String(name),
			LifecyclePolicyText: ptr.String(string(policy)),
		})
		return classify(perr)
	})
}
