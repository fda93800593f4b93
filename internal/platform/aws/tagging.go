package aws

import (
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	ecrtypes "github.com/aws/aws-sdk-go-v2/service/ecr/types"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/ibraheemcisse/ekstack/internal/util/ptr"
	"github.com/ibraheemcisse/ekstack/internal/util/tags"
)

// Every service client takes its own tag type. These helpers convert the
// shared map form once, near the call sites that need them.

func toEC2Tags(m map[string]string) []ec2types.Tag {
	out := make([]ec2types.Tag, 0, len(m))
	for k, v := range m {
		out = append(out, ec2types.Tag{Key: ptr.String(k), Value: ptr.String(v)})
	}
	return out
}

func ec2TagSpec(resourceType ec2types.ResourceType, m map[string]string) []ec2types.TagSpecification {
	return []ec2types.TagSpecification{{
		ResourceType: resourceType,
		Tags:         toEC2Tags(m),
	}}
}

func toECRTags(m map[string]string) []ecrtypes.Tag {
	out := make([]ecrtypes.Tag, 0, len(m))
	for k, v := range m {
		out = append(out, ecrtypes.Tag{Key: ptr.String(k), Value: ptr.String(v)})
	}
	return out
}

func toRDSTags(m map[string]string) []rdstypes.Tag {
	out := make([]rdstypes.Tag, 0, len(m))
	for k, v := range m {
		out = append(out, rdstypes.Tag{Key: ptr.String(k), Value: ptr.String(v)})
	}
	return out
}

func toKMSTags(m map[string]string) []kmstypes.Tag {
	out := make([]kmstypes.Tag, 0, len(m))
	for k, v := range m {
		out = append(out, kmstypes.Tag{TagKey: ptr.String(k), TagValue: ptr.String(v)})
	}
	return out
}

func toIAMTags(m map[string]string) []iamtypes.Tag {
	out := make([]iamtypes.Tag, 0, len(m))
	for k, v := range m {
		out = append(out, iamtypes.Tag{Key: ptr.String(k), Value: ptr.String(v)})
	}
	return out
}

// nameFilter matches EC2 resources by their Name tag.
func nameFilter(name string) ec2types.Filter {
	return ec2types.Filter{Name: ptr.String("tag:" + tags.KeyName), Values: []string{name}}
}

// clusterFilter matches EC2 resources owned by a cluster.
func clusterFilter(cluster string) ec2types.Filter {
	return ec2types.Filter{Name: ptr.String("tag:" + tags.KeyCluster), Values: []string{cluster}}
}

func vpcFilter(vpcID string) ec2types.Filter {
	return ec2types.Filter{Name: ptr.String("vpc-id"), Values: []string{vpcID}}
}
