package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

// testClient builds a RealClient with fast retry settings and no service
// clients. Tests that reach an API must inject a stub via options.
func testClient(opts ...ClientOption) *RealClient {
	c := &RealClient{
		region:   "us-east-1",
		timeouts: config.TestTimeouts(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- EnsureOperation ---

func TestEnsureOperation_CreatesWhenAbsent(t *testing.T) {
	t.Parallel()

	created := &VPC{ID: "vpc-123", CIDR: "10.0.0.0/16"}
	createCalled := false

	op := &EnsureOperation[*VPC]{
		Name:         "demo-vpc",
		ResourceType: "VPC",
		Get: func(_ context.Context) (*VPC, bool, error) {
			return nil, false, nil
		},
		Create: func(_ context.Context) (*VPC, error) {
			createCalled = true
			return created, nil
		},
	}

	result, err := op.Execute(context.Background(), testClient())
	require.NoError(t, err)
	assert.True(t, createCalled)
	assert.Equal(t, OutcomeCreated, result.Outcome)
	assert.Equal(t, created, result.Resource)
}

func TestEnsureOperation_UnchangedWhenPresent(t *testing.T) {
	t.Parallel()

	existing := &VPC{ID: "vpc-123", CIDR: "10.0.0.0/16"}

	op := &EnsureOperation[*VPC]{
		Name:         "demo-vpc",
		ResourceType: "VPC",
		Get: func(_ context.Context) (*VPC, bool, error) {
			return existing, true, nil
		},
		Create: func(_ context.Context) (*VPC, error) {
			t.Fatal("Create should not run when the resource exists")
			return nil, nil
		},
	}

	result, err := op.Execute(context.Background(), testClient())
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, result.Outcome)
	assert.Equal(t, existing, result.Resource)
}

func TestEnsureOperation_ValidateRejectsMismatch(t *testing.T) {
	t.Parallel()

	op := &EnsureOperation[*VPC]{
		Name:         "demo-vpc",
		ResourceType: "VPC",
		Get: func(_ context.Context) (*VPC, bool, error) {
			return &VPC{ID: "vpc-123", CIDR: "172.16.0.0/16"}, true, nil
		},
		Validate: func(v *VPC) error {
			return errors.New("has CIDR 172.16.0.0/16, configuration wants 10.0.0.0/16")
		},
		Create: func(_ context.Context) (*VPC, error) {
			t.Fatal("Create should not run when validation fails")
			return nil, nil
		},
	}

	_, err := op.Execute(context.Background(), testClient())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be reused")
	assert.Contains(t, err.Error(), "172.16.0.0/16")
}

func TestEnsureOperation_UpdateReconcilesDrift(t *testing.T) {
	t.Parallel()

	op := &EnsureOperation[*LogGroup]{
		Name:         "/aws/eks/demo/cluster",
		ResourceType: "log group",
		Get: func(_ context.Context) (*LogGroup, bool, error) {
			return &LogGroup{Name: "/aws/eks/demo/cluster", RetentionDays: 7}, true, nil
		},
		Update: func(_ context.Context, existing *LogGroup) (*LogGroup, bool, error) {
			existing.RetentionDays = 30
			return existing, true, nil
		},
	}

	result, err := op.Execute(context.Background(), testClient())
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, result.Outcome)
	assert.Equal(t, int32(30), result.Resource.RetentionDays)
}

func TestEnsureOperation_AdoptsOnCreateRace(t *testing.T) {
	t.Parallel()

	gets := 0
	winner := &Repository{Name: "demo/api", URI: "123.dkr.ecr.us-east-1.amazonaws.com/demo/api"}

	op := &EnsureOperation[*Repository]{
		Name:         "demo/api",
		ResourceType: "repository",
		Get: func(_ context.Context) (*Repository, bool, error) {
			gets++
			if gets == 1 {
				return nil, false, nil
			}
			return winner, true, nil
		},
		Create: func(_ context.Context) (*Repository, error) {
			return nil, &smithy.GenericAPIError{Code: "RepositoryAlreadyExistsException", Message: "exists"}
		},
	}

	result, err := op.Execute(context.Background(), testClient())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdopted, result.Outcome)
	assert.Equal(t, winner, result.Resource)
}

func TestEnsureOperation_RetriesThrottling(t *testing.T) {
	t.Parallel()

	attempts := 0
	op := &EnsureOperation[*VPC]{
		Name:         "demo-vpc",
		ResourceType: "VPC",
		Get: func(_ context.Context) (*VPC, bool, error) {
			return nil, false, nil
		},
		Create: func(_ context.Context) (*VPC, error) {
			attempts++
			if attempts < 2 {
				return nil, &smithy.GenericAPIError{Code: "RequestLimitExceeded", Message: "slow down"}
			}
			return &VPC{ID: "vpc-123"}, nil
		},
	}

	result, err := op.Execute(context.Background(), testClient())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts, "throttling should trigger a retry")
	assert.Equal(t, OutcomeCreated, result.Outcome)
}

func TestEnsureOperation_ValidationErrorNotRetried(t *testing.T) {
	t.Parallel()

	attempts := 0
	op := &EnsureOperation[*VPC]{
		Name:         "demo-vpc",
		ResourceType: "VPC",
		Get: func(_ context.Context) (*VPC, bool, error) {
			return nil, false, nil
		},
		Create: func(_ context.Context) (*VPC, error) {
			attempts++
			return nil, &smithy.GenericAPIError{Code: "InvalidParameterValue", Message: "bad CIDR"}
		},
	}

	_, err := op.Execute(context.Background(), testClient())
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "validation errors must not be retried")
	assert.Contains(t, err.Error(), "bad CIDR")
}

func TestEnsureOperation_WaitRunsAfterCreate(t *testing.T) {
	t.Parallel()

	op := &EnsureOperation[*NATGateway]{
		Name:         "demo-nat-0",
		ResourceType: "NAT gateway",
		Get: func(_ context.Context) (*NATGateway, bool, error) {
			return nil, false, nil
		},
		Create: func(_ context.Context) (*NATGateway, error) {
			return &NATGateway{ID: "nat-123", State: "pending"}, nil
		},
		Wait: func(_ context.Context, nat *NATGateway) (*NATGateway, error) {
			nat.State = "available"
			return nat, nil
		},
	}

	result, err := op.Execute(context.Background(), testClient())
	require.NoError(t, err)
	assert.Equal(t, "available", result.Resource.State)
}

func TestEnsureOperation_GetErrorPropagates(t *testing.T) {
	t.Parallel()

	op := &EnsureOperation[*VPC]{
		Name:         "demo-vpc",
		ResourceType: "VPC",
		Get: func(_ context.Context) (*VPC, bool, error) {
			return nil, false, &smithy.GenericAPIError{Code: "AuthFailure", Message: "credentials expired"}
		},
		Create: func(_ context.Context) (*VPC, error) {
			t.Fatal("Create should not run when Get fails")
			return nil, nil
		},
	}

	_, err := op.Execute(context.Background(), testClient())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checking for existing VPC")
	assert.Contains(t, err.Error(), "credentials expired")
}

// --- DeleteOperation ---

func TestDeleteOperation_DeletesExisting(t *testing.T) {
	t.Parallel()

	deleted := false
	op := &DeleteOperation[*Repository]{
		Name:         "demo/api",
		ResourceType: "repository",
		Get: func(_ context.Context) (*Repository, bool, error) {
			return &Repository{Name: "demo/api"}, true, nil
		},
		Delete: func(_ context.Context, repo *Repository) error {
			deleted = true
			assert.Equal(t, "demo/api", repo.Name)
			return nil
		},
	}

	err := op.Execute(context.Background(), testClient())
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestDeleteOperation_AbsentIsNoop(t *testing.T) {
	t.Parallel()

	op := &DeleteOperation[*Repository]{
		Name:         "demo/api",
		ResourceType: "repository",
		Get: func(_ context.Context) (*Repository, bool, error) {
			return nil, false, nil
		},
		Delete: func(_ context.Context, _ *Repository) error {
			t.Fatal("Delete should not run for an absent resource")
			return nil
		},
	}

	err := op.Execute(context.Background(), testClient())
	require.NoError(t, err)
}

func TestDeleteOperation_RetriesDependencyViolation(t *testing.T) {
	t.Parallel()

	attempts := 0
	op := &DeleteOperation[*SecurityGroup]{
		Name:         "demo-node",
		ResourceType: "security group",
		Get: func(_ context.Context) (*SecurityGroup, bool, error) {
			return &SecurityGroup{ID: "sg-123", Name: "demo-node"}, true, nil
		},
		Delete: func(_ context.Context, _ *SecurityGroup) error {
			attempts++
			if attempts < 2 {
				return &smithy.GenericAPIError{Code: "DependencyViolation", Message: "has a dependent object"}
			}
			return nil
		},
	}

	err := op.Execute(context.Background(), testClient())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts, "dependency violations should be retried")
}

func TestDeleteOperation_NotFoundDuringDeleteIsSuccess(t *testing.T) {
	t.Parallel()

	op := &DeleteOperation[*Repository]{
		Name:         "demo/api",
		ResourceType: "repository",
		Get: func(_ context.Context) (*Repository, bool, error) {
			return &Repository{Name: "demo/api"}, true, nil
		},
		Delete: func(_ context.Context, _ *Repository) error {
			return &smithy.GenericAPIError{Code: "RepositoryNotFoundException", Message: "already gone"}
		},
	}

	err := op.Execute(context.Background(), testClient())
	require.NoError(t, err)
}

func TestDeleteOperation_WaitError(t *testing.T) {
	t.Parallel()

	op := &DeleteOperation[*Cluster]{
		Name:         "demo",
		ResourceType: "EKS cluster",
		Get: func(_ context.Context) (*Cluster, bool, error) {
			return &Cluster{Name: "demo"}, true, nil
		},
		Delete: func(_ context.Context, _ *Cluster) error {
			return nil
		},
		Wait: func(_ context.Context) error {
			return errors.New("exceeded max wait time")
		},
	}

	err := op.Execute(context.Background(), testClient())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waiting for EKS cluster")
}
