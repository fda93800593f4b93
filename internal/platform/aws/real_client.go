package aws

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/util/retry"
)

// RealClient implements CloudManager against the live AWS APIs.
type RealClient struct {
	sdkConfig awssdk.Config
	region    string
	timeouts  config.Timeouts

	ec2  EC2API
	eks  EKSAPI
	ecr  ECRAPI
	rds  RDSAPI
	kms  KMSAPI
	logs LogsAPI
	iam  IAMAPI
	sts  STSAPI

	mu        sync.Mutex
	accountID string
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts overrides the default provisioning timeouts.
func WithTimeouts(t config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithHTTPClient sets the HTTP client used by every service client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *RealClient) {
		c.sdkConfig.HTTPClient = hc
	}
}

// WithEC2API replaces the EC2 client, for tests.
func WithEC2API(api EC2API) ClientOption { return func(c *RealClient) { c.ec2 = api } }

// WithEKSAPI replaces the EKS client, for tests.
func WithEKSAPI(api EKSAPI) ClientOption { return func(c *RealClient) { c.eks = api } }

// WithECRAPI replaces the ECR client, for tests.
func WithECRAPI(api ECRAPI) ClientOption { return func(c *RealClient) { c.ecr = api } }

// WithRDSAPI replaces the RDS client, for tests.
func WithRDSAPI(api RDSAPI) ClientOption { return func(c *RealClient) { c.rds = api } }

// WithKMSAPI replaces the KMS client, for tests.
func WithKMSAPI(api KMSAPI) ClientOption { return func(c *RealClient) { c.kms = api } }

// WithLogsAPI replaces the CloudWatch Logs client, for tests.
func WithLogsAPI(api LogsAPI) ClientOption { return func(c *RealClient) { c.logs = api } }

// WithIAMAPI replaces the IAM client, for tests.
func WithIAMAPI(api IAMAPI) ClientOption { return func(c *RealClient) { c.iam = api } }

// WithSTSAPI replaces the STS client, for tests.
func WithSTSAPI(api STSAPI) ClientOption { return func(c *RealClient) { c.sts = api } }

// NewRealClient resolves AWS credentials from the default chain
// (environment, shared config, IMDS) and builds service clients for the
// given region.
func NewRealClient(ctx context.Context, region string, opts ...ClientOption) (*RealClient, error) {
	if region == "" {
		return nil, fmt.Errorf("region is required")
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	client := &RealClient{
		sdkConfig: sdkConfig,
		region:    region,
		timeouts:  config.DefaultTimeouts(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.ec2 == nil {
		client.ec2 = ec2.NewFromConfig(client.sdkConfig)
	}
	if client.eks == nil {
		client.eks = eks.NewFromConfig(client.sdkConfig)
	}
	if client.ecr == nil {
		client.ecr = ecr.NewFromConfig(client.sdkConfig)
	}
	if client.rds == nil {
		client.rds = rds.NewFromConfig(client.sdkConfig)
	}
	if client.kms == nil {
		client.kms = kms.NewFromConfig(client.sdkConfig)
	}
	if client.logs == nil {
		client.logs = cloudwatchlogs.NewFromConfig(client.sdkConfig)
	}
	if client.iam == nil {
		client.iam = iam.NewFromConfig(client.sdkConfig)
	}
	if client.sts == nil {
		client.sts = sts.NewFromConfig(client.sdkConfig)
	}

	return client, nil
}

// Region returns the region the client operates in.
func (c *RealClient) Region() string {
	return c.region
}

// SDKConfig exposes the resolved AWS configuration so other layers (the
// kubeconfig token signer, report uploads) can build their own clients
// from the same credentials.
func (c *RealClient) SDKConfig() awssdk.Config {
	return c.sdkConfig
}

// retryOptions translates the configured timeouts into retry tuning.
func (c *RealClient) retryOptions() []retry.Option {
	return []retry.Option{
		retry.WithMaxAttempts(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay),
	}
}

// retryDo runs fn with the client's backoff settings.
func (c *RealClient) retryDo(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, fn, c.retryOptions()...)
}

// AccountID returns the calling account, resolving it once via STS.
func (c *RealClient) AccountID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accountID != "" {
		return c.accountID, nil
	}
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("resolving AWS account: %w", err)
	}
	c.accountID = awssdk.ToString(out.Account)
	return c.accountID, nil
}
