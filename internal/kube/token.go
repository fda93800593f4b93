package kube

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

const (
	clusterIDHeader = "x-k8s-aws-id"
	tokenPrefix     = "k8s-aws-v1."

	// The API server honors presigned tokens for 15 minutes. Refresh
	// early so a token never expires mid-request.
	tokenLifetime     = 14 * time.Minute
	tokenRefreshSlack = time.Minute
)

// tokenSource mints EKS bearer tokens by presigning an STS
// GetCallerIdentity request with the cluster name bound into the signed
// headers, the same token `aws eks get-token` produces. Tokens are
// cached until shortly before expiry.
type tokenSource struct {
	presigner *sts.PresignClient
	cluster   string

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newTokenSource(cfg awssdk.Config, clusterName string) *tokenSource {
	client := sts.NewFromConfig(cfg)
	presigner := sts.NewPresignClient(client, func(o *sts.PresignOptions) {
		o.ClientOptions = append(o.ClientOptions, func(so *sts.Options) {
			so.APIOptions = append(so.APIOptions,
				smithyhttp.SetHeaderValue(clusterIDHeader, clusterName))
		})
	})
	return &tokenSource{presigner: presigner, cluster: clusterName}
}

func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expires.Add(-tokenRefreshSlack)) {
		return s.token, nil
	}

	req, err := s.presigner.PresignGetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("presigning STS token for cluster %s: %w", s.cluster, err)
	}

	s.token = tokenPrefix + base64.RawURLEncoding.EncodeToString([]byte(req.URL))
	s.expires = time.Now().Add(tokenLifetime)
	return s.token, nil
}

// tokenTransport injects a fresh bearer token into every request so
// long-running install phases survive token expiry.
type tokenTransport struct {
	base   http.RoundTripper
	source *tokenSource
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token(req.Context())
	if err != nil {
		return nil, err
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(clone)
}
