package loadtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	host string
	err  error

	namespace string
	name      string
}

func (f *fakeResolver) ServiceLoadBalancerHost(ctx context.Context, namespace, name string) (string, error) {
	f.namespace = namespace
	f.name = name
	return f.host, f.err
}

func TestResolveTarget_URL(t *testing.T) {
	t.Parallel()
	url, err := ResolveTarget(context.Background(), "https://shop.example.com/", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", url, "trailing slash should be trimmed")
}

func TestResolveTarget_Service(t *testing.T) {
	t.Parallel()
	resolver := &fakeResolver{host: "a1b2.elb.eu-central-1.amazonaws.com"}

	url, err := ResolveTarget(context.Background(), "service:shop/storefront", resolver)
	require.NoError(t, err)
	assert.Equal(t, "http://a1b2.elb.eu-central-1.amazonaws.com", url)
	assert.Equal(t, "shop", resolver.namespace)
	assert.Equal(t, "storefront", resolver.name)
}

func TestResolveTarget_ServiceErrors(t *testing.T) {
	t.Parallel()

	_, err := ResolveTarget(context.Background(), "service:storefront", &fakeResolver{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be service:<namespace>/<name>")

	_, err = ResolveTarget(context.Background(), "service:shop/storefront", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires cluster access")

	resolver := &fakeResolver{err: errors.New("no ingress yet")}
	_, err = ResolveTarget(context.Background(), "service:shop/storefront", resolver)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve service shop/storefront")
}

func TestResolveTarget_InvalidURL(t *testing.T) {
	t.Parallel()
	_, err := ResolveTarget(context.Background(), "ftp://example.com", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid http(s) URL")
}

func TestTargetHostPort(t *testing.T) {
	t.Parallel()

	host, port, err := TargetHostPort("http://shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", host)
	assert.Equal(t, 80, port)

	host, port, err = TargetHostPort("https://shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", host)
	assert.Equal(t, 443, port)

	host, port, err = TargetHostPort("http://127.0.0.1:8080")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, 8080, port)
}
