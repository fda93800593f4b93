package kube

import (
	"context"
	"fmt"
	"net/http"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"

	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
)

// Client provides the Kubernetes operations the platform needs after the
// cluster exists: applying manifests, managing secrets, and waiting for
// workloads to come up.
type Client interface {
	// ApplyManifests applies multi-document YAML using Server-Side Apply.
	// The fieldManager identifies the actor applying the configuration.
	ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) error

	// CreateSecret creates or replaces a secret in the specified namespace.
	CreateSecret(ctx context.Context, secret *corev1.Secret) error

	// SecretExists reports whether a secret exists.
	SecretExists(ctx context.Context, namespace, name string) (bool, error)

	// DeleteSecret deletes a secret, returning nil if not found.
	DeleteSecret(ctx context.Context, namespace, name string) error

	// NodesReady returns the number of Ready nodes and the total node count.
	NodesReady(ctx context.Context) (ready, total int, err error)

	// WaitForNodesReady blocks until at least want nodes are Ready.
	WaitForNodesReady(ctx context.Context, want int, timeout time.Duration) error

	// WaitForDeployment blocks until the deployment is available.
	WaitForDeployment(ctx context.Context, namespace, name string, timeout time.Duration) error

	// WaitForDaemonSet blocks until the daemonset is ready on every node.
	WaitForDaemonSet(ctx context.Context, namespace, name string, timeout time.Duration) error

	// WaitForServiceEndpoints blocks until the service has a ready endpoint.
	WaitForServiceEndpoints(ctx context.Context, namespace, name string, timeout time.Duration) error

	// WaitForServiceLoadBalancer blocks until the service has a load
	// balancer ingress and returns its hostname or IP.
	WaitForServiceLoadBalancer(ctx context.Context, namespace, name string, timeout time.Duration) (string, error)

	// ServiceLoadBalancerHost resolves the load balancer hostname or IP of
	// a service, or an error when none is provisioned yet.
	ServiceLoadBalancerHost(ctx context.Context, namespace, name string) (string, error)

	// RESTConfig exposes the underlying REST configuration for clients
	// layered on top (helm, controller-runtime).
	RESTConfig() *rest.Config
}

type client struct {
	clientset     kubernetes.Interface
	dynamicClient dynamic.Interface
	mapper        meta.RESTMapper
	restConfig    *rest.Config
}

// NewForCluster builds a Client for an EKS cluster without requiring a
// kubeconfig on disk: bearer tokens are minted in process from the same
// AWS credential chain the provisioner uses.
func NewForCluster(awsCfg awssdk.Config, cluster *aws.Cluster) (Client, error) {
	if cluster.Endpoint == "" {
		return nil, fmt.Errorf("cluster %s has no endpoint yet", cluster.Name)
	}

	source := newTokenSource(awsCfg, cluster.Name)
	restConfig := &rest.Config{
		Host: cluster.Endpoint,
		TLSClientConfig: rest.TLSClientConfig{
			CAData: cluster.CertificateAuthority,
		},
		WrapTransport: func(rt http.RoundTripper) http.RoundTripper {
			return &tokenTransport{base: rt, source: source}
		},
	}
	return NewFromRESTConfig(restConfig)
}

// NewFromRESTConfig builds a Client from an existing REST configuration,
// for access through a kubeconfig written earlier.
func NewFromRESTConfig(restConfig *rest.Config) (Client, error) {
	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	// The deferred mapper re-discovers on demand, so CRDs installed
	// after client construction (ArgoCD's Application) still resolve.
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(discoveryClient))

	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        mapper,
		restConfig:    restConfig,
	}, nil
}

// NewFromClients creates a Client from pre-configured clients.
// This is useful for testing with fake clients.
func NewFromClients(
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	mapper meta.RESTMapper,
) Client {
	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        mapper,
	}
}

func (c *client) RESTConfig() *rest.Config {
	return c.restConfig
}
