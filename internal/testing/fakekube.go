package testing

import (
	"context"
	"fmt"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/rest"

	"github.com/ibraheemcisse/ekstack/internal/kube"
)

// FakeKube is an in-memory kube.Client. Waits return immediately, calls
// are recorded, and failures are injected per method through Errs.
type FakeKube struct {
	mu    sync.Mutex
	calls []string

	// Errs injects an error by method name, e.g. "CreateSecret".
	Errs map[string]error

	// Secrets holds created secrets keyed "namespace/name". Seed it to
	// make SecretExists report true.
	Secrets map[string]*corev1.Secret

	// ReadyNodes and TotalNodes are what NodesReady reports.
	ReadyNodes, TotalNodes int

	// LoadBalancerHosts maps "namespace/name" to the hostname returned
	// by the load balancer lookups. Services not present resolve to an
	// error from ServiceLoadBalancerHost.
	LoadBalancerHosts map[string]string

	// Applied accumulates the manifests passed to ApplyManifests.
	Applied [][]byte
}

var _ kube.Client = (*FakeKube)(nil)

// NewFakeKube creates an empty fake cluster client.
func NewFakeKube() *FakeKube {
	return &FakeKube{
		Errs:              make(map[string]error),
		Secrets:           make(map[string]*corev1.Secret),
		LoadBalancerHosts: make(map[string]string),
	}
}

// Calls returns every recorded call in order.
func (f *FakeKube) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeKube) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *FakeKube) fail(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Errs[method]
}

func (f *FakeKube) ApplyManifests(_ context.Context, manifests []byte, fieldManager string) error {
	f.record("ApplyManifests " + fieldManager)
	if err := f.fail("ApplyManifests"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Applied = append(f.Applied, manifests)
	return nil
}

func (f *FakeKube) CreateSecret(_ context.Context, secret *corev1.Secret) error {
	key := secret.Namespace + "/" + secret.Name
	f.record("CreateSecret " + key)
	if err := f.fail("CreateSecret"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Secrets[key] = secret
	return nil
}

func (f *FakeKube) SecretExists(_ context.Context, namespace, name string) (bool, error) {
	key := namespace + "/" + name
	f.record("SecretExists " + key)
	if err := f.fail("SecretExists"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Secrets[key]
	return ok, nil
}

func (f *FakeKube) DeleteSecret(_ context.Context, namespace, name string) error {
	key := namespace + "/" + name
	f.record("DeleteSecret " + key)
	if err := f.fail("DeleteSecret"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Secrets, key)
	return nil
}

func (f *FakeKube) NodesReady(_ context.Context) (int, int, error) {
	f.record("NodesReady")
	if err := f.fail("NodesReady"); err != nil {
		return 0, 0, err
	}
	return f.ReadyNodes, f.TotalNodes, nil
}

func (f *FakeKube) WaitForNodesReady(_ context.Context, want int, _ time.Duration) error {
	f.record(fmt.Sprintf("WaitForNodesReady %d", want))
	return f.fail("WaitForNodesReady")
}

func (f *FakeKube) WaitForDeployment(_ context.Context, namespace, name string, _ time.Duration) error {
	f.record(fmt.Sprintf("WaitForDeployment %s/%s", namespace, name))
	return f.fail("WaitForDeployment")
}

func (f *FakeKube) WaitForDaemonSet(_ context.Context, namespace, name string, _ time.Duration) error {
	f.record(fmt.Sprintf("WaitForDaemonSet %s/%s", namespace, name))
	return f.fail("WaitForDaemonSet")
}

func (f *FakeKube) WaitForServiceEndpoints(_ context.Context, namespace, name string, _ time.Duration) error {
	f.record(fmt.Sprintf("WaitForServiceEndpoints %s/%s", namespace, name))
	return f.fail("WaitForServiceEndpoints")
}

func (f *FakeKube) WaitForServiceLoadBalancer(_ context.Context, namespace, name string, _ time.Duration) (string, error) {
	key := namespace + "/" + name
	f.record("WaitForServiceLoadBalancer " + key)
	if err := f.fail("WaitForServiceLoadBalancer"); err != nil {
		return "", err
	}
	if host, ok := f.LoadBalancerHosts[key]; ok {
		return host, nil
	}
	return "", fmt.Errorf("service %s has no load balancer", key)
}

func (f *FakeKube) ServiceLoadBalancerHost(_ context.Context, namespace, name string) (string, error) {
	key := namespace + "/" + name
	f.record("ServiceLoadBalancerHost " + key)
	if err := f.fail("ServiceLoadBalancerHost"); err != nil {
		return "", err
	}
	if host, ok := f.LoadBalancerHosts[key]; ok {
		return host, nil
	}
	return "", fmt.Errorf("service %s has no load balancer", key)
}

func (f *FakeKube) RESTConfig() *rest.Config {
	return &rest.Config{Host: "https://kube.invalid"}
}
