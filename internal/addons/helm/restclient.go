// Package helm installs charts programmatically through the Helm SDK.
package helm

import (
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// RESTConfigClientGetter implements genericclioptions.RESTClientGetter
// on top of an existing rest.Config instead of a kubeconfig file. The
// config keeps its transport wrappers, so bearer tokens minted in
// process keep refreshing underneath long-running installs.
type RESTConfigClientGetter struct {
	restConfig *rest.Config
	namespace  string
}

// NewRESTConfigClientGetter creates a RESTClientGetter for the given
// REST config and namespace.
func NewRESTConfigClientGetter(restConfig *rest.Config, namespace string) *RESTConfigClientGetter {
	return &RESTConfigClientGetter{
		restConfig: restConfig,
		namespace:  namespace,
	}
}

// ToRESTConfig returns the wrapped REST config.
func (g *RESTConfigClientGetter) ToRESTConfig() (*rest.Config, error) {
	return g.restConfig, nil
}

// ToDiscoveryClient returns a cached discovery client.
func (g *RESTConfigClientGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	restConfig, err := g.ToRESTConfig()
	if err != nil {
		return nil, err
	}

	dc, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, err
	}

	return memory.NewMemCacheClient(dc), nil
}

// ToRESTMapper returns a REST mapper for the cluster.
func (g *RESTConfigClientGetter) ToRESTMapper() (meta.RESTMapper, error) {
	dc, err := g.ToDiscoveryClient()
	if err != nil {
		return nil, err
	}

	return restmapper.NewDeferredDiscoveryRESTMapper(dc), nil
}

// ToRawKubeConfigLoader returns a clientcmd.ClientConfig synthesized
// from the REST config. Helm only consults it for the namespace, but a
// complete single-context config keeps every code path satisfied.
func (g *RESTConfigClientGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	cfg := clientcmdapi.NewConfig()
	cfg.Clusters["cluster"] = &clientcmdapi.Cluster{
		Server:                   g.restConfig.Host,
		CertificateAuthorityData: g.restConfig.CAData,
	}
	cfg.AuthInfos["user"] = &clientcmdapi.AuthInfo{}
	cfg.Contexts["context"] = &clientcmdapi.Context{
		Cluster:   "cluster",
		AuthInfo:  "user",
		Namespace: g.namespace,
	}
	cfg.CurrentContext = "context"

	return clientcmd.NewDefaultClientConfig(*cfg, &clientcmd.ConfigOverrides{})
}
