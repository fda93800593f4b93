package kube

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
)

// Kubeconfig builds a kubeconfig for the cluster using the aws CLI
// exec-auth flow, matching what `aws eks update-kubeconfig` writes. The
// context is named after the cluster ARN so entries from multiple
// accounts and regions never collide.
func Kubeconfig(cluster *aws.Cluster, region string) *clientcmdapi.Config {
	name := cluster.ARN
	if name == "" {
		name = cluster.Name
	}

	return &clientcmdapi.Config{
		Clusters: map[string]*clientcmdapi.Cluster{
			name: {
				Server:                   cluster.Endpoint,
				CertificateAuthorityData: cluster.CertificateAuthority,
			},
		},
		AuthInfos: map[string]*clientcmdapi.AuthInfo{
			name: {
				Exec: &clientcmdapi.ExecConfig{
					APIVersion: "client.authentication.k8s.io/v1beta1",
					Command:    "aws",
					Args: []string{
						"eks", "get-token",
						"--cluster-name", cluster.Name,
						"--region", region,
						"--output", "json",
					},
					InstallHint:     "Install the AWS CLI: https://docs.aws.amazon.com/cli/latest/userguide/getting-started-install.html",
					InteractiveMode: clientcmdapi.IfAvailableExecInteractiveMode,
				},
			},
		},
		Contexts: map[string]*clientcmdapi.Context{
			name: {Cluster: name, AuthInfo: name},
		},
		CurrentContext: name,
	}
}

// WriteKubeconfig writes the config to path, creating parent directories
// as needed.
func WriteKubeconfig(cfg *clientcmdapi.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating kubeconfig directory: %w", err)
	}
	if err := clientcmd.WriteToFile(*cfg, path); err != nil {
		return fmt.Errorf("writing kubeconfig %s: %w", path, err)
	}
	return nil
}

// DefaultKubeconfigPath returns a per-cluster kubeconfig path under
// ~/.kube that leaves the user's default config untouched.
func DefaultKubeconfigPath(clusterName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return clusterName + ".kubeconfig"
	}
	return filepath.Join(home, ".kube", "ekstack-"+clusterName+".yaml")
}
