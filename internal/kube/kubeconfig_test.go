package kube

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
)

func testCluster() *aws.Cluster {
	return &aws.Cluster{
		Name:                 "demo",
		ARN:                  "arn:aws:eks:us-east-1:123456789012:cluster/demo",
		Endpoint:             "https://ABCDEF.gr7.us-east-1.eks.amazonaws.com",
		CertificateAuthority: []byte("fake-ca-data"),
	}
}

func TestKubeconfig_ContextNamedByARN(t *testing.T) {
	t.Parallel()

	cluster := testCluster()

	cfg := Kubeconfig(cluster, "us-east-1")

	require.Equal(t, cluster.ARN, cfg.CurrentContext)

	entry, ok := cfg.Clusters[cluster.ARN]
	require.True(t, ok)
	assert.Equal(t, cluster.Endpoint, entry.Server)
	assert.Equal(t, []byte("fake-ca-data"), entry.CertificateAuthorityData)

	ctx, ok := cfg.Contexts[cluster.ARN]
	require.True(t, ok)
	assert.Equal(t, cluster.ARN, ctx.Cluster)
	assert.Equal(t, cluster.ARN, ctx.AuthInfo)
}

func TestKubeconfig_ExecAuth(t *testing.T) {
	t.Parallel()

	cluster := testCluster()

	cfg := Kubeconfig(cluster, "eu-west-1")

	auth, ok := cfg.AuthInfos[cluster.ARN]
	require.True(t, ok)
	require.NotNil(t, auth.Exec)

	assert.Equal(t, "client.authentication.k8s.io/v1beta1", auth.Exec.APIVersion)
	assert.Equal(t, "aws", auth.Exec.Command)
	assert.Equal(t, []string{
		"eks", "get-token",
		"--cluster-name", "demo",
		"--region", "eu-west-1",
		"--output", "json",
	}, auth.Exec.Args)
}

func TestKubeconfig_FallsBackToClusterName(t *testing.T) {
	t.Parallel()

	cluster := testCluster()
	cluster.ARN = ""

	cfg := Kubeconfig(cluster, "us-east-1")

	assert.Equal(t, "demo", cfg.CurrentContext)
	_, ok := cfg.Clusters["demo"]
	assert.True(t, ok)
}

func TestWriteKubeconfig_RoundTrip(t *testing.T) {
	t.Parallel()

	cluster := testCluster()
	cfg := Kubeconfig(cluster, "us-east-1")

	// Parent directories are created on demand.
	path := filepath.Join(t.TempDir(), ".kube", "ekstack-demo.yaml")
	require.NoError(t, WriteKubeconfig(cfg, path))

	loaded, err := clientcmd.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cluster.ARN, loaded.CurrentContext)
	assert.Equal(t, cluster.Endpoint, loaded.Clusters[cluster.ARN].Server)
}

func TestDefaultKubeconfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := DefaultKubeconfigPath("demo")
	assert.Equal(t, filepath.Join(home, ".kube", "ekstack-demo.yaml"), path)
}
