package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
	"github.com/ibraheemcisse/ekstack/internal/provisioning"
	ektest "github.com/ibraheemcisse/ekstack/internal/testing"
)

// mockDestroyer records whether teardown ran.
type mockDestroyer struct {
	called bool
	err    error
}

func (m *mockDestroyer) Destroy(_ *provisioning.Context) error {
	m.called = true
	return m.err
}

func stubDestroyCollaborators(t *testing.T) (*mockDestroyer, *[]string) {
	t.Helper()

	newCloudClient = func(context.Context, *config.Config) (cloudClient, error) {
		return newFakeCloudClient(), nil
	}
	newProvisioningContext = func(ctx context.Context, cfg *config.Config, cloud aws.CloudManager, observer provisioning.Observer) *provisioning.Context {
		return provisioning.NewContext(ctx, cfg, cloud, observer)
	}

	md := &mockDestroyer{}
	newDestroyer = func() destroyer { return md }

	var removed []string
	removeFile = func(path string) error {
		removed = append(removed, path)
		return nil
	}
	return md, &removed
}

func TestDestroy_WithInjection(t *testing.T) {
	t.Run("destroys and removes kubeconfig", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithName("demo").Build())
		md, removed := stubDestroyCollaborators(t)

		err := Destroy(context.Background(), "ekstack.yaml", false)
		require.NoError(t, err)
		assert.True(t, md.called)
		require.Len(t, *removed, 1)
		assert.Contains(t, (*removed)[0], "ekstack-demo")
	})

	t.Run("delete protection blocks without force", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithName("prod").WithDeleteProtection(true).Build())
		md, _ := stubDestroyCollaborators(t)

		err := Destroy(context.Background(), "ekstack.yaml", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "delete protection is enabled for prod")
		assert.Contains(t, err.Error(), "--force")
		assert.False(t, md.called)
	})

	t.Run("force overrides delete protection", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().WithDeleteProtection(true).Build())
		md, _ := stubDestroyCollaborators(t)

		require.NoError(t, Destroy(context.Background(), "ekstack.yaml", true))
		assert.True(t, md.called)
	})

	t.Run("destroy error", func(t *testing.T) {
		saveAndRestoreFactories(t)

		stubConfig(ektest.NewConfigBuilder().Build())
		md, removed := stubDestroyCollaborators(t)
		md.err = errors.New("cluster deletion timed out")

		err := Destroy(context.Background(), "ekstack.yaml", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "destroy failed")
		assert.Empty(t, *removed, "kubeconfig must stay while resources remain")
	})

	t.Run("config load error", func(t *testing.T) {
		saveAndRestoreFactories(t)

		loadConfigFile = func(string) (*config.Config, error) {
			return nil, errors.New("file not found")
		}

		err := Destroy(context.Background(), "missing.yaml", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})
}
