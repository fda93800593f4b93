package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

func TestInit_WithInjection(t *testing.T) {
	t.Run("wizard result is saved", func(t *testing.T) {
		saveAndRestoreFactories(t)

		fileExists = func(string) bool { return false }
		runWizard = func(context.Context) (*config.WizardResult, error) {
			return &config.WizardResult{
				Name:         "demo",
				Region:       config.RegionEUCentral1,
				NodeCount:    3,
				InstanceType: "t3.large",
				Database:     true,
			}, nil
		}

		var savedCfg *config.Config
		var savedPath string
		saveConfig = func(cfg *config.Config, path string) error {
			savedCfg = cfg
			savedPath = path
			return nil
		}

		err := Init(context.Background(), "ekstack.yaml")
		require.NoError(t, err)
		assert.Equal(t, "ekstack.yaml", savedPath)
		require.NotNil(t, savedCfg)
		assert.Equal(t, "demo", savedCfg.Name)
		assert.True(t, savedCfg.HasDatabase())
		require.Len(t, savedCfg.NodeGroups, 1)
		assert.Equal(t, 3, savedCfg.NodeGroups[0].Min)
	})

	t.Run("existing file still proceeds", func(t *testing.T) {
		saveAndRestoreFactories(t)

		fileExists = func(string) bool { return true }
		runWizard = func(context.Context) (*config.WizardResult, error) {
			return &config.WizardResult{Name: "demo", Region: config.RegionEUCentral1, NodeCount: 2, InstanceType: "t3.large"}, nil
		}
		saved := false
		saveConfig = func(*config.Config, string) error {
			saved = true
			return nil
		}

		require.NoError(t, Init(context.Background(), "ekstack.yaml"))
		assert.True(t, saved)
	})

	t.Run("wizard cancel", func(t *testing.T) {
		saveAndRestoreFactories(t)

		fileExists = func(string) bool { return false }
		runWizard = func(context.Context) (*config.WizardResult, error) {
			return nil, errors.New("user aborted")
		}
		saveConfig = func(*config.Config, string) error {
			t.Fatal("nothing must be saved after a cancel")
			return nil
		}

		err := Init(context.Background(), "ekstack.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wizard canceled")
	})

	t.Run("save error", func(t *testing.T) {
		saveAndRestoreFactories(t)

		fileExists = func(string) bool { return false }
		runWizard = func(context.Context) (*config.WizardResult, error) {
			return &config.WizardResult{Name: "demo", Region: config.RegionEUCentral1, NodeCount: 2, InstanceType: "t3.large"}, nil
		}
		saveConfig = func(*config.Config, string) error {
			return errors.New("disk full")
		}

		err := Init(context.Background(), "ekstack.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write config")
	})
}
