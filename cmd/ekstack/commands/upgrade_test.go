package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpgrade(t *testing.T) {
	cmd := Upgrade()

	require.NotNil(t, cmd)
	assert.Equal(t, "upgrade", cmd.Use)
	assert.Equal(t, "Upgrade the Kubernetes version of the cluster", cmd.Short)
	assert.Contains(t, cmd.Long, "control plane")
}

func TestUpgrade_Flags(t *testing.T) {
	cmd := Upgrade()

	config := cmd.Flags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "c", config.Shorthand)

	version := cmd.Flags().Lookup("version")
	require.NotNil(t, version)
	assert.Equal(t, "", version.DefValue)

	dryRun := cmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRun)
	assert.Equal(t, "false", dryRun.DefValue)

	skipAddons := cmd.Flags().Lookup("skip-addons")
	require.NotNil(t, skipAddons)
	assert.Equal(t, "false", skipAddons.DefValue)
}

func TestUpgrade_RunE(t *testing.T) {
	cmd := Upgrade()
	assert.NotNil(t, cmd.RunE, "Upgrade command should have RunE function")
}
