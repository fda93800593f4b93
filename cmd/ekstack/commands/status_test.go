package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cmd := Status()

	require.NotNil(t, cmd)
	assert.Equal(t, "status", cmd.Use)
	assert.Equal(t, "Show platform status", cmd.Short)
}

func TestStatus_Flags(t *testing.T) {
	cmd := Status()

	config := cmd.Flags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "c", config.Shorthand)

	jsonFlag := cmd.Flags().Lookup("json")
	require.NotNil(t, jsonFlag)
	assert.Equal(t, "false", jsonFlag.DefValue)

	watch := cmd.Flags().Lookup("watch")
	require.NotNil(t, watch)
	assert.Equal(t, "w", watch.Shorthand)
	assert.Equal(t, "false", watch.DefValue)
}

func TestStatus_RunE(t *testing.T) {
	cmd := Status()
	assert.NotNil(t, cmd.RunE, "Status command should have RunE function")
}
