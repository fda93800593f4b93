package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctor(t *testing.T) {
	cmd := Doctor()

	require.NotNil(t, cmd)
	assert.Equal(t, "doctor", cmd.Use)
	assert.Equal(t, "Diagnose the environment and platform state", cmd.Short)
	assert.Contains(t, cmd.Long, "AWS credentials")
}

func TestDoctor_Flags(t *testing.T) {
	cmd := Doctor()

	config := cmd.Flags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "c", config.Shorthand)

	jsonFlag := cmd.Flags().Lookup("json")
	require.NotNil(t, jsonFlag)
	assert.Equal(t, "false", jsonFlag.DefValue)
}

func TestDoctor_RunE(t *testing.T) {
	cmd := Doctor()
	assert.NotNil(t, cmd.RunE, "Doctor command should have RunE function")
}
