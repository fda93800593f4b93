package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	cmd := Init()

	require.NotNil(t, cmd)
	assert.Equal(t, "init", cmd.Use)
	assert.Equal(t, "Interactively create a platform configuration", cmd.Short)
	assert.Contains(t, cmd.Long, "wizard")
}

func TestInit_OutputFlag(t *testing.T) {
	cmd := Init()

	flag := cmd.Flags().Lookup("output")
	require.NotNil(t, flag, "output flag should exist")
	assert.Equal(t, "o", flag.Shorthand)
	assert.Equal(t, "ekstack.yaml", flag.DefValue)
}

func TestInit_RunE(t *testing.T) {
	cmd := Init()
	assert.NotNil(t, cmd.RunE, "Init command should have RunE function")
}
