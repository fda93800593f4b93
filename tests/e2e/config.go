//go:build e2e

package e2e

import (
	"os"
	"strings"
)

// E2EConfig controls which phases of the end to end suite run.
//
// The suite provisions real AWS resources and takes 30+ minutes; the
// knobs let a pipeline keep a platform alive after one run and rerun
// the verification phases against it later.
type E2EConfig struct {
	// ConfigPath is the platform configuration the suite applies.
	// The suite does not run without it.
	ConfigPath string

	// ReusePlatform skips the apply phase and verifies a platform
	// that already exists.
	ReusePlatform bool

	// SkipLoadTest skips the load test phase.
	SkipLoadTest bool

	// KeepPlatform leaves the platform standing after the suite for
	// manual inspection. Resources keep billing until destroyed.
	KeepPlatform bool
}

// LoadE2EConfig loads suite configuration from environment variables.
func LoadE2EConfig() *E2EConfig {
	return &E2EConfig{
		ConfigPath:    os.Getenv("EKSTACK_E2E_CONFIG"),
		ReusePlatform: getEnvBool("EKSTACK_E2E_REUSE_PLATFORM"),
		SkipLoadTest:  getEnvBool("EKSTACK_E2E_SKIP_LOADTEST"),
		KeepPlatform:  getEnvBool("EKSTACK_E2E_KEEP_PLATFORM"),
	}
}

// getEnvBool returns true if the environment variable is set to a truthy value.
func getEnvBool(key string) bool {
	val := strings.ToLower(os.Getenv(key))
	return val == "true" || val == "1" || val == "yes"
}
