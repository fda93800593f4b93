package testing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// WriteConfigFile marshals the config into a temporary ekstack.yaml and
// returns its path. The file is removed when the test finishes.
func WriteConfigFile(t *testing.T, cfg *config.Config) string {
	t.Helper()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshaling config: %v", err)
	}

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}
