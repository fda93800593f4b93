package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCostCommand(t *testing.T) {
	cmd := Cost()

	if cmd.Use != "cost" {
		t.Errorf("Use = %q, want %q", cmd.Use, "cost")
	}

	if cmd.Short == "" {
		t.Error("Short description is empty")
	}
}

func writeCostConfig(t *testing.T, name string) string {
	t.Helper()
	content := `
name: ` + name + `
region: eu-central-1
nodeGroups:
  - name: workers
    instanceType: t3.large
    min: 2
    max: 4
database:
  instanceClass: db.t4g.medium
`
	configPath := filepath.Join(t.TempDir(), "ekstack.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func TestCostCommand_WithConfig(t *testing.T) {
	configPath := writeCostConfig(t, "test-cluster")

	cmd := Cost()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"-c", configPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func TestCostCommand_JSONOutput(t *testing.T) {
	configPath := writeCostConfig(t, "test-json")

	cmd := Cost()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"-c", configPath, "--json"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func TestCostCommand_CompactOutput(t *testing.T) {
	configPath := writeCostConfig(t, "test-compact")

	cmd := Cost()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"-c", configPath, "--compact"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func TestCostCommand_NoConfig(t *testing.T) {
	// Use a directory with no config file anywhere up the tree.
	tmpDir := t.TempDir()
	oldDir, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldDir)

	cmd := Cost()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() expected error when no config file exists")
	}
}

func TestCostCommand_PricesFlag(t *testing.T) {
	cmd := Cost()

	flag := cmd.Flags().Lookup("prices")
	if flag == nil {
		t.Fatal("prices flag should exist")
	}
	if flag.DefValue != "" {
		t.Errorf("prices DefValue = %q, want empty", flag.DefValue)
	}
}
