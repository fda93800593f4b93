package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied by ApplyDefaults when fields are unset.
const (
	DefaultCIDR                = "10.0.0.0/16"
	DefaultAvailabilityZones   = 3
	DefaultNodeDiskGB          = 50
	DefaultRegistryKeepImages  = 30
	DefaultDBEngineVersion     = "16.4"
	DefaultDBInstanceClass     = "db.t4g.medium"
	DefaultDBStorageGB         = 20
	DefaultDBBackupRetention   = 7
	DefaultDBName              = "app"
	DefaultDBUsername          = "app"
	DefaultLogRetentionDays    = 30
	DefaultGitOpsBranch        = "main"
	DefaultGitOpsPath          = "apps"
	DefaultMonitoringRetention = "15d"
)

// Timeouts bounds the waits on slow cloud operations.
type Timeouts struct {
	// ClusterCreate bounds the wait for the control plane to become active.
	ClusterCreate time.Duration `yaml:"clusterCreate,omitempty"`

	// NodeGroupCreate bounds the wait for a node group to become active.
	NodeGroupCreate time.Duration `yaml:"nodeGroupCreate,omitempty"`

	// DatabaseCreate bounds the wait for the database to become available.
	DatabaseCreate time.Duration `yaml:"databaseCreate,omitempty"`

	// AddonInstall bounds each add-on install including its readiness wait.
	AddonInstall time.Duration `yaml:"addonInstall,omitempty"`

	// Destroy bounds the teardown of each resource family.
	Destroy time.Duration `yaml:"destroy,omitempty"`

	// RetryMaxAttempts is the number of attempts for retryable API calls.
	RetryMaxAttempts int `yaml:"retryMaxAttempts,omitempty"`

	// RetryInitialDelay is the first backoff delay between attempts.
	RetryInitialDelay time.Duration `yaml:"retryInitialDelay,omitempty"`
}

// DefaultTimeouts returns the standard operation timeouts. Control plane and
// database creation routinely take over ten minutes.
//
// The retry knobs can also be overridden without touching the config file:
//   - EKSTACK_RETRY_MAX_ATTEMPTS (default: 5)
//   - EKSTACK_RETRY_INITIAL_DELAY (default: 1s)
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ClusterCreate:     25 * time.Minute,
		NodeGroupCreate:   20 * time.Minute,
		DatabaseCreate:    30 * time.Minute,
		AddonInstall:      10 * time.Minute,
		Destroy:           30 * time.Minute,
		RetryMaxAttempts:  parseInt("EKSTACK_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("EKSTACK_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// timeoutsYAML is the on-disk form of Timeouts. Durations are strings like
// "25m" so the config file stays readable.
type timeoutsYAML struct {
	ClusterCreate     string `yaml:"clusterCreate,omitempty"`
	NodeGroupCreate   string `yaml:"nodeGroupCreate,omitempty"`
	DatabaseCreate    string `yaml:"databaseCreate,omitempty"`
	AddonInstall      string `yaml:"addonInstall,omitempty"`
	Destroy           string `yaml:"destroy,omitempty"`
	RetryMaxAttempts  int    `yaml:"retryMaxAttempts,omitempty"`
	RetryInitialDelay string `yaml:"retryInitialDelay,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Timeouts) UnmarshalYAML(value *yaml.Node) error {
	var raw timeoutsYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}

	t.RetryMaxAttempts = raw.RetryMaxAttempts

	fields := []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"clusterCreate", raw.ClusterCreate, &t.ClusterCreate},
		{"nodeGroupCreate", raw.NodeGroupCreate, &t.NodeGroupCreate},
		{"databaseCreate", raw.DatabaseCreate, &t.DatabaseCreate},
		{"addonInstall", raw.AddonInstall, &t.AddonInstall},
		{"destroy", raw.Destroy, &t.Destroy},
		{"retryInitialDelay", raw.RetryInitialDelay, &t.RetryInitialDelay},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		d, err := time.ParseDuration(f.src)
		if err != nil {
			return fmt.Errorf("timeouts.%s: %w", f.name, err)
		}
		*f.dst = d
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t Timeouts) MarshalYAML() (any, error) {
	raw := timeoutsYAML{RetryMaxAttempts: t.RetryMaxAttempts}
	if t.ClusterCreate != 0 {
		raw.ClusterCreate = t.ClusterCreate.String()
	}
	if t.NodeGroupCreate != 0 {
		raw.NodeGroupCreate = t.NodeGroupCreate.String()
	}
	if t.DatabaseCreate != 0 {
		raw.DatabaseCreate = t.DatabaseCreate.String()
	}
	if t.AddonInstall != 0 {
		raw.AddonInstall = t.AddonInstall.String()
	}
	if t.Destroy != 0 {
		raw.Destroy = t.Destroy.String()
	}
	if t.RetryInitialDelay != 0 {
		raw.RetryInitialDelay = t.RetryInitialDelay.String()
	}
	return raw, nil
}

// TestTimeouts returns short values suitable for tests.
func TestTimeouts() Timeouts {
	return Timeouts{
		ClusterCreate:     5 * time.Second,
		NodeGroupCreate:   5 * time.Second,
		DatabaseCreate:    5 * time.Second,
		AddonInstall:      5 * time.Second,
		Destroy:           5 * time.Second,
		RetryMaxAttempts:  2,
		RetryInitialDelay: 10 * time.Millisecond,
	}
}

// parseDuration parses a duration from an environment variable, falling
// back to the default when unset or invalid.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

// parseInt parses an integer from an environment variable, falling back to
// the default when unset or invalid.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// ApplyDefaults fills unset fields with their default values. It is called
// by Load before validation so that validation sees the effective config.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = DefaultVersion()
	}

	if c.Network.CIDR == "" {
		c.Network.CIDR = DefaultCIDR
	}
	if c.Network.AvailabilityZones == 0 {
		c.Network.AvailabilityZones = DefaultAvailabilityZones
	}
	if c.Network.NAT == "" {
		c.Network.NAT = NATSingle
	}

	for i := range c.NodeGroups {
		ng := &c.NodeGroups[i]
		if ng.Desired == 0 {
			ng.Desired = ng.Min
		}
		if ng.CapacityType == "" {
			ng.CapacityType = CapacityOnDemand
		}
		if ng.DiskGB == 0 {
			ng.DiskGB = DefaultNodeDiskGB
		}
	}

	for i := range c.Registries {
		if c.Registries[i].KeepImages == 0 {
			c.Registries[i].KeepImages = DefaultRegistryKeepImages
		}
	}

	if c.Database != nil {
		db := c.Database
		if db.EngineVersion == "" {
			db.EngineVersion = DefaultDBEngineVersion
		}
		if db.InstanceClass == "" {
			db.InstanceClass = DefaultDBInstanceClass
		}
		if db.StorageGB == 0 {
			db.StorageGB = DefaultDBStorageGB
		}
		if db.BackupRetentionDays == 0 {
			db.BackupRetentionDays = DefaultDBBackupRetention
		}
		if db.Name == "" {
			db.Name = DefaultDBName
		}
		if db.Username == "" {
			db.Username = DefaultDBUsername
		}
	}

	if c.Addons.MonitoringRetention == "" {
		c.Addons.MonitoringRetention = DefaultMonitoringRetention
	}

	if len(c.Logging.Types) == 0 {
		c.Logging.Types = []LogType{LogAPI, LogAudit, LogAuthenticator}
	}
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = DefaultLogRetentionDays
	}

	if c.GitOps != nil {
		if c.GitOps.Branch == "" {
			c.GitOps.Branch = DefaultGitOpsBranch
		}
		if c.GitOps.Path == "" {
			c.GitOps.Path = DefaultGitOpsPath
		}
	}

	defaults := DefaultTimeouts()
	if c.Timeouts.ClusterCreate == 0 {
		c.Timeouts.ClusterCreate = defaults.ClusterCreate
	}
	if c.Timeouts.NodeGroupCreate == 0 {
		c.Timeouts.NodeGroupCreate = defaults.NodeGroupCreate
	}
	if c.Timeouts.DatabaseCreate == 0 {
		c.Timeouts.DatabaseCreate = defaults.DatabaseCreate
	}
	if c.Timeouts.AddonInstall == 0 {
		c.Timeouts.AddonInstall = defaults.AddonInstall
	}
	if c.Timeouts.Destroy == 0 {
		c.Timeouts.Destroy = defaults.Destroy
	}
	if c.Timeouts.RetryMaxAttempts == 0 {
		c.Timeouts.RetryMaxAttempts = defaults.RetryMaxAttempts
	}
	if c.Timeouts.RetryInitialDelay == 0 {
		c.Timeouts.RetryInitialDelay = defaults.RetryInitialDelay
	}
}
