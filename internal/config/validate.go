package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// instanceTypeRegex matches EC2 instance type names like "t3.large" or
// "m7g.2xlarge".
var instanceTypeRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*\.[a-z0-9]+$`)

// repositoryNameRegex matches ECR repository name segments.
var repositoryNameRegex = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*$`)

// cloudwatchRetentionDays are the retention values the log service accepts.
var cloudwatchRetentionDays = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 14: true, 30: true, 60: true,
	90: true, 120: true, 150: true, 180: true, 365: true, 400: true,
	545: true, 731: true, 1096: true, 1827: true, 2192: true, 2557: true,
	2922: true, 3288: true, 3653: true,
}

// Validate validates the configuration and returns an error if invalid.
// All problems are collected and joined rather than returned one at a time.
func (c *Config) Validate() error {
	var errs []error

	// Name: required, DNS-safe
	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	} else if !isValidDNSName(c.Name) {
		errs = append(errs, errors.New("name must be DNS-safe (lowercase alphanumeric and hyphens, must start with letter)"))
	}

	// Region: must be valid
	if !c.Region.IsValid() {
		errs = append(errs, fmt.Errorf("region must be one of: %v", ValidRegions()))
	}

	// Version: must be supported
	if !IsSupportedVersion(c.Version) {
		errs = append(errs, fmt.Errorf("version must be one of: %v", SupportedVersions()))
	}

	errs = append(errs, c.validateNetwork()...)
	errs = append(errs, c.validateNodeGroups()...)
	errs = append(errs, c.validateRegistries()...)
	errs = append(errs, c.validateDatabase()...)
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateGitOps()...)

	return errors.Join(errs...)
}

func (c *Config) validateNetwork() []error {
	var errs []error

	if _, err := ParseVPCCIDR(c.Network.CIDR); err != nil {
		errs = append(errs, fmt.Errorf("network.cidr: %w", err))
	}
	if c.Network.AvailabilityZones < 2 || c.Network.AvailabilityZones > 3 {
		errs = append(errs, errors.New("network.availabilityZones must be 2 or 3"))
	}
	if !c.Network.NAT.IsValid() {
		errs = append(errs, fmt.Errorf("network.nat must be one of: %v", ValidNATStrategies()))
	}

	return errs
}

func (c *Config) validateNodeGroups() []error {
	var errs []error

	if len(c.NodeGroups) == 0 {
		errs = append(errs, errors.New("at least one node group is required"))
	}

	seen := map[string]bool{}
	for _, ng := range c.NodeGroups {
		prefix := fmt.Sprintf("nodeGroups[%s]", ng.Name)

		if ng.Name == "" {
			errs = append(errs, errors.New("nodeGroups: name is required"))
			continue
		}
		if !isValidDNSName(ng.Name) {
			errs = append(errs, fmt.Errorf("%s: name must be DNS-safe", prefix))
		}
		if seen[ng.Name] {
			errs = append(errs, fmt.Errorf("%s: duplicate node group name", prefix))
		}
		seen[ng.Name] = true

		if !instanceTypeRegex.MatchString(ng.InstanceType) {
			errs = append(errs, fmt.Errorf("%s: instanceType %q is not a valid EC2 instance type", prefix, ng.InstanceType))
		}
		if ng.Min < 0 {
			errs = append(errs, fmt.Errorf("%s: min must be >= 0", prefix))
		}
		if ng.Max < 1 {
			errs = append(errs, fmt.Errorf("%s: max must be >= 1", prefix))
		}
		if ng.Desired < ng.Min || ng.Desired > ng.Max {
			errs = append(errs, fmt.Errorf("%s: desired must be between min and max", prefix))
		}
		if !ng.CapacityType.IsValid() {
			errs = append(errs, fmt.Errorf("%s: capacityType must be one of: %v", prefix, ValidCapacityTypes()))
		}
		if ng.DiskGB < 20 {
			errs = append(errs, fmt.Errorf("%s: diskGB must be >= 20", prefix))
		}
		for _, taint := range ng.Taints {
			if taint.Key == "" {
				errs = append(errs, fmt.Errorf("%s: taint key is required", prefix))
			}
			if !taint.Effect.IsValid() {
				errs = append(errs, fmt.Errorf("%s: taint effect %q must be NoSchedule, PreferNoSchedule or NoExecute", prefix, taint.Effect))
			}
		}
	}

	return errs
}

func (c *Config) validateRegistries() []error {
	var errs []error

	seen := map[string]bool{}
	for _, reg := range c.Registries {
		if reg.Name == "" {
			errs = append(errs, errors.New("registries: name is required"))
			continue
		}
		if !repositoryNameRegex.MatchString(reg.Name) {
			errs = append(errs, fmt.Errorf("registries[%s]: name must be lowercase alphanumeric with ._- separators", reg.Name))
		}
		if seen[reg.Name] {
			errs = append(errs, fmt.Errorf("registries[%s]: duplicate registry name", reg.Name))
		}
		seen[reg.Name] = true

		if reg.KeepImages < 1 || reg.KeepImages > 1000 {
			errs = append(errs, fmt.Errorf("registries[%s]: keepImages must be 1-1000", reg.Name))
		}
	}

	return errs
}

func (c *Config) validateDatabase() []error {
	if c.Database == nil {
		return nil
	}

	var errs []error
	db := c.Database

	if !strings.HasPrefix(db.InstanceClass, "db.") {
		errs = append(errs, fmt.Errorf("database.instanceClass %q must start with \"db.\"", db.InstanceClass))
	}
	if db.StorageGB < 20 || db.StorageGB > 65536 {
		errs = append(errs, errors.New("database.storageGB must be 20-65536"))
	}
	if db.BackupRetentionDays < 1 || db.BackupRetentionDays > 35 {
		errs = append(errs, errors.New("database.backupRetentionDays must be 1-35"))
	}
	if !isValidDNSName(strings.ToLower(db.Name)) {
		errs = append(errs, errors.New("database.name must be a simple identifier"))
	}
	if db.Username == "" {
		errs = append(errs, errors.New("database.username is required"))
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error

	for _, lt := range c.Logging.Types {
		if !lt.IsValid() {
			errs = append(errs, fmt.Errorf("logging.types: %q must be one of: %v", lt, ValidLogTypes()))
		}
	}
	if !cloudwatchRetentionDays[c.Logging.RetentionDays] {
		errs = append(errs, fmt.Errorf("logging.retentionDays %d is not a valid CloudWatch retention period", c.Logging.RetentionDays))
	}

	return errs
}

func (c *Config) validateGitOps() []error {
	if c.GitOps == nil {
		return nil
	}

	var errs []error
	g := c.GitOps

	if g.RepoURL == "" {
		errs = append(errs, errors.New("gitops.repoURL is required when gitops is configured"))
	}
	if g.Seed && g.SSHKeyPath == "" && strings.HasPrefix(g.RepoURL, "git@") {
		errs = append(errs, errors.New("gitops.sshKeyPath is required for seeding over SSH"))
	}

	seen := map[string]bool{}
	for _, app := range g.Apps {
		if app.Name == "" {
			errs = append(errs, errors.New("gitops.apps: name is required"))
			continue
		}
		if !isValidDNSName(app.Name) {
			errs = append(errs, fmt.Errorf("gitops.apps[%s]: name must be DNS-safe", app.Name))
		}
		if seen[app.Name] {
			errs = append(errs, fmt.Errorf("gitops.apps[%s]: duplicate application name", app.Name))
		}
		seen[app.Name] = true
	}

	return errs
}

// isValidDNSName checks if a string is a valid DNS name.
// Must be lowercase, alphanumeric with hyphens, start with a letter, max 63 chars.
func isValidDNSName(name string) bool {
	if len(name) == 0 || len(name) > 63 {
		return false
	}
	// Must start with lowercase letter
	if name[0] < 'a' || name[0] > 'z' {
		return false
	}
	// Must end with lowercase letter or digit
	last := name[len(name)-1]
	if (last < 'a' || last > 'z') && (last < '0' || last > '9') {
		return false
	}
	// Must contain only lowercase letters, digits, and hyphens
	for _, c := range name {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	// Must not have consecutive hyphens
	if strings.Contains(name, "--") {
		return false
	}
	return true
}
