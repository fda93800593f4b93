package config

import "fmt"

// Config is the declarative platform configuration for ekstack.
type Config struct {
	// Name is the cluster name, used for resource naming and tagging.
	// Must be DNS-safe: lowercase alphanumeric and hyphens, must start with letter.
	Name string `yaml:"name"`

	// Region is the AWS region the platform is provisioned in.
	Region Region `yaml:"region"`

	// Version is the Kubernetes minor version for the cluster control plane,
	// e.g. "1.31". Defaults to the latest supported version.
	Version string `yaml:"version,omitempty"`

	// Network configures the VPC the cluster lives in.
	Network Network `yaml:"network,omitempty"`

	// NodeGroups defines the managed node groups. At least one is required.
	NodeGroups []NodeGroup `yaml:"nodeGroups"`

	// Registries defines container image repositories created alongside the
	// cluster. Repository names are namespaced under the cluster name.
	Registries []Registry `yaml:"registries,omitempty"`

	// Database provisions a managed PostgreSQL instance when set.
	Database *Database `yaml:"database,omitempty"`

	// Encryption configures the platform KMS key.
	Encryption Encryption `yaml:"encryption,omitempty"`

	// Logging configures control plane log shipping.
	Logging Logging `yaml:"logging,omitempty"`

	// Addons toggles the cluster add-ons installed after provisioning.
	Addons Addons `yaml:"addons,omitempty"`

	// GitOps configures the ArgoCD bootstrap when set.
	GitOps *GitOps `yaml:"gitops,omitempty"`

	// LoadTest sets defaults for the loadtest command.
	LoadTest *LoadTest `yaml:"loadtest,omitempty"`

	// Timeouts overrides the default wait timeouts for slow operations.
	Timeouts Timeouts `yaml:"timeouts,omitempty"`

	// DeleteProtection refuses destroy operations unless overridden on the
	// command line.
	DeleteProtection bool `yaml:"deleteProtection,omitempty"`

	// Prerequisites controls the client tool check that runs before apply.
	// Defaults to true.
	Prerequisites *bool `yaml:"prerequisites,omitempty"`
}

// PrerequisitesEnabled reports whether the client tool check runs before
// apply, defaulting to true.
func (c *Config) PrerequisitesEnabled() bool {
	return c.Prerequisites == nil || *c.Prerequisites
}

// LoadTest sets defaults for the loadtest command. Flags override these.
type LoadTest struct {
	// Scenario is the default scenario file path.
	Scenario string `yaml:"scenario,omitempty"`

	// ReportBucket is the S3 bucket load test reports are archived to.
	// Uploads are skipped when empty.
	ReportBucket string `yaml:"reportBucket,omitempty"`

	// MetricsAddr serves live Prometheus metrics during a run when set,
	// e.g. ":9095".
	MetricsAddr string `yaml:"metricsAddr,omitempty"`
}

// Network configures the VPC topology.
type Network struct {
	// CIDR is the VPC IPv4 range. Defaults to 10.0.0.0/16.
	CIDR string `yaml:"cidr,omitempty"`

	// AvailabilityZones is the number of AZs to spread subnets across (2 or 3).
	// Defaults to 3.
	AvailabilityZones int `yaml:"availabilityZones,omitempty"`

	// NAT selects the NAT gateway strategy for private subnet egress.
	NAT NATStrategy `yaml:"nat,omitempty"`
}

// NodeGroup defines a managed node group.
type NodeGroup struct {
	// Name identifies the group. Must be unique within the cluster.
	Name string `yaml:"name"`

	// InstanceType is the EC2 instance type, e.g. "t3.large".
	InstanceType string `yaml:"instanceType"`

	// Min is the minimum node count.
	Min int `yaml:"min"`

	// Desired is the initial node count. Defaults to Min.
	Desired int `yaml:"desired,omitempty"`

	// Max is the maximum node count.
	Max int `yaml:"max"`

	// CapacityType selects on-demand or spot capacity.
	CapacityType CapacityType `yaml:"capacityType,omitempty"`

	// DiskGB is the node root volume size. Defaults to 50.
	DiskGB int `yaml:"diskGB,omitempty"`

	// Labels are Kubernetes node labels applied to every node in the group.
	Labels map[string]string `yaml:"labels,omitempty"`

	// Taints are Kubernetes taints applied to every node in the group.
	Taints []Taint `yaml:"taints,omitempty"`
}

// Taint is a Kubernetes node taint.
type Taint struct {
	Key    string      `yaml:"key"`
	Value  string      `yaml:"value,omitempty"`
	Effect TaintEffect `yaml:"effect"`
}

// Registry defines a container image repository.
type Registry struct {
	// Name is the repository name, namespaced under the cluster name.
	Name string `yaml:"name"`

	// ScanOnPush enables vulnerability scanning on image push.
	// Defaults to true.
	ScanOnPush *bool `yaml:"scanOnPush,omitempty"`

	// KeepImages is the number of images the lifecycle policy retains.
	// Older images are expired. Defaults to 30.
	KeepImages int `yaml:"keepImages,omitempty"`
}

// ScanOnPushEnabled reports whether scan-on-push is enabled, defaulting to true.
func (r Registry) ScanOnPushEnabled() bool {
	return r.ScanOnPush == nil || *r.ScanOnPush
}

// Database provisions a managed PostgreSQL instance.
type Database struct {
	// EngineVersion is the PostgreSQL version. Defaults to "16.4".
	EngineVersion string `yaml:"engineVersion,omitempty"`

	// InstanceClass is the RDS instance class. Defaults to "db.t4g.medium".
	InstanceClass string `yaml:"instanceClass,omitempty"`

	// StorageGB is the allocated storage. Defaults to 20.
	StorageGB int `yaml:"storageGB,omitempty"`

	// MultiAZ enables a standby replica in a second availability zone.
	MultiAZ bool `yaml:"multiAZ,omitempty"`

	// BackupRetentionDays is how long automated backups are kept.
	// Defaults to 7.
	BackupRetentionDays int `yaml:"backupRetentionDays,omitempty"`

	// Name is the initial database name. Defaults to "app".
	Name string `yaml:"name,omitempty"`

	// Username is the master username. Defaults to "app".
	Username string `yaml:"username,omitempty"`
}

// Encryption configures the platform KMS key. The key always encrypts the
// database storage; Secrets additionally enables envelope encryption of
// Kubernetes Secrets.
type Encryption struct {
	// Secrets enables envelope encryption of Kubernetes Secrets with the
	// platform key. Defaults to true.
	Secrets *bool `yaml:"secrets,omitempty"`
}

// SecretsEnabled reports whether Secrets envelope encryption is enabled,
// defaulting to true.
func (e Encryption) SecretsEnabled() bool {
	return e.Secrets == nil || *e.Secrets
}

// Logging configures control plane log shipping to CloudWatch.
type Logging struct {
	// Types are the control plane log types to enable.
	// Defaults to api, audit, authenticator.
	Types []LogType `yaml:"types,omitempty"`

	// RetentionDays is the log group retention. Defaults to 30.
	RetentionDays int `yaml:"retentionDays,omitempty"`
}

// Addons toggles the cluster add-ons. Unset values take their defaults;
// the load balancer controller and metrics-server are on by default.
type Addons struct {
	// LoadBalancerController installs the AWS Load Balancer Controller with
	// an IRSA-scoped role. Defaults to true.
	LoadBalancerController *bool `yaml:"loadBalancerController,omitempty"`

	// ClusterAutoscaler installs the cluster autoscaler with auto-discovery
	// over the managed node groups. Defaults to true.
	ClusterAutoscaler *bool `yaml:"clusterAutoscaler,omitempty"`

	// MetricsServer installs metrics-server. Defaults to true.
	MetricsServer *bool `yaml:"metricsServer,omitempty"`

	// Monitoring installs the kube-prometheus-stack. Defaults to false.
	Monitoring *bool `yaml:"monitoring,omitempty"`

	// MonitoringRetention is the Prometheus TSDB retention when the
	// monitoring stack is enabled. Defaults to 15d.
	MonitoringRetention string `yaml:"monitoringRetention,omitempty"`

	// Charts overrides chart locations and versions by release name,
	// e.g. to pin cluster-autoscaler or pull from a mirror.
	Charts map[string]ChartOverride `yaml:"charts,omitempty"`
}

// ChartOverride redirects or pins a Helm chart. Unset fields keep the
// built-in defaults.
type ChartOverride struct {
	// Repository is the chart repository URL.
	Repository string `yaml:"repository,omitempty"`

	// Chart is the chart name within the repository.
	Chart string `yaml:"chart,omitempty"`

	// Version is the chart version to install.
	Version string `yaml:"version,omitempty"`

	// ValuesFile is a YAML file merged over the computed chart values,
	// later keys winning. Relative paths resolve against the working
	// directory.
	ValuesFile string `yaml:"valuesFile,omitempty"`
}

// LoadBalancerControllerEnabled reports whether the load balancer controller
// is enabled, defaulting to true.
func (a Addons) LoadBalancerControllerEnabled() bool {
	return a.LoadBalancerController == nil || *a.LoadBalancerController
}

// ClusterAutoscalerEnabled reports whether the cluster autoscaler is enabled,
// defaulting to true.
func (a Addons) ClusterAutoscalerEnabled() bool {
	return a.ClusterAutoscaler == nil || *a.ClusterAutoscaler
}

// MetricsServerEnabled reports whether metrics-server is enabled, defaulting
// to true.
func (a Addons) MetricsServerEnabled() bool {
	return a.MetricsServer == nil || *a.MetricsServer
}

// MonitoringEnabled reports whether the monitoring stack is enabled,
// defaulting to false.
func (a Addons) MonitoringEnabled() bool {
	return a.Monitoring != nil && *a.Monitoring
}

// GitOps configures the ArgoCD bootstrap.
type GitOps struct {
	// RepoURL is the Git repository ArgoCD syncs from.
	RepoURL string `yaml:"repoURL"`

	// Branch is the target revision. Defaults to "main".
	Branch string `yaml:"branch,omitempty"`

	// Path is the repository path holding the application definitions.
	// Defaults to "apps".
	Path string `yaml:"path,omitempty"`

	// HA runs the ArgoCD components in high-availability mode.
	HA bool `yaml:"ha,omitempty"`

	// Seed writes the generated Application manifests into the repository
	// and pushes them before ArgoCD starts syncing.
	Seed bool `yaml:"seed,omitempty"`

	// SSHKeyPath is the private key used for pushing when Seed is enabled
	// and the repository URL uses SSH.
	SSHKeyPath string `yaml:"sshKeyPath,omitempty"`

	// Apps are the applications ArgoCD manages.
	Apps []Application `yaml:"apps,omitempty"`
}

// Application is one ArgoCD-managed application.
type Application struct {
	// Name is the Application name.
	Name string `yaml:"name"`

	// Path is the repository path of the application manifests.
	// Defaults to "{gitops.path}/{name}".
	Path string `yaml:"path,omitempty"`

	// Namespace is the destination namespace. Defaults to the app name.
	Namespace string `yaml:"namespace,omitempty"`

	// RepoURL overrides the repository for this application.
	RepoURL string `yaml:"repoURL,omitempty"`

	// AutoSync enables automated sync with pruning and self-healing.
	// Defaults to true.
	AutoSync *bool `yaml:"autoSync,omitempty"`
}

// AutoSyncEnabled reports whether automated sync is enabled, defaulting to true.
func (a Application) AutoSyncEnabled() bool {
	return a.AutoSync == nil || *a.AutoSync
}

// EffectivePath returns the repository path for the application, falling back
// to "{base}/{name}".
func (a Application) EffectivePath(base string) string {
	if a.Path != "" {
		return a.Path
	}
	return fmt.Sprintf("%s/%s", base, a.Name)
}

// EffectiveNamespace returns the destination namespace, falling back to the
// application name.
func (a Application) EffectiveNamespace() string {
	if a.Namespace != "" {
		return a.Namespace
	}
	return a.Name
}

// HasDatabase returns true if a database is configured.
func (c *Config) HasDatabase() bool {
	return c.Database != nil
}

// HasGitOps returns true if a GitOps bootstrap is configured.
func (c *Config) HasGitOps() bool {
	return c.GitOps != nil && c.GitOps.RepoURL != ""
}

// NodeGroup returns the node group with the given name, or nil.
func (c *Config) NodeGroup(name string) *NodeGroup {
	for i := range c.NodeGroups {
		if c.NodeGroups[i].Name == name {
			return &c.NodeGroups[i]
		}
	}
	return nil
}

// TotalMinNodes returns the summed minimum node count across all groups.
func (c *Config) TotalMinNodes() int {
	total := 0
	for _, ng := range c.NodeGroups {
		total += ng.Min
	}
	return total
}

// TotalMaxNodes returns the summed maximum node count across all groups.
func (c *Config) TotalMaxNodes() int {
	total := 0
	for _, ng := range c.NodeGroups {
		total += ng.Max
	}
	return total
}
