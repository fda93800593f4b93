package testing

import (
	"maps"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with sensible defaults: one
// on-demand worker pool in eu-central-1 and no optional components.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			Name:   "test",
			Region: config.RegionEUCentral1,
			NodeGroups: []config.NodeGroup{
				{Name: "workers", InstanceType: "t3.large", Min: 2, Max: 4},
			},
		},
	}
}

// WithName sets the cluster name.
func (b *ConfigBuilder) WithName(name string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Name = name
	return newBuilder
}

// WithRegion sets the AWS region.
func (b *ConfigBuilder) WithRegion(region config.Region) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Region = region
	return newBuilder
}

// WithVersion sets the Kubernetes version.
func (b *ConfigBuilder) WithVersion(version string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Version = version
	return newBuilder
}

// WithNodeGroup replaces the node groups with a single pool.
func (b *ConfigBuilder) WithNodeGroup(name, instanceType string, min, max int) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.NodeGroups = []config.NodeGroup{
		{Name: name, InstanceType: instanceType, Min: min, Max: max},
	}
	return newBuilder
}

// AddNodeGroup appends a node group.
func (b *ConfigBuilder) AddNodeGroup(group config.NodeGroup) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.NodeGroups = append(newBuilder.cfg.NodeGroups, group)
	return newBuilder
}

// WithRegistries sets the image repositories.
func (b *ConfigBuilder) WithRegistries(names ...string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Registries = nil
	for _, name := range names {
		newBuilder.cfg.Registries = append(newBuilder.cfg.Registries, config.Registry{Name: name})
	}
	return newBuilder
}

// WithDatabase enables the managed database with defaults.
func (b *ConfigBuilder) WithDatabase() *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Database = &config.Database{}
	return newBuilder
}

// WithGitOps enables the GitOps bootstrap against the given repository.
func (b *ConfigBuilder) WithGitOps(repoURL string, apps ...string) *ConfigBuilder {
	newBuilder := b.clone()
	gitops := &config.GitOps{RepoURL: repoURL}
	for _, app := range apps {
		gitops.Apps = append(gitops.Apps, config.Application{Name: app})
	}
	newBuilder.cfg.GitOps = gitops
	return newBuilder
}

// WithDeleteProtection toggles destroy protection.
func (b *ConfigBuilder) WithDeleteProtection(enabled bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.DeleteProtection = enabled
	return newBuilder
}

// Build applies defaults and returns the constructed config. Test timeouts
// replace the production ones so waits fail fast.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.cfg // copy
	cfg.ApplyDefaults()
	cfg.Timeouts = config.TestTimeouts()
	return &cfg
}

// clone creates a deep copy of the builder for immutability.
func (b *ConfigBuilder) clone() *ConfigBuilder {
	newCfg := b.cfg
	if len(b.cfg.NodeGroups) > 0 {
		newCfg.NodeGroups = make([]config.NodeGroup, len(b.cfg.NodeGroups))
		for i, group := range b.cfg.NodeGroups {
			newCfg.NodeGroups[i] = cloneNodeGroup(group)
		}
	}
	if len(b.cfg.Registries) > 0 {
		newCfg.Registries = make([]config.Registry, len(b.cfg.Registries))
		copy(newCfg.Registries, b.cfg.Registries)
	}
	if b.cfg.Database != nil {
		db := *b.cfg.Database
		newCfg.Database = &db
	}
	if b.cfg.GitOps != nil {
		gitops := *b.cfg.GitOps
		gitops.Apps = append([]config.Application(nil), b.cfg.GitOps.Apps...)
		newCfg.GitOps = &gitops
	}
	return &ConfigBuilder{cfg: newCfg}
}

// cloneNodeGroup creates a deep copy of a NodeGroup.
func cloneNodeGroup(group config.NodeGroup) config.NodeGroup {
	cloned := group
	cloned.Labels = maps.Clone(group.Labels)
	cloned.Taints = append([]config.Taint(nil), group.Taints...)
	return cloned
}
