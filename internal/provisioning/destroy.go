package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ibraheemcisse/ekstack/internal/util/async"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

// ErrDeleteProtected is returned when destroy is invoked on a platform
// whose config has delete protection enabled.
var ErrDeleteProtected = errors.New("delete protection is enabled for this platform")

// Destroyer tears down everything apply provisioned, in reverse dependency
// order. Every step is a no-op when its resource is already gone, so an
// interrupted destroy can simply be re-run.
type Destroyer struct{}

// NewDestroyer creates a destroyer.
func NewDestroyer() *Destroyer {
	return &Destroyer{}
}

// destroyStep is one teardown step, named for progress reporting.
type destroyStep struct {
	name string
	run  func(ctx *Context) error
}

// Destroy removes the platform's cloud resources. The KMS key goes last
// so encrypted resources can still be read while they drain; the key is
// only scheduled for deletion, AWS enforces its own waiting period.
func (d *Destroyer) Destroy(ctx *Context) error {
	if ctx.Config.DeleteProtection {
		return ErrDeleteProtected
	}

	steps := []destroyStep{
		{"database", d.destroyDatabase},
		{"nodegroups", d.destroyNodeGroups},
		{"cluster", d.destroyCluster},
		{"iam", d.destroyIAM},
		{"registry", d.destroyRegistries},
		{"logging", d.destroyLogging},
		{"network", d.destroyNetwork},
		{"encryption", d.destroyKey},
	}

	for _, step := range steps {
		start := time.Now()
		logPhaseStart(ctx.Observer, step.name)
		if err := step.run(ctx); err != nil {
			logPhaseFailed(ctx.Observer, step.name, err)
			return fmt.Errorf("destroy step %s: %w", step.name, err)
		}
		logPhaseComplete(ctx.Observer, step.name, time.Since(start))
	}

	return nil
}

func (d *Destroyer) destroyDatabase(ctx *Context) error {
	if !ctx.Config.HasDatabase() {
		return nil
	}
	identifier := naming.DBInstance(ctx.Config.Name)
	if err := ctx.Cloud.DeleteDatabase(ctx, ctx.Config.Name, identifier); err != nil {
		return err
	}
	logResourceDeleted(ctx.Observer, "database", identifier)
	return nil
}

// destroyNodeGroups removes whatever groups exist on the cluster, not just
// the configured ones, so pools removed from config since the last apply
// do not survive the teardown. Groups drain independently, in parallel.
func (d *Destroyer) destroyNodeGroups(ctx *Context) error {
	groups, err := ctx.Cloud.ListNodeGroups(ctx, ctx.Config.Name)
	if err != nil {
		return err
	}

	tasks := make([]async.Task, 0, len(groups))
	for _, group := range groups {
		tasks = append(tasks, async.Task{
			Name: group.Name,
			Func: func(taskCtx context.Context) error {
				if err := ctx.Cloud.DeleteNodeGroup(taskCtx, ctx.Config.Name, group.Name); err != nil {
					return err
				}
				logResourceDeleted(ctx.Observer, "nodegroup", group.Name)
				return nil
			},
		})
	}
	return async.RunParallel(ctx, tasks)
}

func (d *Destroyer) destroyCluster(ctx *Context) error {
	// Capture the OIDC issuer before the control plane disappears; the
	// provider is keyed by issuer URL, not by cluster name.
	cluster, err := ctx.Cloud.GetCluster(ctx, ctx.Config.Name)
	if err != nil {
		return err
	}

	if err := ctx.Cloud.DeleteCluster(ctx, ctx.Config.Name); err != nil {
		return err
	}
	logResourceDeleted(ctx.Observer, "cluster", ctx.Config.Name)

	if cluster != nil && cluster.OIDCIssuer != "" {
		if err := ctx.Cloud.DeleteOIDCProvider(ctx, cluster.OIDCIssuer); err != nil {
			return err
		}
		logResourceDeleted(ctx.Observer, "cluster", "oidc provider")
	}
	return nil
}

func (d *Destroyer) destroyIAM(ctx *Context) error {
	roles := []string{
		naming.ClusterRole(ctx.Config.Name),
		naming.NodeRole(ctx.Config.Name),
	}
	for _, addon := range enabledIRSAAddons(ctx) {
		roles = append(roles, naming.AddonRole(ctx.Config.Name, addon.Name))
	}

	for _, role := range roles {
		if err := ctx.Cloud.DeleteRole(ctx, role); err != nil {
			return err
		}
		logResourceDeleted(ctx.Observer, "iam", role)
	}

	keyPair := naming.KeyPair(ctx.Config.Name)
	if err := ctx.Cloud.DeleteKeyPair(ctx, keyPair); err != nil {
		return err
	}
	logResourceDeleted(ctx.Observer, "iam", keyPair)
	return nil
}

func (d *Destroyer) destroyRegistries(ctx *Context) error {
	for _, registry := range ctx.Config.Registries {
		name := naming.Repository(ctx.Config.Name, registry.Name)
		if err := ctx.Cloud.DeleteRepository(ctx, name); err != nil {
			return err
		}
		logResourceDeleted(ctx.Observer, "registry", name)
	}
	return nil
}

func (d *Destroyer) destroyLogging(ctx *Context) error {
	name := naming.LogGroup(ctx.Config.Name)
	if err := ctx.Cloud.DeleteLogGroup(ctx, name); err != nil {
		return err
	}
	logResourceDeleted(ctx.Observer, "logging", name)
	return nil
}

func (d *Destroyer) destroyNetwork(ctx *Context) error {
	if err := ctx.Cloud.DeleteNetwork(ctx, ctx.Config.Name); err != nil {
		return err
	}
	logResourceDeleted(ctx.Observer, "network", naming.VPC(ctx.Config.Name))
	return nil
}

func (d *Destroyer) destroyKey(ctx *Context) error {
	alias := naming.KeyAlias(ctx.Config.Name)
	if err := ctx.Cloud.DeleteKey(ctx, alias); err != nil {
		return err
	}
	logResourceDeleted(ctx.Observer, "encryption", alias)
	return nil
}
