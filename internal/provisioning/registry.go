package provisioning

import (
	"fmt"

	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

// RegistryPhase provisions the configured ECR repositories, namespaced
// under the cluster name, with scan-on-push and a lifecycle policy
// keeping the most recent images.
type RegistryPhase struct{}

// NewRegistryPhase creates the registry phase.
func NewRegistryPhase() *RegistryPhase {
	return &RegistryPhase{}
}

// Name implements Phase.
func (p *RegistryPhase) Name() string { return "registry" }

// Provision implements Phase.
func (p *RegistryPhase) Provision(ctx *Context) error {
	if len(ctx.Config.Registries) == 0 {
		return nil
	}

	kmsKeyARN := ""
	if ctx.State.Key != nil {
		kmsKeyARN = ctx.State.Key.ARN
	}

	ctx.State.Repositories = ctx.State.Repositories[:0]
	for i, registry := range ctx.Config.Registries {
		repo, err := ctx.Cloud.EnsureRepository(ctx, aws.RepositorySpec{
			Cluster:    ctx.Config.Name,
			Name:       naming.Repository(ctx.Config.Name, registry.Name),
			ScanOnPush: registry.ScanOnPushEnabled(),
			KeepImages: registry.KeepImages,
			KMSKeyARN:  kmsKeyARN,
		})
		if err != nil {
			return fmt.Errorf("failed to ensure repository %s: %w", registry.Name, err)
		}

		ctx.State.Repositories = append(ctx.State.Repositories, *repo)
		ctx.Observer.Progress(p.Name(), i+1, len(ctx.Config.Registries))
		logResourceReady(ctx.Observer, p.Name(), repo.Name, repo.URI)
	}

	return nil
}
