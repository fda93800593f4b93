package gitops

import (
	"context"
	"fmt"

	"helm.sh/helm/v3/pkg/release"

	"github.com/ibraheemcisse/ekstack/internal/addons/helm"
	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/kube"
)

const (
	argocdNamespace = "argocd"

	// Naming the release "argocd" keeps the chart's component names short:
	// argocd-server instead of <release>-argocd-server.
	argocdRelease = "argocd"

	// fieldManager identifies the bootstrap in Server-Side Apply
	// managedFields.
	fieldManager = "ekstack-gitops"
)

// helmClient is the slice of the Helm client the bootstrap uses.
type helmClient interface {
	InstallOrUpgrade(ctx context.Context, releaseName string, spec helm.ChartSpec, values helm.Values) (*release.Release, error)
}

// Bootstrap installs ArgoCD and registers the configured applications
// with it.
type Bootstrap struct {
	kube kube.Client

	// Factories for the Helm and Git sides, substitutable in tests.
	newHelmClient  func(namespace string) (helmClient, error)
	seedRepository func(ctx context.Context, gitops *config.GitOps, files map[string][]byte) (string, error)
}

// NewBootstrap builds a Bootstrap backed by the Helm SDK and go-git.
func NewBootstrap(kubeClient kube.Client) *Bootstrap {
	return &Bootstrap{
		kube: kubeClient,
		newHelmClient: func(namespace string) (helmClient, error) {
			return helm.NewClient(kubeClient.RESTConfig(), namespace)
		},
		seedRepository: SeedRepository,
	}
}

// Run executes the GitOps bootstrap: install ArgoCD, wait for its server
// and repo-server, seed the repository when requested, and apply the
// Application manifests. It returns immediately when no repository is
// configured.
func (b *Bootstrap) Run(ctx context.Context, cfg *config.Config) error {
	if !cfg.HasGitOps() {
		return nil
	}
	gitops := cfg.GitOps

	if err := b.installArgoCD(ctx, cfg); err != nil {
		return fmt.Errorf("failed to install argocd: %w", err)
	}

	for _, name := range []string{"argocd-server", "argocd-repo-server"} {
		if err := b.kube.WaitForDeployment(ctx, argocdNamespace, name, cfg.Timeouts.AddonInstall); err != nil {
			return err
		}
	}

	if gitops.Seed {
		files, err := renderApplicationFiles(gitops)
		if err != nil {
			return err
		}
		if _, err := b.seedRepository(ctx, gitops, files); err != nil {
			return fmt.Errorf("failed to seed %s: %w", gitops.RepoURL, err)
		}
	}

	if len(gitops.Apps) == 0 {
		return nil
	}

	manifests, err := RenderApplications(gitops)
	if err != nil {
		return err
	}
	if err := b.kube.ApplyManifests(ctx, manifests, fieldManager); err != nil {
		return fmt.Errorf("failed to apply argocd applications: %w", err)
	}

	return nil
}

// installArgoCD installs or upgrades the argo-cd chart.
func (b *Bootstrap) installArgoCD(ctx context.Context, cfg *config.Config) error {
	client, err := b.newHelmClient(argocdNamespace)
	if err != nil {
		return err
	}

	override := cfg.Addons.Charts["argo-cd"]
	spec := helm.GetChartSpec("argo-cd", override)

	values, err := helm.ApplyOverrides(buildArgoCDValues(cfg.GitOps), override)
	if err != nil {
		return err
	}

	_, err = client.InstallOrUpgrade(ctx, argocdRelease, spec, values)
	return err
}
