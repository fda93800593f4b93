package gitops

import (
	"bytes"
	"fmt"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

const (
	applicationAPIVersion = "argoproj.io/v1alpha1"

	// resourcesFinalizer makes ArgoCD cascade-delete the application's
	// workloads when the Application itself is removed.
	resourcesFinalizer = "resources-finalizer.argocd.argoproj.io"

	// inClusterServer is ArgoCD's name for the cluster it runs in.
	inClusterServer = "https://kubernetes.default.svc"
)

// applicationManifest is the subset of the ArgoCD Application schema the
// bootstrap emits. Field order matters: the same bytes land in Git and in
// the API server, so the layout should read like a hand-written manifest.
type applicationManifest struct {
	APIVersion string              `yaml:"apiVersion"`
	Kind       string              `yaml:"kind"`
	Metadata   applicationMetadata `yaml:"metadata"`
	Spec       applicationSpec     `yaml:"spec"`
}

type applicationMetadata struct {
	Name       string   `yaml:"name"`
	Namespace  string   `yaml:"namespace"`
	Finalizers []string `yaml:"finalizers,omitempty"`
}

type applicationSpec struct {
	Project     string                 `yaml:"project"`
	Source      applicationSource      `yaml:"source"`
	Destination applicationDestination `yaml:"destination"`
	SyncPolicy  *applicationSyncPolicy `yaml:"syncPolicy,omitempty"`
}

type applicationSource struct {
	RepoURL        string `yaml:"repoURL"`
	TargetRevision string `yaml:"targetRevision"`
	Path           string `yaml:"path"`
}

type applicationDestination struct {
	Server    string `yaml:"server"`
	Namespace string `yaml:"namespace"`
}

type applicationSyncPolicy struct {
	Automated   *applicationAutomatedSync `yaml:"automated,omitempty"`
	SyncOptions []string                  `yaml:"syncOptions,omitempty"`
}

type applicationAutomatedSync struct {
	Prune    bool `yaml:"prune"`
	SelfHeal bool `yaml:"selfHeal"`
}

// newApplicationManifest builds the Application for one configured app,
// resolving per-app overrides against the repository-level settings.
func newApplicationManifest(app config.Application, gitops *config.GitOps) applicationManifest {
	repoURL := app.RepoURL
	if repoURL == "" {
		repoURL = gitops.RepoURL
	}

	manifest := applicationManifest{
		APIVersion: applicationAPIVersion,
		Kind:       "Application",
		Metadata: applicationMetadata{
			Name:       app.Name,
			Namespace:  argocdNamespace,
			Finalizers: []string{resourcesFinalizer},
		},
		Spec: applicationSpec{
			Project: "default",
			Source: applicationSource{
				RepoURL:        repoURL,
				TargetRevision: gitops.Branch,
				Path:           app.EffectivePath(gitops.Path),
			},
			Destination: applicationDestination{
				Server:    inClusterServer,
				Namespace: app.EffectiveNamespace(),
			},
			SyncPolicy: &applicationSyncPolicy{
				SyncOptions: []string{"CreateNamespace=true"},
			},
		},
	}

	if app.AutoSyncEnabled() {
		manifest.Spec.SyncPolicy.Automated = &applicationAutomatedSync{
			Prune:    true,
			SelfHeal: true,
		}
	}

	return manifest
}

// RenderApplication renders a single Application as YAML.
func RenderApplication(app config.Application, gitops *config.GitOps) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(newApplicationManifest(app, gitops)); err != nil {
		return nil, fmt.Errorf("failed to render application %s: %w", app.Name, err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to render application %s: %w", app.Name, err)
	}

	return buf.Bytes(), nil
}

// RenderApplications renders all configured Applications as one
// multi-document YAML stream.
func RenderApplications(gitops *config.GitOps) ([]byte, error) {
	var buf bytes.Buffer
	for i, app := range gitops.Apps {
		if i > 0 {
			buf.WriteString("---\n")
		}
		doc, err := RenderApplication(app, gitops)
		if err != nil {
			return nil, err
		}
		buf.Write(doc)
	}
	return buf.Bytes(), nil
}

// renderApplicationFiles renders one file per Application, keyed by its
// repository path under the bootstrap directory.
func renderApplicationFiles(gitops *config.GitOps) (map[string][]byte, error) {
	files := make(map[string][]byte, len(gitops.Apps))
	for _, app := range gitops.Apps {
		doc, err := RenderApplication(app, gitops)
		if err != nil {
			return nil, err
		}
		files[path.Join(gitops.Path, app.Name+".yaml")] = doc
	}
	return files, nil
}
