package gitops

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

func boolPtr(b bool) *bool { return &b }

func testGitOps() *config.GitOps {
	return &config.GitOps{
		RepoURL: "https://github.com/acme/platform.git",
		Branch:  "main",
		Path:    "apps",
	}
}

func decodeManifest(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	return doc
}

func dig(t *testing.T, doc map[string]any, keys ...string) map[string]any {
	t.Helper()
	current := doc
	for _, key := range keys {
		next, ok := current[key].(map[string]any)
		require.True(t, ok, "expected %q to be a map", key)
		current = next
	}
	return current
}

func TestRenderApplication_Defaults(t *testing.T) {
	t.Parallel()

	data, err := RenderApplication(config.Application{Name: "web"}, testGitOps())
	require.NoError(t, err)

	doc := decodeManifest(t, data)
	assert.Equal(t, "argoproj.io/v1alpha1", doc["apiVersion"])
	assert.Equal(t, "Application", doc["kind"])

	metadata := dig(t, doc, "metadata")
	assert.Equal(t, "web", metadata["name"])
	assert.Equal(t, "argocd", metadata["namespace"])
	assert.Equal(t, []any{"resources-finalizer.argocd.argoproj.io"}, metadata["finalizers"])

	spec := dig(t, doc, "spec")
	assert.Equal(t, "default", spec["project"])

	source := dig(t, doc, "spec", "source")
	assert.Equal(t, "https://github.com/acme/platform.git", source["repoURL"])
	assert.Equal(t, "main", source["targetRevision"])
	assert.Equal(t, "apps/web", source["path"])

	destination := dig(t, doc, "spec", "destination")
	assert.Equal(t, "https://kubernetes.default.svc", destination["server"])
	assert.Equal(t, "web", destination["namespace"])

	syncPolicy := dig(t, doc, "spec", "syncPolicy")
	assert.Equal(t, []any{"CreateNamespace=true"}, syncPolicy["syncOptions"])

	automated := dig(t, doc, "spec", "syncPolicy", "automated")
	assert.Equal(t, true, automated["prune"])
	assert.Equal(t, true, automated["selfHeal"])
}

func TestRenderApplication_AutoSyncDisabled(t *testing.T) {
	t.Parallel()

	app := config.Application{Name: "web", AutoSync: boolPtr(false)}

	data, err := RenderApplication(app, testGitOps())
	require.NoError(t, err)

	syncPolicy := dig(t, decodeManifest(t, data), "spec", "syncPolicy")
	assert.NotContains(t, syncPolicy, "automated")
	assert.Equal(t, []any{"CreateNamespace=true"}, syncPolicy["syncOptions"])
}

func TestRenderApplication_Overrides(t *testing.T) {
	t.Parallel()

	app := config.Application{
		Name:      "api",
		Path:      "deploy/api",
		Namespace: "backend",
		RepoURL:   "https://github.com/acme/api.git",
	}

	data, err := RenderApplication(app, testGitOps())
	require.NoError(t, err)

	doc := decodeManifest(t, data)
	source := dig(t, doc, "spec", "source")
	assert.Equal(t, "https://github.com/acme/api.git", source["repoURL"])
	assert.Equal(t, "deploy/api", source["path"])
	assert.Equal(t, "backend", dig(t, doc, "spec", "destination")["namespace"])
}

func TestRenderApplications_MultiDocument(t *testing.T) {
	t.Parallel()

	gitops := testGitOps()
	gitops.Apps = []config.Application{{Name: "web"}, {Name: "api"}}

	data, err := RenderApplications(gitops)
	require.NoError(t, err)

	docs := strings.Split(string(data), "---\n")
	require.Len(t, docs, 2)
	assert.Equal(t, "web", dig(t, decodeManifest(t, []byte(docs[0])), "metadata")["name"])
	assert.Equal(t, "api", dig(t, decodeManifest(t, []byte(docs[1])), "metadata")["name"])
}

func TestRenderApplicationFiles_PathsUnderBase(t *testing.T) {
	t.Parallel()

	gitops := testGitOps()
	gitops.Apps = []config.Application{{Name: "web"}, {Name: "api"}}

	files, err := renderApplicationFiles(gitops)
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Contains(t, files, "apps/web.yaml")
	assert.Contains(t, files, "apps/api.yaml")
	assert.Contains(t, string(files["apps/web.yaml"]), "kind: Application")
}
