package gitops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/ibraheemcisse/ekstack/internal/config"
)

// gitTokenEnv holds a token for HTTPS pushes when no SSH key is
// configured.
const gitTokenEnv = "EKSTACK_GIT_TOKEN"

// SeedRepository clones the GitOps repository, writes the given files,
// and pushes a commit to the configured branch. The file keys are
// slash-separated paths relative to the repository root. It returns the
// commit hash, or an empty string when the repository already holds
// identical content.
func SeedRepository(ctx context.Context, gitops *config.GitOps, files map[string][]byte) (string, error) {
	dir, err := os.MkdirTemp("", "ekstack-gitops-")
	if err != nil {
		return "", fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	auth, err := buildGitAuth(gitops)
	if err != nil {
		return "", err
	}

	// Full clone: pushes from shallow clones are rejected by most servers.
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           gitops.RepoURL,
		ReferenceName: plumbing.NewBranchReferenceName(gitops.Branch),
		SingleBranch:  true,
		Auth:          auth,
	})
	if err != nil {
		return "", fmt.Errorf("failed to clone %s: %w", gitops.RepoURL, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	for name, content := range files {
		fullPath := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory for %s: %w", name, err)
		}
		if err := os.WriteFile(fullPath, content, 0o644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", name, err)
		}
		if _, err := worktree.Add(name); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", name, err)
		}
	}

	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree status: %w", err)
	}
	if status.IsClean() {
		// Identical content is already committed; nothing to push.
		return "", nil
	}

	hash, err := worktree.Commit("Add ArgoCD application manifests", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "ekstack",
			Email: "ekstack@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	if err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		Auth:       auth,
	}); err != nil {
		return "", fmt.Errorf("failed to push to %s: %w", gitops.RepoURL, err)
	}

	return hash.String(), nil
}

// buildGitAuth resolves the push credentials: the configured SSH key if
// set, then a token from EKSTACK_GIT_TOKEN for HTTPS remotes. Local
// remotes and ambient credential helpers need neither.
func buildGitAuth(gitops *config.GitOps) (transport.AuthMethod, error) {
	if gitops.SSHKeyPath != "" {
		auth, err := gitssh.NewPublicKeysFromFile("git", gitops.SSHKeyPath, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load ssh key %s: %w", gitops.SSHKeyPath, err)
		}
		return auth, nil
	}

	if token := os.Getenv(gitTokenEnv); token != "" {
		return &githttp.BasicAuth{Username: "ekstack", Password: token}, nil
	}

	return nil, nil
}
