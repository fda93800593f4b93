// Package gitops bootstraps ArgoCD on a freshly provisioned cluster and
// hands the configured applications over to it.
//
// The bootstrap installs the argo-cd Helm chart, waits for the server and
// repo-server deployments, optionally seeds the Git repository with the
// generated Application manifests, and applies those manifests so ArgoCD
// starts syncing immediately. From that point on the repository is the
// source of truth; re-running the bootstrap is idempotent.
package gitops
