// Package kube provides cluster access for a freshly provisioned EKS
// cluster: bearer tokens minted in process from STS, kubeconfig
// generation for the aws CLI exec-auth flow, server-side apply of
// manifests, secret management, and readiness waits.
package kube
