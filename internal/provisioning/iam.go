package provisioning

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/ibraheemcisse/ekstack/internal/util/keygen"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

// IAMPhase provisions the cluster and node IAM roles with their managed
// policy attachments, and imports an EC2 key pair for node SSH access.
type IAMPhase struct{}

// NewIAMPhase creates the IAM phase.
func NewIAMPhase() *IAMPhase {
	return &IAMPhase{}
}

// Name implements Phase.
func (p *IAMPhase) Name() string { return "iam" }

// Provision implements Phase.
func (p *IAMPhase) Provision(ctx *Context) error {
	clusterRole, err := ctx.Cloud.EnsureClusterRole(ctx, ctx.Config.Name)
	if err != nil {
		return fmt.Errorf("failed to ensure cluster role: %w", err)
	}
	ctx.State.ClusterRole = clusterRole
	logResourceReady(ctx.Observer, p.Name(), clusterRole.Name, clusterRole.ARN)

	nodeRole, err := ctx.Cloud.EnsureNodeRole(ctx, ctx.Config.Name)
	if err != nil {
		return fmt.Errorf("failed to ensure node role: %w", err)
	}
	ctx.State.NodeRole = nodeRole
	logResourceReady(ctx.Observer, p.Name(), nodeRole.Name, nodeRole.ARN)

	return p.ensureKeyPair(ctx)
}

// ensureKeyPair generates an ed25519 key and imports the public half. A
// fresh key is generated on every run; when the pair already exists in
// EC2 the import is a no-op and the existing key stays authoritative, so
// the generated private key is discarded.
func (p *IAMPhase) ensureKeyPair(ctx *Context) error {
	name := naming.KeyPair(ctx.Config.Name)

	pair, err := keygen.GenerateEd25519KeyPair(name)
	if err != nil {
		return fmt.Errorf("failed to generate SSH key: %w", err)
	}

	imported, err := ctx.Cloud.EnsureKeyPair(ctx, ctx.Config.Name, name, pair.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to ensure key pair: %w", err)
	}
	ctx.State.KeyPair = imported

	local, err := publicKeyFingerprint(pair.PublicKey)
	if err != nil {
		return err
	}
	if fingerprintsEqual(local, imported.Fingerprint) {
		ctx.State.SSHPrivateKey = pair.PrivateKey
		logResourceReady(ctx.Observer, p.Name(), name, "SSH key pair imported")
	} else {
		logWarning(ctx.Observer, p.Name(),
			fmt.Sprintf("key pair %s already imported; keeping the existing key", name))
	}

	return nil
}

// publicKeyFingerprint computes the SHA256 fingerprint of a public key in
// authorized_keys format.
func publicKeyFingerprint(publicKey []byte) (string, error) {
	parsed, _, _, _, err := ssh.ParseAuthorizedKey(publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to parse public key: %w", err)
	}
	return ssh.FingerprintSHA256(parsed), nil
}

// fingerprintsEqual compares SHA256 fingerprints regardless of whether
// either carries the "SHA256:" prefix. EC2 reports ed25519 fingerprints
// without it.
func fingerprintsEqual(a, b string) bool {
	return strings.TrimPrefix(a, "SHA256:") == strings.TrimPrefix(b, "SHA256:")
}
