package provisioning

import (
	"fmt"

	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

// EncryptionPhase provisions the platform KMS key. The key encrypts the
// database storage and the registries, and envelope-encrypts Kubernetes
// Secrets when enabled.
type EncryptionPhase struct{}

// NewEncryptionPhase creates the encryption phase.
func NewEncryptionPhase() *EncryptionPhase {
	return &EncryptionPhase{}
}

// Name implements Phase.
func (p *EncryptionPhase) Name() string { return "encryption" }

// Provision implements Phase.
func (p *EncryptionPhase) Provision(ctx *Context) error {
	alias := naming.KeyAlias(ctx.Config.Name)

	key, err := ctx.Cloud.EnsureKey(ctx, ctx.Config.Name, alias)
	if err != nil {
		return fmt.Errorf("failed to ensure KMS key: %w", err)
	}

	ctx.State.Key = key
	logResourceReady(ctx.Observer, p.Name(), alias, "KMS key ready")
	return nil
}
