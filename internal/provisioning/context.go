package provisioning

import (
	"context"

	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
)

// State holds the shared results of provisioning phases. It is
// progressively populated as each phase completes and read by the phases
// that follow.
type State struct {
	// Network results.
	Network *aws.Network

	// Encryption, logging, and registry results.
	Key          *aws.Key
	LogGroup     *aws.LogGroup
	Repositories []aws.Repository

	// IAM results. SSHPrivateKey is only set when the key pair was
	// imported by this run; on reuse the private half is whatever the
	// operator saved the first time.
	ClusterRole   *aws.Role
	NodeRole      *aws.Role
	KeyPair       *aws.KeyPair
	SSHPrivateKey []byte

	// Cluster results.
	Cluster      *aws.Cluster
	OIDCProvider *aws.OIDCProvider
	CoreAddons   []aws.Addon

	// IRSARoles maps addon name to the IAM role its service account
	// assumes.
	IRSARoles map[string]*aws.Role

	// Node group results.
	NodeGroups []aws.NodeGroup

	// Database results. DatabasePassword is only set when the instance
	// was created by this run; an existing instance keeps its password.
	Database         *aws.DBInstance
	DatabasePassword string
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{
		IRSARoles: make(map[string]*aws.Role),
	}
}

// Context carries the dependencies and accumulated state shared by all
// provisioning phases.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Cloud    aws.CloudManager
	Observer Observer
	Timeouts config.Timeouts
}

// NewContext creates a provisioning context. A nil observer falls back to
// a silent one.
func NewContext(ctx context.Context, cfg *config.Config, cloud aws.CloudManager, observer Observer) *Context {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Cloud:    cloud,
		Observer: observer,
		Timeouts: cfg.Timeouts,
	}
}
