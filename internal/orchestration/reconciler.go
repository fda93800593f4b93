package orchestration

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/ibraheemcisse/ekstack/internal/addons"
	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/gitops"
	"github.com/ibraheemcisse/ekstack/internal/kube"
	"github.com/ibraheemcisse/ekstack/internal/platform/aws"
	"github.com/ibraheemcisse/ekstack/internal/provisioning"
)

// Reconciler orchestrates the platform apply workflow.
type Reconciler struct {
	cloud    aws.CloudManager
	awsCfg   awssdk.Config
	config   *config.Config
	observer provisioning.Observer

	// Factories for the cluster-side dependencies, substitutable in tests.
	newKubeClient func(awssdk.Config, *aws.Cluster) (kube.Client, error)
	newInstaller  func(kube.Client, addons.Inputs) addonInstaller
	newBootstrap  func(kube.Client) gitopsBootstrapper
}

// addonInstaller installs cluster add-ons one release at a time.
type addonInstaller interface {
	InstallStep(ctx context.Context, stepName string, cfg *config.Config) error
}

// gitopsBootstrapper installs ArgoCD and registers the configured
// applications.
type gitopsBootstrapper interface {
	Run(ctx context.Context, cfg *config.Config) error
}

// Result is what a completed apply produced.
type Result struct {
	// State holds every provisioned resource.
	State *provisioning.State

	// Kubeconfig is the cluster access configuration, ready to be written
	// to disk.
	Kubeconfig *clientcmdapi.Config
}

// NewReconciler creates a reconciler over the given cloud access. A nil
// observer falls back to a silent one.
func NewReconciler(cloud aws.CloudManager, awsCfg awssdk.Config, cfg *config.Config, observer provisioning.Observer) *Reconciler {
	if observer == nil {
		observer = provisioning.NopObserver{}
	}
	return &Reconciler{
		cloud:         cloud,
		awsCfg:        awsCfg,
		config:        cfg,
		observer:      observer,
		newKubeClient: kube.NewForCluster,
		newInstaller: func(kubeClient kube.Client, inputs addons.Inputs) addonInstaller {
			return addons.NewInstaller(kubeClient, inputs)
		},
		newBootstrap: func(kubeClient kube.Client) gitopsBootstrapper {
			return gitops.NewBootstrap(kubeClient)
		},
	}
}

// step is one cluster-side unit of work executed after provisioning.
type step struct {
	name string
	run  func(ctx context.Context, client kube.Client, state *provisioning.State) error
}

// Reconcile ensures the platform matches the configuration: provisioning
// phases first, then the steps that need cluster access. Partial failures
// leave earlier results in place; re-running apply picks up where the
// failed run stopped.
func (r *Reconciler) Reconcile(ctx context.Context) (*Result, error) {
	pCtx := provisioning.NewContext(ctx, r.config, r.cloud, r.observer)
	if err := provisioning.RunPhases(pCtx, provisioning.ApplyPhases(r.config)); err != nil {
		return nil, err
	}
	state := pCtx.State

	client, err := r.newKubeClient(r.awsCfg, state.Cluster)
	if err != nil {
		return nil, fmt.Errorf("failed to build cluster access: %w", err)
	}

	for _, s := range r.steps() {
		if err := r.runStep(ctx, s, client, state); err != nil {
			return nil, err
		}
	}

	return &Result{
		State:      state,
		Kubeconfig: kube.Kubeconfig(state.Cluster, string(r.config.Region)),
	}, nil
}

// steps returns the cluster-side steps in execution order. Steps whose
// feature is not configured are left out entirely so observers see a
// stable sequence.
func (r *Reconciler) steps() []step {
	steps := []step{
		{"workloads", r.waitForNodes},
	}
	if r.config.HasDatabase() {
		steps = append(steps, step{"database-secret", r.publishDatabaseSecret})
	}
	steps = append(steps, step{"addons", r.installAddons})
	if r.config.HasGitOps() {
		steps = append(steps, step{"gitops", r.bootstrapGitOps})
	}
	return steps
}

func (r *Reconciler) runStep(ctx context.Context, s step, client kube.Client, state *provisioning.State) error {
	start := time.Now()
	r.observer.Event(provisioning.Event{
		Type:      provisioning.EventPhaseStarted,
		Phase:     s.name,
		Message:   "starting",
		Timestamp: start,
	})

	if err := s.run(ctx, client, state); err != nil {
		r.observer.Event(provisioning.Event{
			Type:      provisioning.EventPhaseFailed,
			Phase:     s.name,
			Message:   fmt.Sprintf("failed: %v", err),
			Timestamp: time.Now(),
		})
		return fmt.Errorf("%s step failed: %w", s.name, err)
	}

	r.observer.Event(provisioning.Event{
		Type:      provisioning.EventPhaseCompleted,
		Phase:     s.name,
		Message:   fmt.Sprintf("completed in %v", time.Since(start).Round(time.Millisecond)),
		Timestamp: time.Now(),
	})
	return nil
}
