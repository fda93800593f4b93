// Package orchestration sequences a full platform apply.
//
// The Reconciler first runs the provisioning phases against AWS, then the
// cluster-side steps that need API server access: waiting for nodes,
// publishing database credentials, installing add-ons, and bootstrapping
// GitOps. It defines the order and coordination but delegates the actual
// work to the provisioning, kube, addons, and gitops packages.
//
// # Usage
//
// The Reconciler is the main entry point:
//
//	reconciler := orchestration.NewReconciler(cloud, awsCfg, cfg, observer)
//	result, err := reconciler.Reconcile(ctx)
//
// The reconciler is idempotent. Every ensure operation adopts what already
// exists, so a failed apply is recovered by running it again.
package orchestration
