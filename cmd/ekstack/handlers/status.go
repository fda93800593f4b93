package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/rest"
	crclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ibraheemcisse/ekstack/internal/addons"
	"github.com/ibraheemcisse/ekstack/internal/config"
	"github.com/ibraheemcisse/ekstack/internal/kube"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

// StatusOptions contains the options for the status command.
type StatusOptions struct {
	ConfigPath string
	JSON       bool
	Watch      bool
	Verbose    bool
}

// PlatformStatus is the combined cloud and cluster view of the platform.
type PlatformStatus struct {
	ClusterName string `json:"clusterName"`
	Region      string `json:"region"`

	// Phase is the EKS cluster status, or "Not Created".
	Phase string `json:"phase"`

	Cluster      *ClusterStatus      `json:"cluster,omitempty"`
	NodeGroups   []NodeGroupStatus   `json:"nodeGroups,omitempty"`
	Database     *DatabaseStatus     `json:"database,omitempty"`
	Nodes        *NodesStatus        `json:"nodes,omitempty"`
	Addons       []AddonStatus       `json:"addons,omitempty"`
	Applications []ApplicationStatus `json:"applications,omitempty"`
}

// ClusterStatus is the control plane as EKS reports it.
type ClusterStatus struct {
	Version  string `json:"version"`
	Endpoint string `json:"endpoint"`
}

// NodeGroupStatus is one managed node group as EKS reports it.
type NodeGroupStatus struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	InstanceType string `json:"instanceType"`
	Desired      int32  `json:"desired"`
	Min          int32  `json:"min"`
	Max          int32  `json:"max"`
	Version      string `json:"version,omitempty"`
}

// DatabaseStatus is the RDS instance as AWS reports it.
type DatabaseStatus struct {
	Status   string `json:"status"`
	Endpoint string `json:"endpoint,omitempty"`
	Engine   string `json:"engineVersion,omitempty"`
	MultiAZ  bool   `json:"multiAZ"`
}

// NodesStatus is node readiness as the cluster reports it.
type NodesStatus struct {
	Ready int `json:"ready"`
	Total int `json:"total"`
}

// AddonStatus is one add-on deployment's availability.
type AddonStatus struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Ready     bool   `json:"ready"`
	Replicas  string `json:"replicas,omitempty"`
}

// ApplicationStatus is one ArgoCD application's sync and health state.
type ApplicationStatus struct {
	Name   string `json:"name"`
	Sync   string `json:"sync"`
	Health string `json:"health"`
}

// Factory function variables for status - replaced in tests.
var (
	// newClusterKubeClient builds cluster access from EKS cluster details.
	newClusterKubeClient = kube.NewForCluster

	// newRuntimeClient builds the typed/unstructured reader used for
	// add-on deployments and ArgoCD applications.
	newRuntimeClient = func(restConfig *rest.Config) (crclient.Client, error) {
		return crclient.New(restConfig, crclient.Options{})
	}
)

// argoApplicationListGVK identifies the ArgoCD Application list type. The
// CRD has no Go types here; unstructured access keeps the dependency
// surface down.
var argoApplicationListGVK = schema.GroupVersionKind{
	Group:   "argoproj.io",
	Version: "v1alpha1",
	Kind:    "ApplicationList",
}

// Status handles the status command.
func Status(ctx context.Context, opts StatusOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	cloud, err := newCloudClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize AWS access: %w", err)
	}

	initKubeLogging(newLogger(opts.Verbose))

	if opts.Watch {
		return statusWatch(ctx, cloud, cfg, opts.JSON)
	}
	return statusShow(ctx, cloud, cfg, opts.JSON)
}

// statusShow renders the platform status once.
func statusShow(ctx context.Context, cloud cloudClient, cfg *config.Config, jsonOutput bool) error {
	status, err := buildPlatformStatus(ctx, cloud, cfg)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printStatusJSON(status)
	}
	printStatusFormatted(status)
	return nil
}

// statusWatch re-renders the status every few seconds until canceled.
func statusWatch(ctx context.Context, cloud cloudClient, cfg *config.Config, jsonOutput bool) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	if err := statusShow(ctx, cloud, cfg, jsonOutput); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !jsonOutput {
				fmt.Print("\033[H\033[2J")
			}
			if err := statusShow(ctx, cloud, cfg, jsonOutput); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		}
	}
}

// buildPlatformStatus assembles the cloud view and, when the cluster is
// reachable, the cluster view.
func buildPlatformStatus(ctx context.Context, cloud cloudClient, cfg *config.Config) (*PlatformStatus, error) {
	status := &PlatformStatus{
		ClusterName: cfg.Name,
		Region:      string(cfg.Region),
		Phase:       "Not Created",
	}

	cluster, err := cloud.GetCluster(ctx, cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cluster: %w", err)
	}

	if cfg.HasDatabase() {
		if db, err := cloud.GetDatabase(ctx, naming.DBInstance(cfg.Name)); err == nil && db != nil {
			status.Database = &DatabaseStatus{
				Status:   db.Status,
				Endpoint: db.Endpoint,
				Engine:   db.EngineVersion,
				MultiAZ:  db.MultiAZ,
			}
		}
	}

	if cluster == nil {
		return status, nil
	}

	status.Phase = cluster.Status
	status.Cluster = &ClusterStatus{
		Version:  cluster.Version,
		Endpoint: cluster.Endpoint,
	}

	groups, err := cloud.ListNodeGroups(ctx, cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list node groups: %w", err)
	}
	for _, g := range groups {
		status.NodeGroups = append(status.NodeGroups, NodeGroupStatus{
			Name:         g.Name,
			Status:       g.Status,
			InstanceType: g.InstanceType,
			Desired:      g.Desired,
			Min:          g.Min,
			Max:          g.Max,
			Version:      g.Version,
		})
	}

	// Cluster side is best effort: an unreachable cluster leaves the
	// cloud view standing on its own.
	kubeClient, err := newClusterKubeClient(cloud.SDKConfig(), cluster)
	if err != nil {
		return status, nil
	}
	fillClusterView(ctx, kubeClient, cfg, status)

	return status, nil
}

// fillClusterView adds node readiness, add-on deployment health, and
// ArgoCD application states to the status.
func fillClusterView(ctx context.Context, kubeClient kube.Client, cfg *config.Config, status *PlatformStatus) {
	ready, total, err := kubeClient.NodesReady(ctx)
	if err != nil {
		return
	}
	status.Nodes = &NodesStatus{Ready: ready, Total: total}

	reader, err := newRuntimeClient(kubeClient.RESTConfig())
	if err != nil {
		return
	}

	status.Addons = addonStatuses(ctx, reader, cfg)
	if cfg.HasGitOps() {
		status.Applications = applicationStatuses(ctx, reader)
	}
}

// workloadRef names the deployment an add-on installs.
type workloadRef struct {
	addon      string
	namespace  string
	deployment string
}

// addonWorkloads maps each enabled add-on to the deployment its chart
// creates. Chart defaults are used; only the monitoring stack deviates
// from release name == deployment name.
func addonWorkloads(cfg *config.Config) []workloadRef {
	var refs []workloadRef
	for _, step := range addons.EnabledSteps(cfg) {
		deployment := step.Name
		if step.Name == addons.StepMonitoring {
			deployment = step.Name + "-operator"
		}
		refs = append(refs, workloadRef{addon: step.Name, namespace: step.Namespace, deployment: deployment})
	}
	if cfg.HasGitOps() {
		refs = append(refs, workloadRef{addon: "argocd", namespace: "argocd", deployment: "argocd-server"})
	}
	return refs
}

// addonStatuses reads each add-on deployment's availability.
func addonStatuses(ctx context.Context, reader crclient.Client, cfg *config.Config) []AddonStatus {
	var statuses []AddonStatus
	for _, ref := range addonWorkloads(cfg) {
		s := AddonStatus{Name: ref.addon, Namespace: ref.namespace}

		deployment := &appsv1.Deployment{}
		key := crclient.ObjectKey{Namespace: ref.namespace, Name: ref.deployment}
		if err := reader.Get(ctx, key, deployment); err == nil {
			desired := int32(1)
			if deployment.Spec.Replicas != nil {
				desired = *deployment.Spec.Replicas
			}
			s.Ready = desired > 0 && deployment.Status.AvailableReplicas >= desired
			s.Replicas = fmt.Sprintf("%d/%d", deployment.Status.AvailableReplicas, desired)
		}

		statuses = append(statuses, s)
	}
	return statuses
}

// applicationStatuses lists ArgoCD applications with their sync and
// health states. Errors leave the list empty; the apps may simply not
// exist yet.
func applicationStatuses(ctx context.Context, reader crclient.Client) []ApplicationStatus {
	appList := &unstructured.UnstructuredList{}
	appList.SetGroupVersionKind(argoApplicationListGVK)
	if err := reader.List(ctx, appList, crclient.InNamespace("argocd")); err != nil {
		return nil
	}

	var statuses []ApplicationStatus
	for _, item := range appList.Items {
		sync, _, _ := unstructured.NestedString(item.Object, "status", "sync", "status")
		health, _, _ := unstructured.NestedString(item.Object, "status", "health", "status")
		if sync == "" {
			sync = "Unknown"
		}
		if health == "" {
			health = "Unknown"
		}
		statuses = append(statuses, ApplicationStatus{
			Name:   item.GetName(),
			Sync:   sync,
			Health: health,
		})
	}
	return statuses
}

// printStatusJSON outputs the status as JSON.
func printStatusJSON(status *PlatformStatus) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printStatusFormatted outputs the status in a formatted display.
func printStatusFormatted(status *PlatformStatus) {
	fmt.Printf("ekstack platform: %s (%s)\n", status.ClusterName, status.Region)
	fmt.Println(strings.Repeat("─", 40))
	fmt.Println()

	if status.Phase == "Not Created" {
		fmt.Println("  Cluster not created. Run 'ekstack apply' to provision it.")
		if status.Database != nil {
			fmt.Println()
			fmt.Println("Database:")
			printStatusLine(status.Database.Status, status.Database.Status == "available", status.Database.Endpoint)
		}
		fmt.Println()
		return
	}

	fmt.Println("Cluster:")
	printStatusLine("control plane", status.Phase == "ACTIVE", fmt.Sprintf("%s %s", status.Phase, status.Cluster.Version))

	if status.Nodes != nil {
		nodesOK := status.Nodes.Ready == status.Nodes.Total && status.Nodes.Total > 0
		printStatusLine("nodes", nodesOK, fmt.Sprintf("(%d/%d ready)", status.Nodes.Ready, status.Nodes.Total))
	}
	fmt.Println()

	if len(status.NodeGroups) > 0 {
		fmt.Println("Node groups:")
		for _, g := range status.NodeGroups {
			extra := fmt.Sprintf("%s desired %d (min %d, max %d)", g.InstanceType, g.Desired, g.Min, g.Max)
			printStatusLine(g.Name, g.Status == "ACTIVE", extra)
		}
		fmt.Println()
	}

	if status.Database != nil {
		fmt.Println("Database:")
		printStatusLine("postgres", status.Database.Status == "available", status.Database.Status)
		fmt.Println()
	}

	if len(status.Addons) > 0 {
		fmt.Println("Add-ons:")
		for _, a := range status.Addons {
			printStatusLine(a.Name, a.Ready, a.Replicas)
		}
		fmt.Println()
	}

	if len(status.Applications) > 0 {
		fmt.Println("Applications:")
		for _, app := range status.Applications {
			ok := app.Sync == "Synced" && app.Health == "Healthy"
			printStatusLine(app.Name, ok, fmt.Sprintf("%s / %s", app.Sync, app.Health))
		}
		fmt.Println()
	}

	fmt.Printf("Status: %s\n", status.Phase)
}

// printStatusLine prints a single status line with an indicator.
func printStatusLine(name string, ready bool, extra string) {
	indicator := "○"
	if ready {
		indicator = "✓"
	}

	if extra != "" {
		fmt.Printf("  %s %s %s\n", indicator, name, extra)
	} else {
		fmt.Printf("  %s %s\n", indicator, name)
	}
}
