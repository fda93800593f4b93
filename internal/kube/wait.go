package kube

import (
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
)

const pollInterval = 5 * time.Second

// NodesReady returns the number of Ready nodes and the total node count.
func (c *client) NodesReady(ctx context.Context) (int, int, error) {
	nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list nodes: %w", err)
	}

	ready := 0
	for i := range nodes.Items {
		if isNodeReady(&nodes.Items[i]) {
			ready++
		}
	}
	return ready, len(nodes.Items), nil
}

// WaitForNodesReady blocks until at least want nodes report Ready.
func (c *client) WaitForNodesReady(ctx context.Context, want int, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		ready, _, err := c.NodesReady(ctx)
		if err != nil {
			return false, nil
		}
		return ready >= want, nil
	})
	if err != nil {
		return fmt.Errorf("waiting for %d ready nodes: %w", want, err)
	}
	return nil
}

// WaitForDeployment blocks until the deployment is fully available.
func (c *client) WaitForDeployment(ctx context.Context, namespace, name string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		deployment, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return false, nil
		}
		return isDeploymentReady(deployment), nil
	})
	if err != nil {
		return fmt.Errorf("waiting for deployment %s/%s: %w", namespace, name, err)
	}
	return nil
}

// WaitForDaemonSet blocks until the daemonset is ready on every
// scheduled node.
func (c *client) WaitForDaemonSet(ctx context.Context, namespace, name string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		daemonSet, err := c.clientset.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return false, nil
		}
		return isDaemonSetReady(daemonSet), nil
	})
	if err != nil {
		return fmt.Errorf("waiting for daemonset %s/%s: %w", namespace, name, err)
	}
	return nil
}

// WaitForServiceEndpoints blocks until the service has at least one
// ready endpoint address.
func (c *client) WaitForServiceEndpoints(ctx context.Context, namespace, name string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		endpoints, err := c.clientset.CoreV1().Endpoints(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return false, nil
		}
		for _, subset := range endpoints.Subsets {
			if len(subset.Addresses) > 0 {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("waiting for endpoints of %s/%s: %w", namespace, name, err)
	}
	return nil
}

// WaitForServiceLoadBalancer blocks until the service has a load
// balancer ingress and returns its hostname or IP.
func (c *client) WaitForServiceLoadBalancer(ctx context.Context, namespace, name string, timeout time.Duration) (string, error) {
	var host string
	err := wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		h, err := c.ServiceLoadBalancerHost(ctx, namespace, name)
		if err != nil {
			return false, nil
		}
		host = h
		return true, nil
	})
	if err != nil {
		return "", fmt.Errorf("waiting for load balancer of %s/%s: %w", namespace, name, err)
	}
	return host, nil
}

// ServiceLoadBalancerHost resolves the load balancer hostname or IP of a
// service. AWS load balancers publish a hostname; the IP is a fallback
// for other providers.
func (c *client) ServiceLoadBalancerHost(ctx context.Context, namespace, name string) (string, error) {
	svc, err := c.clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get service %s/%s: %w", namespace, name, err)
	}

	for _, ingress := range svc.Status.LoadBalancer.Ingress {
		if ingress.Hostname != "" {
			return ingress.Hostname, nil
		}
		if ingress.IP != "" {
			return ingress.IP, nil
		}
	}
	return "", fmt.Errorf("service %s/%s has no load balancer ingress yet", namespace, name)
}

// isNodeReady checks the node's Ready condition.
func isNodeReady(node *corev1.Node) bool {
	for _, condition := range node.Status.Conditions {
		if condition.Type == corev1.NodeReady &&
			condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

// isDeploymentReady checks if a deployment is ready.
func isDeploymentReady(deployment *appsv1.Deployment) bool {
	replicas := int32(1)
	if deployment.Spec.Replicas != nil {
		replicas = *deployment.Spec.Replicas
	}

	if deployment.Status.UpdatedReplicas != replicas {
		return false
	}
	if deployment.Status.Replicas != replicas {
		return false
	}
	if deployment.Status.AvailableReplicas != replicas {
		return false
	}

	for _, condition := range deployment.Status.Conditions {
		if condition.Type == appsv1.DeploymentAvailable &&
			condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

// isDaemonSetReady checks if a daemonset is ready.
func isDaemonSetReady(daemonSet *appsv1.DaemonSet) bool {
	return daemonSet.Status.DesiredNumberScheduled > 0 &&
		daemonSet.Status.NumberReady == daemonSet.Status.DesiredNumberScheduled &&
		daemonSet.Status.NumberAvailable == daemonSet.Status.DesiredNumberScheduled
}
