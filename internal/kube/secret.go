package kube

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// CreateSecret creates or replaces a secret in the specified namespace.
// An existing secret is deleted and recreated so the stored data is
// exactly what was given, not a merge.
func (c *client) CreateSecret(ctx context.Context, secret *corev1.Secret) error {
	if secret.Namespace == "" {
		return fmt.Errorf("secret namespace is required")
	}
	if secret.Name == "" {
		return fmt.Errorf("secret name is required")
	}

	secretsClient := c.clientset.CoreV1().Secrets(secret.Namespace)

	err := secretsClient.Delete(ctx, secret.Name, metav1.DeleteOptions{})
	if err != nil && !errors.IsNotFound(err) {
		return fmt.Errorf("failed to delete existing secret %s/%s: %w",
			secret.Namespace, secret.Name, err)
	}

	_, err = secretsClient.Create(ctx, secret, metav1.CreateOptions{})
	if err != nil {
		return fmt.Errorf("failed to create secret %s/%s: %w",
			secret.Namespace, secret.Name, err)
	}

	return nil
}

// SecretExists reports whether a secret exists.
func (c *client) SecretExists(ctx context.Context, namespace, name string) (bool, error) {
	_, err := c.clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get secret %s/%s: %w", namespace, name, err)
	}
	return true, nil
}

// DeleteSecret deletes a secret, returning nil if not found.
func (c *client) DeleteSecret(ctx context.Context, namespace, name string) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if name == "" {
		return fmt.Errorf("secret name is required")
	}

	err := c.clientset.CoreV1().Secrets(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !errors.IsNotFound(err) {
		return fmt.Errorf("failed to delete secret %s/%s: %w", namespace, name, err)
	}

	return nil
}
