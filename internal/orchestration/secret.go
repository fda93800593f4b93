package orchestration

import (
	"context"
	"fmt"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/ibraheemcisse/ekstack/internal/kube"
	"github.com/ibraheemcisse/ekstack/internal/provisioning"
	"github.com/ibraheemcisse/ekstack/internal/util/naming"
)

// databaseSecretNamespace is where the connection secret is published.
// Workloads in other namespaces copy or reference it through their own
// tooling (external-secrets has a matching IRSA role).
const databaseSecretNamespace = "default"

// publishDatabaseSecret writes the database connection details into the
// cluster. The master password is only known when the instance was
// created by this run; for an adopted instance the existing secret is
// left untouched.
func (r *Reconciler) publishDatabaseSecret(ctx context.Context, client kube.Client, state *provisioning.State) error {
	name := naming.DatabaseSecret(r.config.Name)

	if state.DatabasePassword == "" {
		exists, err := client.SecretExists(ctx, databaseSecretNamespace, name)
		if err != nil {
			return fmt.Errorf("checking secret %s: %w", name, err)
		}
		if !exists {
			r.observer.Printf("database %s predates this run and its password is not recoverable; create secret %s/%s manually",
				state.Database.Identifier, databaseSecretNamespace, name)
		}
		return nil
	}

	db := r.config.Database
	host := state.Database.Endpoint
	port := strconv.Itoa(int(state.Database.Port))

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: databaseSecretNamespace,
			Labels: map[string]string{
				"app.kubernetes.io/managed-by": "ekstack",
			},
		},
		Type: corev1.SecretTypeOpaque,
		StringData: map[string]string{
			"host":     host,
			"port":     port,
			"dbname":   db.Name,
			"username": db.Username,
			"password": state.DatabasePassword,
			"url": fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
				db.Username, state.DatabasePassword, host, port, db.Name),
		},
	}

	if err := client.CreateSecret(ctx, secret); err != nil {
		return err
	}
	r.observer.Printf("published database credentials to %s/%s", databaseSecretNamespace, name)
	return nil
}
