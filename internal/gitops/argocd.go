package gitops

import (
	"github.com/ibraheemcisse/ekstack/internal/addons/helm"
	"github.com/ibraheemcisse/ekstack/internal/config"
)

// buildArgoCDValues creates helm values for the argo-cd chart.
func buildArgoCDValues(gitops *config.GitOps) helm.Values {
	values := helm.Values{
		// Install CRDs with the chart and keep them on uninstall so
		// Application resources survive a reinstall.
		"crds": helm.Values{
			"install": true,
			"keep":    true,
		},
		// Disable the redis secret init job - we don't use password auth
		// This is a TOP-LEVEL key, not nested under redis
		// See: https://github.com/argoproj/argo-helm/issues/3057
		"redisSecretInit": helm.Values{
			"enabled": false,
		},
		"controller": buildArgoCDController(),
		"server":     buildArgoCDServer(gitops.HA),
		"repoServer": buildArgoCDRepoServer(gitops.HA),
		"redis":      buildArgoCDRedis(gitops.HA),
		// Dex (OIDC provider) - disabled, access goes through the AWS
		// credential chain and the CLI
		"dex": helm.Values{
			"enabled": false,
		},
		// ApplicationSet controller
		"applicationSet": helm.Values{
			"enabled": true,
		},
		// Notifications controller
		"notifications": helm.Values{
			"enabled": true,
		},
	}

	if gitops.HA {
		values["redis-ha"] = helm.Values{
			"enabled": true,
			// Disable redis-ha auth to avoid secret dependency issues
			// See: https://github.com/argoproj/argo-helm/issues/3057
			"auth": false,
		}
	} else {
		// Explicitly disable redis-ha for non-HA mode
		values["redis-ha"] = helm.Values{
			"enabled": false,
		}
	}

	return values
}

// buildArgoCDController creates the application controller configuration.
// The controller stays at one replica even in HA mode: additional replicas
// need explicit shard assignment and buy nothing for a single cluster.
func buildArgoCDController() helm.Values {
	return helm.Values{
		"replicas": 1,
		// Resource defaults for production
		"resources": helm.Values{
			"requests": helm.Values{
				"cpu":    "100m",
				"memory": "256Mi",
			},
			"limits": helm.Values{
				"memory": "512Mi",
			},
		},
	}
}

// buildArgoCDServer creates the ArgoCD server configuration.
func buildArgoCDServer(ha bool) helm.Values {
	replicas := 1
	if ha {
		replicas = 2
	}

	return helm.Values{
		"replicas": replicas,
		// Resource defaults for production
		"resources": helm.Values{
			"requests": helm.Values{
				"cpu":    "50m",
				"memory": "128Mi",
			},
			"limits": helm.Values{
				"memory": "256Mi",
			},
		},
	}
}

// buildArgoCDRepoServer creates the repo server configuration.
func buildArgoCDRepoServer(ha bool) helm.Values {
	replicas := 1
	if ha {
		replicas = 2
	}

	return helm.Values{
		"replicas": replicas,
		// Resource defaults for production
		"resources": helm.Values{
			"requests": helm.Values{
				"cpu":    "50m",
				"memory": "128Mi",
			},
			"limits": helm.Values{
				"memory": "512Mi",
			},
		},
	}
}

// buildArgoCDRedis creates the Redis configuration.
func buildArgoCDRedis(ha bool) helm.Values {
	// Disable standalone redis if HA is enabled (uses redis-ha instead)
	if ha {
		return helm.Values{
			"enabled": false,
		}
	}

	return helm.Values{
		"enabled": true,
		// Resource defaults
		"resources": helm.Values{
			"requests": helm.Values{
				"cpu":    "50m",
				"memory": "64Mi",
			},
			"limits": helm.Values{
				"memory": "128Mi",
			},
		},
	}
}
