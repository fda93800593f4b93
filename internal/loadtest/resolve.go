package loadtest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ServiceResolver resolves a Service's load balancer hostname. The kube
// client implements it.
type ServiceResolver interface {
	ServiceLoadBalancerHost(ctx context.Context, namespace, name string) (string, error)
}

// ResolveTarget turns a scenario target into a base URL. Targets of the
// form "service:<namespace>/<name>" are resolved through the cluster to
// the Service's load balancer hostname; http(s) URLs pass through with
// any trailing slash trimmed.
func ResolveTarget(ctx context.Context, target string, resolver ServiceResolver) (string, error) {
	if rest, ok := strings.CutPrefix(target, "service:"); ok {
		namespace, name, ok := strings.Cut(rest, "/")
		if !ok || namespace == "" || name == "" {
			return "", fmt.Errorf("service target %q must be service:<namespace>/<name>", target)
		}
		if resolver == nil {
			return "", fmt.Errorf("service target %q requires cluster access", target)
		}
		host, err := resolver.ServiceLoadBalancerHost(ctx, namespace, name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve service %s/%s: %w", namespace, name, err)
		}
		return "http://" + host, nil
	}

	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("target %q is not a valid http(s) URL", target)
	}
	return strings.TrimRight(target, "/"), nil
}

// TargetHostPort splits a base URL into host and port for reachability
// probing. The port falls back to the scheme default.
func TargetHostPort(baseURL string) (string, int, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", 0, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	port := 80
	if u.Scheme == "https" {
		port = 443
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, fmt.Errorf("invalid port in %q: %w", baseURL, err)
		}
		port = n
	}
	return u.Hostname(), port, nil
}
