// Package addons installs and manages cluster add-ons after the control
// plane and node groups exist.
//
// Add-ons are installed in a fixed order so dependencies come up first:
// the AWS Load Balancer Controller before anything that creates Service
// or Ingress load balancers, then the cluster autoscaler, then
// metrics-server, then the monitoring stack.
//
// Each add-on is implemented as a values builder that translates the
// platform configuration into Helm values, and an install step that
// runs the chart through the Helm SDK and waits for readiness.
package addons
