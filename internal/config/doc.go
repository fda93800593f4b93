// Package config defines the declarative platform configuration.
//
// A single ekstack.yaml describes everything the tool provisions: the EKS
// cluster and its network, node groups, container registries, the relational
// database, encryption and logging settings, cluster add-ons, and the GitOps
// bootstrap. Loading applies defaults and validates the whole document,
// collecting every problem instead of stopping at the first.
package config
