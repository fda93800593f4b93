// Package provisioning turns a platform configuration into running AWS
// infrastructure through an ordered sequence of phases.
//
// Each phase implements Phase and reads and writes the shared State
// carried by Context: network, encryption, logging, registry, iam,
// cluster, irsa, nodegroup, coreaddons, database. Every phase is
// idempotent; re-running apply adopts what already exists and creates
// only what is missing. Destroy tears the same resources down in reverse
// dependency order.
package provisioning
