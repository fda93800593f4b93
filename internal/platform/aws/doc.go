// Package aws provides a thin, idempotent wrapper around the AWS APIs used
// to provision the platform: EC2 networking, EKS clusters and node groups,
// ECR repositories, RDS databases, KMS keys, CloudWatch log groups, and IAM
// roles including IRSA wiring.
//
// Every mutation is expressed as an ensure operation: look the resource up
// by name or tag first, create it only when absent, and validate or update
// it when present. Deletes are idempotent the same way. Transient API
// failures (throttling, conflicts, IAM propagation races) are retried with
// exponential backoff; validation and authorization failures are not.
package aws
