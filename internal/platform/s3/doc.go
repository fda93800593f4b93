// Package s3 uploads load-test reports to an S3 archive bucket.
//
// It handles bucket creation and object upload using the same credential
// chain as the rest of the platform layer. Buckets are created on first
// use, so the report archive needs no separate provisioning step.
package s3
