// Package naming provides consistent naming functions for AWS resources.
//
// Resource names follow the pattern {cluster}-{type} for infrastructure
// (VPC, gateways, security groups, IAM roles) and {cluster}-{pool} for
// node groups. KMS aliases and CloudWatch log groups follow the prefix
// conventions of their services instead.
package naming
