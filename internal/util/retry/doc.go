// Package retry provides exponential backoff retry logic for transient failures.
//
// The [Do] function retries an operation with configurable max attempts,
// initial delay, and maximum delay. It is used for AWS API calls and other
// operations that may fail transiently, such as eventual-consistency races
// between IAM and the services that consume freshly created roles.
package retry
