package aws

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/ibraheemcisse/ekstack/internal/util/retry"
)

// apiErrorCode extracts the service error code, or "" when err is not an
// AWS API error.
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func isAPIErrorCode(err error, codes ...string) bool {
	got := apiErrorCode(err)
	if got == "" {
		return false
	}
	for _, code := range codes {
		if got == code {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err means the requested resource does not
// exist. Every AWS service spells this differently (InvalidVpcID.NotFound,
// DBInstanceNotFoundFault, NoSuchEntity, ResourceNotFoundException).
func IsNotFound(err error) bool {
	code := apiErrorCode(err)
	if code == "" {
		return false
	}
	return strings.Contains(code, "NotFound") || strings.HasPrefix(code, "NoSuchEntity")
}

// IsAlreadyExists reports whether err means the resource, rule, or
// association was created by a concurrent or earlier run. EC2 spells this
// AlreadyExists, Duplicate, or AlreadyAssociated depending on the call.
func IsAlreadyExists(err error) bool {
	code := apiErrorCode(err)
	if code == "" {
		return false
	}
	return strings.Contains(code, "AlreadyExists") ||
		strings.Contains(code, "Duplicate") ||
		strings.Contains(code, "AlreadyAssociated")
}

// IsThrottled reports whether err is an API rate limit response.
func IsThrottled(err error) bool {
	return isAPIErrorCode(err,
		"Throttling",
		"ThrottlingException",
		"RequestLimitExceeded",
		"RequestThrottled",
		"RequestThrottledException",
		"TooManyRequestsException",
		"SlowDown",
	)
}

// IsConflict reports whether err means the resource is busy or still
// referenced and the call can succeed later. DependencyViolation shows up
// throughout teardown while dependent resources drain.
func IsConflict(err error) bool {
	return isAPIErrorCode(err,
		"ResourceInUseException",
		"ResourceInUse",
		"DependencyViolation",
		"ConflictException",
		"ConcurrentModificationException",
		"DeleteConflict",
		"InvalidDBInstanceState",
		"OperationAbortedException",
	)
}

func isServerFault(err error) bool {
	return isAPIErrorCode(err,
		"InternalError",
		"InternalFailure",
		"InternalServerException",
		"ServiceUnavailable",
		"ServerException",
	)
}

// isIAMPropagationDelay matches the invalid parameter error EKS and RDS
// return when a freshly created IAM role has not propagated yet. The code
// alone is a genuine validation failure, so the message has to be sniffed.
func isIAMPropagationDelay(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.ErrorCode() != "InvalidParameterException" {
		return false
	}
	msg := strings.ToLower(apiErr.ErrorMessage())
	return strings.Contains(msg, "assume") || strings.Contains(msg, "does not exist") || strings.Contains(msg, "provided role")
}

func isRetryable(err error) bool {
	return IsThrottled(err) || IsConflict(err) || isServerFault(err) || isIAMPropagationDelay(err)
}

// classify decides whether the retry layer should keep going. Transient
// failures pass through unchanged; everything else is marked fatal so the
// backoff loop stops immediately.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isRetryable(err) {
		return err
	}
	return retry.Fatal(err)
}
