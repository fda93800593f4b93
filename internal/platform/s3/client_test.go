package s3

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func TestIsBucketAlreadyOwnedByYou(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"typed owned by you", &types.BucketAlreadyOwnedByYou{}, true},
		{"typed already exists", &types.BucketAlreadyExists{}, true},
		{"generic owned by you code", &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}, true},
		{"generic already exists code", &smithy.GenericAPIError{Code: "BucketAlreadyExists"}, true},
		{"other api error", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"plain error", errors.New("bucket already exists"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isBucketAlreadyOwnedByYou(tt.err)
			if got != tt.want {
				t.Errorf("isBucketAlreadyOwnedByYou() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"typed no such bucket", &types.NoSuchBucket{}, true},
		{"typed not found", &types.NotFound{}, true},
		{"generic not found code", &smithy.GenericAPIError{Code: "NotFound"}, true},
		{"generic 404 code", &smithy.GenericAPIError{Code: "404"}, true},
		{"other api error", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"plain error", errors.New("not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isNotFoundError(tt.err)
			if got != tt.want {
				t.Errorf("isNotFoundError() = %v, want %v", got, tt.want)
			}
		})
	}
}
