package storage

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestWrapS3Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want error
		name string
	}{
		{name: "no such key", err: &smithy.GenericAPIError{Code: "NoSuchKey"}, want: ErrNotFound},
		{name: "not found", err: &smithy.GenericAPIError{Code: "NotFound"}, want: ErrNotFound},
		{name: "typed no such key", err: &types.NoSuchKey{}, want: ErrNotFound},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, want: ErrAccessDenied},
		{name: "forbidden", err: &smithy.GenericAPIError{Code: "Forbidden"}, want: ErrAccessDenied},
		{name: "other api error", err: &smithy.GenericAPIError{Code: "SlowDown"}, want: ErrUploadFailed},
		{name: "plain error", err: errors.New("boom"), want: ErrUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := wrapS3Error(tt.err, ErrUploadFailed)
			assert.ErrorIs(t, got, tt.want)

			var apiErr smithy.APIError
			assert.False(t, errors.As(got, &apiErr))
		})
	}
}
