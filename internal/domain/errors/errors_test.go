package errors

import (
	"testing"

	"cliptube/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestBaseError_WithDetailsMatchesSentinel(t *testing.T) {
	err := ErrValidationFailed.WithDetails("newPassword and confirmPassword must match")

	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.Equal(t, "newPassword and confirmPassword must match", err.Details())
	// The sentinel itself stays pristine.
	assert.Empty(t, ErrValidationFailed.Details())
}

func TestBaseError_WrappedWithDetailsMatchesSentinel(t *testing.T) {
	err := errors.Wrap(ErrMediaUploadFailed.WithDetails("bucket write failed"), "upload avatar")

	assert.True(t, errors.Is(err, ErrMediaUploadFailed))

	var appErr AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "MEDIA_UPLOAD_FAILED", appErr.ErrorCode())
}

func TestBaseError_DistinctSentinelsDoNotMatch(t *testing.T) {
	err := ErrValidationFailed.WithDetails("bad input")

	assert.False(t, errors.Is(err, ErrAccountNotFound))
	assert.False(t, errors.Is(ErrRefreshTokenExpired, ErrRefreshTokenInvalid))
}

func TestBaseError_IsIgnoresForeignErrors(t *testing.T) {
	assert.False(t, errors.Is(ErrUnauthorized, errors.New("unauthorized request")))
}
