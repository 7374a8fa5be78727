package contextutils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrorCodeInvalidInput, SeverityWarn, "Invalid input", "field name is empty")
	assert.Equal(t, "INVALID_INPUT: Invalid input - field name is empty", err.Error())

	err = NewAppError(ErrorCodeInvalidInput, SeverityWarn, "Invalid input", "")
	assert.Equal(t, "INVALID_INPUT: Invalid input", err.Error())
}

func TestAppError_Is(t *testing.T) {
	wrapped := WrapError(ErrRecordNotFound, "loading submission")
	assert.True(t, errors.Is(wrapped, ErrRecordNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidInput))
}

func TestWrapError_PreservesCode(t *testing.T) {
	wrapped := WrapError(ErrInvalidCredentials, "login failed")
	appErr, ok := wrapped.(*AppError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInvalidCredentials, appErr.Code)
	assert.Equal(t, "login failed", appErr.Message)
}

func TestWrapError_PlainError(t *testing.T) {
	wrapped := WrapError(errors.New("boom"), "saving record")
	appErr, ok := wrapped.(*AppError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInternalError, appErr.Code)
	assert.Equal(t, "boom", appErr.Details)
}

func TestWrapError_Nil(t *testing.T) {
	assert.NoError(t, WrapError(nil, "no-op"))
	assert.NoError(t, WrapErrorf(nil, "no-op %d", 1))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrorCodeRecordNotFound, GetErrorCode(ErrRecordNotFound))
	assert.Equal(t, ErrorCodeInternalError, GetErrorCode(errors.New("plain")))
}

func TestToJSON(t *testing.T) {
	j := NewAppError(ErrorCodeUploadFailed, SeverityError, "Image upload failed", "object storage timeout").ToJSON()
	assert.Equal(t, "UPLOAD_FAILED", j["code"])
	assert.Equal(t, "Image upload failed", j["message"])
	assert.Equal(t, "object storage timeout", j["details"])
}
