package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("message body must not be empty")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
}

func TestTransportError(t *testing.T) {
	err := NewTransportError("failed to reach the message store")

	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
	assert.Equal(t, "TRANSPORT_ERROR", err.Code)
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("CONVERSATION_DELETED", "conversation has been deleted")

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
}

func TestFromError_WrapsPlainErrors(t *testing.T) {
	appErr := FromError(errors.New("something broke"))

	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
}

func TestFromError_PassesAppErrorsThrough(t *testing.T) {
	original := NewValidationError("bad input")
	assert.Same(t, original, FromError(original))
}

func TestGetHelpers(t *testing.T) {
	err := NewForbiddenError("INSUFFICIENT_ROLE", "nope")

	assert.Equal(t, http.StatusForbidden, GetStatusCode(err))
	assert.Equal(t, "INSUFFICIENT_ROLE", GetErrorCode(err))
	assert.Equal(t, "nope", GetErrorMessage(err))

	plain := errors.New("plain")
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(plain))
}

func TestWithDetails(t *testing.T) {
	err := NewValidationError("bad input").WithDetails(map[string]string{"field": "body"})
	assert.Equal(t, map[string]string{"field": "body"}, err.Details)
}
