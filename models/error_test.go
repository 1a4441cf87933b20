package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Classification(t *testing.T) {
	tests := []struct {
		kind   ErrorKind
		status int
		fault  string
	}{
		{KindMalformedRequest, http.StatusBadRequest, "Sender"},
		{KindInvalidAttribute, http.StatusBadRequest, "Sender"},
		{KindUnknownAction, http.StatusBadRequest, "Sender"},
		{KindQueueNotFound, http.StatusBadRequest, "Sender"},
		{KindQueueAlreadyExists, http.StatusBadRequest, "Sender"},
		{KindStoreFailure, http.StatusInternalServerError, "Receiver"},
		{KindSerializationFailure, http.StatusInternalServerError, "Receiver"},
	}
	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			e := New(tc.kind, "Code", "message")
			assert.Equal(t, tc.status, e.StatusCode())
			assert.Equal(t, tc.fault, e.FaultType())
		})
	}
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}

func TestAsAPIError(t *testing.T) {
	cause := errors.New("disk full")

	wrapped := fmt.Errorf("handler: %w", QueueNotFound())
	apiErr := AsAPIError(wrapped)
	assert.Equal(t, KindQueueNotFound, apiErr.Kind)
	assert.Equal(t, "AWS.SimpleQueueService.NonExistentQueue", apiErr.Code)

	apiErr = AsAPIError(cause)
	assert.Equal(t, KindStoreFailure, apiErr.Kind)
	assert.Equal(t, "InternalFailure", apiErr.Code)
	assert.ErrorIs(t, apiErr, cause)
	assert.Contains(t, apiErr.Error(), "disk full")
}
