package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an APIError for status mapping and logging.
type ErrorKind int

const (
	KindMalformedRequest ErrorKind = iota
	KindInvalidAttribute
	KindUnknownAction
	KindQueueNotFound
	KindQueueAlreadyExists
	KindStoreFailure
	KindSerializationFailure
)

var kindNames = map[ErrorKind]string{
	KindMalformedRequest:     "MalformedRequest",
	KindInvalidAttribute:     "InvalidAttribute",
	KindUnknownAction:        "UnknownAction",
	KindQueueNotFound:        "QueueNotFound",
	KindQueueAlreadyExists:   "QueueAlreadyExists",
	KindStoreFailure:         "StoreFailure",
	KindSerializationFailure: "SerializationFailure",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ServerSide reports whether the kind is the server's fault (5xx).
func (k ErrorKind) ServerSide() bool {
	return k == KindStoreFailure || k == KindSerializationFailure
}

// APIError is a custom error type that holds SQS-compatible error info.
// By placing it in its own package, we avoid import cycles.
type APIError struct {
	Kind    ErrorKind
	Code    string
	Message string
	// Err is the underlying cause, if any. It is logged, never sent to clients.
	Err error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status.
func (e *APIError) StatusCode() int {
	if e.Kind.ServerSide() {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// FaultType is the query-protocol <Type> element: Sender or Receiver.
func (e *APIError) FaultType() string {
	if e.Kind.ServerSide() {
		return "Receiver"
	}
	return "Sender"
}

func New(kind ErrorKind, code, msg string) *APIError {
	return &APIError{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrorKind, code, msg string, err error) *APIError {
	return &APIError{Kind: kind, Code: code, Message: msg, Err: err}
}

func MalformedRequest(code, msg string) *APIError {
	return New(KindMalformedRequest, code, msg)
}

func QueueNotFound() *APIError {
	return New(KindQueueNotFound, "AWS.SimpleQueueService.NonExistentQueue", "The specified queue does not exist.")
}

func StoreFailure(msg string, err error) *APIError {
	return Wrap(KindStoreFailure, "InternalFailure", msg, err)
}

// AsAPIError returns err as an *APIError, classifying anything unknown as a store failure.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return StoreFailure("Internal failure", err)
}
