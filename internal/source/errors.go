package source

import (
	"fmt"

	"github.com/GldzzPro/graph-sync/internal/types"
)

// Remote source error codes
const (
	ErrCodeSourceTimeout     types.ErrorCode = "SOURCE_TIMEOUT"
	ErrCodeSourceHTTPStatus  types.ErrorCode = "SOURCE_HTTP_STATUS"
	ErrCodeSourceRPCError    types.ErrorCode = "SOURCE_RPC_ERROR"
	ErrCodeSourceBadResponse types.ErrorCode = "SOURCE_BAD_RESPONSE"
	ErrCodeSourceUnhealthy   types.ErrorCode = "SOURCE_UNHEALTHY"
)

// CallErrorKind distinguishes the failure modes of one remote call.
type CallErrorKind string

const (
	// CallErrorTimeout marks calls that exceeded their fixed deadline.
	CallErrorTimeout CallErrorKind = "timeout"

	// CallErrorHTTPStatus marks non-2xx HTTP responses and transport errors.
	CallErrorHTTPStatus CallErrorKind = "http_status"

	// CallErrorApplication marks responses whose envelope carried an error
	// field: the remote reached the application layer and refused the call.
	CallErrorApplication CallErrorKind = "application"
)

// RemoteCallError is the typed failure of one remote call. It is per-source
// and never fatal to the run; retry policy, if any, belongs to the caller.
type RemoteCallError struct {
	Source  string
	Kind    CallErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RemoteCallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source %s: %s (%s): %v", e.Source, e.Message, e.Kind, e.Cause)
	}
	return fmt.Sprintf("source %s: %s (%s)", e.Source, e.Message, e.Kind)
}

// Unwrap returns the underlying cause error.
func (e *RemoteCallError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure is transient. Only timeouts qualify:
// HTTP and application failures repeat until something changes on the remote.
func (e *RemoteCallError) Retryable() bool {
	return e.Kind == CallErrorTimeout
}

// Code maps the call failure kind onto the shared error-code taxonomy.
func (e *RemoteCallError) Code() types.ErrorCode {
	switch e.Kind {
	case CallErrorTimeout:
		return ErrCodeSourceTimeout
	case CallErrorHTTPStatus:
		return ErrCodeSourceHTTPStatus
	default:
		return ErrCodeSourceRPCError
	}
}
