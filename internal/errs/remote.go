package errs

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies a rejected store operation.
type Kind string

const (
	KindNotFound         Kind = "not-found"
	KindPermissionDenied Kind = "permission-denied"
	KindAlreadyExists    Kind = "already-exists"
	KindUnavailable      Kind = "unavailable"
	KindCancelled        Kind = "cancelled"
	KindUnknown          Kind = "unknown"
)

// RemoteOperationError wraps a failure reported by the document store.
type RemoteOperationError struct {
	ErrorMessage
	Kind      Kind
	Operation string
	Err       error
}

func NewRemoteOperationError(kind Kind, operation, message string, err error) *RemoteOperationError {
	return &RemoteOperationError{
		ErrorMessage: ErrorMessage{Message: message},
		Kind:         kind,
		Operation:    operation,
		Err:          err,
	}
}

func (e *RemoteOperationError) Unwrap() error { return e.Err }

// FromStatus maps a store error to a RemoteOperationError, deriving the kind
// from its gRPC status code.
func FromStatus(operation, message string, err error) *RemoteOperationError {
	return NewRemoteOperationError(kindOf(err), operation, message, err)
}

func kindOf(err error) Kind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	switch status.Code(err) {
	case codes.NotFound:
		return KindNotFound
	case codes.PermissionDenied, codes.Unauthenticated:
		return KindPermissionDenied
	case codes.AlreadyExists:
		return KindAlreadyExists
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted:
		return KindUnavailable
	case codes.Canceled:
		return KindCancelled
	default:
		return KindUnknown
	}
}

// IsNotFound reports whether err is a RemoteOperationError of kind not-found.
func IsNotFound(err error) bool {
	var remote *RemoteOperationError
	return errors.As(err, &remote) && remote.Kind == KindNotFound
}
