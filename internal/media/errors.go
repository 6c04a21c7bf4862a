package media

import (
	"errors"
	"fmt"
)

var (
	// ErrMediaNotFound signals that a filename resolves through no tier.
	ErrMediaNotFound = errors.New("media not found")
	// ErrStorageUnavailable signals the remote origin was unreachable or
	// rejected the upload.
	ErrStorageUnavailable = errors.New("remote storage unavailable")
	// ErrTraversalRejected signals a filename containing path traversal or
	// separator characters.
	ErrTraversalRejected = errors.New("filename rejected")
	// ErrPersistence signals a metadata write failure after the remote
	// transfer already succeeded.
	ErrPersistence = errors.New("metadata persistence failed")
)

// ValidationError names the upload constraint a buffer violated. It is
// always raised before any network call.
type ValidationError struct {
	Constraint string // "type" or "size"
	Detail     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("upload validation failed (%s): %s", e.Constraint, e.Detail)
}
