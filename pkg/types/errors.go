package types

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, caller-visible classification of a failure.
// Every error surfaced through the tool layer maps to exactly one kind.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation_error"
	KindCollectionNotFound ErrorKind = "collection_not_found"
	KindModelMismatch      ErrorKind = "model_mismatch"
	KindModelLoad          ErrorKind = "model_load_error"
	KindStorage            ErrorKind = "storage_error"
	KindInternal           ErrorKind = "internal_error"
)

// ValidationError indicates bad caller input. It is always recoverable and
// never reaches the store.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CollectionNotFoundError indicates an operation referenced a collection
// that does not exist.
type CollectionNotFoundError struct {
	Collection string
}

func (e *CollectionNotFoundError) Error() string {
	return fmt.Sprintf("collection %q not found", e.Collection)
}

// ModelMismatchError indicates a get-or-create requested a different
// embedding model than the one a collection is bound to. A collection's
// bound model never changes after creation.
type ModelMismatchError struct {
	Collection string
	Bound      string
	Requested  string
}

func (e *ModelMismatchError) Error() string {
	return fmt.Sprintf("collection %q is bound to model %q, requested %q",
		e.Collection, e.Bound, e.Requested)
}

// ModelLoadError indicates the embedding backend could not be loaded.
type ModelLoadError struct {
	ModelID string
	Cause   error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load embedding model %q: %v", e.ModelID, e.Cause)
}

func (e *ModelLoadError) Unwrap() error { return e.Cause }

// StorageError indicates a persistent index or catalog I/O failure.
// The operation is aborted; the caller may retry.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// InternalError is the explicit form of an unclassified failure. The
// message is safe to surface; detail stays in the server log.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return e.Message
}

// KindOf classifies an error into its stable kind. Anything that is not a
// member of the closed taxonomy is an internal error.
func KindOf(err error) ErrorKind {
	var (
		ve *ValidationError
		ce *CollectionNotFoundError
		me *ModelMismatchError
		le *ModelLoadError
		se *StorageError
	)
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ce):
		return KindCollectionNotFound
	case errors.As(err, &me):
		return KindModelMismatch
	case errors.As(err, &le):
		return KindModelLoad
	case errors.As(err, &se):
		return KindStorage
	default:
		return KindInternal
	}
}
