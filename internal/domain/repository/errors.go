package repository

import "errors"

var (
	// ErrBatchNotFound is returned when a batch cannot be found.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrDuplicateBatch is returned when attempting to create a batch that already exists.
	ErrDuplicateBatch = errors.New("batch already exists")

	// ErrObjectNotFound is returned when a storage object cannot be found.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned when the configured storage bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)
