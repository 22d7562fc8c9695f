package errs

import "errors"

// Sentinel errors shared by the command and query usecases
var (
	ErrRequestNotFound = errors.New("request not found")

	// Operation errors
	ErrStoreOperationFailed = errors.New("store operation failed")
)
