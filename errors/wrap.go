package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps err with a code and message while preserving it for errors.Is
// and errors.As.
//
// The classification always follows the new code: wrapping a permanent git
// failure as CodeSyncFailed makes the result retryable, because the handle
// can be used again after a failed pull. Context attached to a wrapped
// PlatformError is carried over.
//
// Returns nil if err is nil.
//
// Example:
//
//	if err := client.Pull(ctx, dir); err != nil {
//	    return errors.Wrap(err, errors.CodeSyncFailed, "failed to synchronize working copy")
//	}
func Wrap(err error, code ErrorCode, message string) PlatformError {
	if err == nil {
		return nil
	}

	var inherited map[string]interface{}
	var platformErr PlatformError
	if errors.As(err, &platformErr) {
		inherited = platformErr.Context()
	}

	return &platformError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
		context:        inherited,
		cause:          err,
	}
}

// Wrapf wraps an error with a formatted message.
//
// Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) PlatformError {
	if err == nil {
		return nil
	}

	return Wrap(err, code, fmt.Sprintf(format, args...))
}
