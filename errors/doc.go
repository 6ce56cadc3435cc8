// Package errors provides the structured error type used across gitkv.
//
// Every failure surfaced by the store carries an ErrorCode describing what went
// wrong and an ErrorClassification telling the caller whether repeating the
// operation can help. The package stays compatible with the standard library
// (errors.Is, errors.As, errors.Unwrap), so callers can keep matching on the
// underlying cause when they need to.
//
// # Store error kinds
//
// The store reports three failure kinds that callers are expected to branch on:
//
//   - CodeCloneFailed: the remote could not be cloned. No handle was created.
//   - CodeSyncFailed: pulling the latest remote state failed. Retryable.
//   - CodePublishConflict: a commit could not be pushed and was rolled back.
//     Retryable; the usual cause is another writer pushing first.
//
// Example:
//
//	err := repo.Put(ctx, "config/app.yaml", data)
//	switch errors.GetCode(err) {
//	case errors.CodePublishConflict, errors.CodeSyncFailed:
//	    // retry the whole put
//	}
//
// # Context
//
// Metadata can be attached for diagnostics without changing the code:
//
//	err = errors.WithContext(err, "key", key)
//
// Errors are immutable; every helper returns a new value.
package errors
