// Package apperr defines sentinel errors shared across the pipeline stages.
package apperr

import "errors"

var (
	// ErrNotFound marks a missing document, ledger row, or referenced path.
	ErrNotFound = errors.New("not found")

	// ErrNotReady marks a document whose status gate rejects the requested stage.
	ErrNotReady = errors.New("document not ready")

	// ErrUnsafePath marks a relative path that escapes its configured root.
	ErrUnsafePath = errors.New("path escapes root")
)
