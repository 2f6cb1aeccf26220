package model

import "errors"

// Sentinel errors shared across storage, engine, and HTTP layers.
var (
	// ErrNotFound reports that a requested record or blob key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotConfigured reports that the blob store credentials are missing.
	// Data operations surface it as a configuration error; the process itself
	// still starts.
	ErrNotConfigured = errors.New("blob store not configured")
)
