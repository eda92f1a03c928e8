package sandbox

import "errors"

// Sentinel errors for path access decisions. Callers classify failures
// with errors.Is; batch operations convert them to per-item placeholders
// instead of aborting.
var (
	// ErrNotFound indicates the path does not exist after all resolution
	// attempts (absolute, or relative against each allowed root).
	ErrNotFound = errors.New("path not found in allowed directories")

	// ErrPermissionDenied indicates the canonical path is outside every
	// allowed root, inside an excluded path, or hidden while hidden
	// entries are suppressed.
	ErrPermissionDenied = errors.New("access denied")

	// ErrInvalidPattern indicates a regex pattern failed to compile.
	// Pattern errors fail the whole call before any filesystem access.
	ErrInvalidPattern = errors.New("invalid regex pattern")

	// ErrNotADirectory indicates a directory operation was given a file.
	ErrNotADirectory = errors.New("not a directory")

	// ErrIsADirectory indicates a file operation was given a directory.
	ErrIsADirectory = errors.New("is a directory")

	// ErrNoAllowedPaths indicates the resolver was constructed without
	// any existing allowed root.
	ErrNoAllowedPaths = errors.New("no allowed paths configured")
)
