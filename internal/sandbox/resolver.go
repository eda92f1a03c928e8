// Package sandbox confines filesystem access to a configured set of
// allowed directory roots. The Resolver canonicalizes caller-supplied
// paths, proves containment inside an allowed root and outside every
// excluded subtree, and applies the hidden-file policy. Every discovered
// entry during traversal and search is re-validated through the same
// pipeline, because a subdirectory may itself be a symlink escaping the
// sandbox.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Options configures a Resolver.
type Options struct {
	// AllowedPaths are the directory roots under which access is
	// permitted. Entries that do not exist at construction time are
	// dropped. At least one entry must survive cleanup.
	AllowedPaths []string

	// ExcludePaths deny access to any path contained in them, even when
	// the path is also inside an allowed root.
	ExcludePaths []string

	// HideHidden suppresses hidden entries (dot-prefixed on POSIX,
	// hidden attribute on Windows).
	HideHidden bool

	// Logger for structured logging. Defaults to zap.NewNop().
	Logger *zap.Logger
}

// Resolver validates paths against the sandbox configuration. The
// configuration is immutable after construction, so a single Resolver is
// safe for concurrent use.
type Resolver struct {
	allowedPaths []string
	excludePaths []string
	showHidden   bool
	logger       *zap.Logger
}

// NewResolver builds a Resolver from options. Configured allowed roots
// that do not exist are dropped with a warning; an empty allowed set
// after cleanup is an error.
func NewResolver(opts Options) (*Resolver, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	allowed := cleanPathList(opts.AllowedPaths)
	if dropped := len(opts.AllowedPaths) - len(allowed); dropped > 0 {
		logger.Warn("dropped non-existent allowed paths",
			zap.Int("dropped", dropped),
			zap.Int("remaining", len(allowed)))
	}
	if len(allowed) == 0 {
		return nil, ErrNoAllowedPaths
	}

	return &Resolver{
		allowedPaths: allowed,
		excludePaths: cleanPathList(opts.ExcludePaths),
		showHidden:   !opts.HideHidden,
		logger:       logger,
	}, nil
}

// AllowedPaths returns the canonical allowed roots in configured order.
func (r *Resolver) AllowedPaths() []string {
	out := make([]string, len(r.allowedPaths))
	copy(out, r.allowedPaths)
	return out
}

// ExcludePaths returns the canonical excluded paths.
func (r *Resolver) ExcludePaths() []string {
	out := make([]string, len(r.excludePaths))
	copy(out, r.excludePaths)
	return out
}

// ShowHidden reports whether hidden entries are visible under the
// configured policy.
func (r *Resolver) ShowHidden() bool {
	return r.showHidden
}

// Resolve canonicalizes input and proves it lies inside the sandbox.
//
// Empty, "." and "./" inputs resolve to the first allowed root. A
// leading ~ is expanded. Absolute inputs are canonicalized directly;
// relative inputs are tried against each allowed root in configured
// order, taking the first candidate that exists on disk. Relative paths
// are never resolved against the process working directory.
//
// Symlinks are fully expanded before the containment check so that a
// link inside an allowed root pointing outside it cannot bypass the
// sandbox. Failures wrap ErrNotFound or ErrPermissionDenied.
func (r *Resolver) Resolve(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || trimmed == "." || trimmed == "./" {
		trimmed = r.allowedPaths[0]
	}
	trimmed = expandHome(trimmed)

	var candidate string
	if filepath.IsAbs(trimmed) {
		candidate = filepath.Clean(trimmed)
	} else {
		for _, root := range r.allowedPaths {
			cand := filepath.Join(root, trimmed)
			if _, err := os.Stat(cand); err == nil {
				candidate = cand
				break
			}
		}
	}

	if candidate == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, input)
	}
	if _, err := os.Stat(candidate); err != nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, input)
	}

	real, err := canonicalize(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, input)
	}

	if !r.insideAllowed(real) {
		return "", fmt.Errorf("%w: %q is outside allowed directories", ErrPermissionDenied, real)
	}
	if r.insideExcluded(real) {
		return "", fmt.Errorf("%w: %q is excluded", ErrPermissionDenied, real)
	}
	if !r.showHidden && isHidden(real) {
		return "", fmt.Errorf("%w: %q is hidden", ErrPermissionDenied, real)
	}

	return real, nil
}

// IsAllowed runs the full resolution pipeline as a boolean filter.
// Traversal and search re-validate each discovered entry through it.
func (r *Resolver) IsAllowed(path string) bool {
	if path == "" {
		return false
	}
	if !r.showHidden && isHidden(path) {
		return false
	}
	_, err := r.Resolve(path)
	return err == nil
}

func (r *Resolver) insideAllowed(path string) bool {
	for _, root := range r.allowedPaths {
		if Contains(root, path) {
			return true
		}
	}
	return false
}

func (r *Resolver) insideExcluded(path string) bool {
	for _, ex := range r.excludePaths {
		if Contains(ex, path) {
			return true
		}
	}
	return false
}
