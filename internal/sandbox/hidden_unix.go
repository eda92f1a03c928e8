//go:build !windows

package sandbox

import (
	"path/filepath"
	"strings"
)

// isHidden reports whether the leaf of path is a hidden entry. On POSIX
// systems a dot prefix marks hidden files.
func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
