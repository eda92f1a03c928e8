package sandbox

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Contains reports whether target is equal to, or a descendant of, base.
// Both paths are compared on separator boundaries so that /foo does not
// match /foobar. Comparison is case-insensitive only on platforms whose
// filesystems are conventionally case-insensitive.
func Contains(base, target string) bool {
	if base == "" || target == "" {
		return false
	}

	baseStr := filepath.Clean(base)
	targetStr := filepath.Clean(target)

	if caseInsensitiveFS() {
		baseStr = strings.ToLower(baseStr)
		targetStr = strings.ToLower(targetStr)
	}

	sep := string(filepath.Separator)
	baseStr = strings.TrimRight(baseStr, sep) + sep
	targetStr = strings.TrimRight(targetStr, sep) + sep

	return strings.HasPrefix(targetStr, baseStr)
}

func caseInsensitiveFS() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}

// canonicalize resolves a path to its absolute form with all symlinks
// expanded. When the path (or a component) does not exist, symlink
// expansion falls back to the cleaned absolute path so that callers can
// still validate paths that are about to fail an existence check.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return filepath.Clean(abs), nil
	}
	return real, nil
}

// cleanPathList canonicalizes a configured path list, silently dropping
// entries that do not exist. Returned paths are absolute with symlinks
// expanded so later containment checks compare like with like.
func cleanPathList(paths []string) []string {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		p = expandHome(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		real, err := canonicalize(p)
		if err != nil {
			continue
		}
		cleaned = append(cleaned, real)
	}
	return cleaned
}

// expandHome replaces a leading ~ or ~/ with the current user's home
// directory. Paths for other users (~bob) are returned unchanged.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
