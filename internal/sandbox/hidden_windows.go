//go:build windows

package sandbox

import "syscall"

// isHidden reports whether the leaf of path carries the Windows hidden
// attribute. Lookup failures are treated as not hidden.
func isHidden(path string) bool {
	p, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := syscall.GetFileAttributes(p)
	if err != nil {
		return false
	}
	return attrs&syscall.FILE_ATTRIBUTE_HIDDEN != 0
}
