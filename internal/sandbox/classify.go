package sandbox

import "os"

// Path kind labels reported by Classify. The permission-denied label
// matches the placeholder used by batch read operations.
const (
	KindNotFound  = "not found"
	KindDirectory = "directory"
	KindSymlink   = "symbolic link"
	KindFile      = "file"
	KindDenied    = "[Permission Denied]"
	KindUnknown   = "unknown"
)

// PathKind pairs an input path with its classification.
type PathKind struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Classify reports the kind of each input path. Non-existence is
// disclosed without requiring sandbox membership; every other
// classification requires the path to pass the full resolution pipeline.
// Symlinks to directories classify as directories; other symlinks
// (including broken ones that still Lstat) classify as symbolic links.
func (r *Resolver) Classify(paths []string) []PathKind {
	out := make([]PathKind, 0, len(paths))
	for _, p := range paths {
		out = append(out, PathKind{Path: p, Kind: r.classifyOne(p)})
	}
	return out
}

func (r *Resolver) classifyOne(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return KindNotFound
	}
	if !r.IsAllowed(path) {
		return KindDenied
	}
	if info.IsDir() {
		return KindDirectory
	}
	if lst, err := os.Lstat(path); err == nil && lst.Mode()&os.ModeSymlink != 0 {
		return KindSymlink
	}
	if info.Mode().IsRegular() {
		return KindFile
	}
	return KindUnknown
}
