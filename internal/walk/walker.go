// Package walk implements bounded directory traversal and name search
// over a sandboxed filesystem. Walks are iterative over an explicit
// deque worklist, never language-level recursion, so depth stays bounded
// on pathological trees. Every bound (depth, count, wall clock) halts
// the walk as a normal termination mode reported by flags, not errors.
package walk

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/filesearchd/internal/sandbox"
)

// Walker traverses directory subtrees confined by a sandbox.Resolver.
// A Walker is immutable after construction and safe for concurrent use;
// each call owns its own worklist and result accumulator.
type Walker struct {
	resolver         *sandbox.Resolver
	defaultTimeLimit time.Duration
	logger           *zap.Logger
}

// NewWalker creates a Walker. defaultTimeLimit applies when a request
// leaves its time limit zero; a negative request limit disables the
// bound.
func NewWalker(resolver *sandbox.Resolver, defaultTimeLimit time.Duration, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		resolver:         resolver,
		defaultTimeLimit: defaultTimeLimit,
		logger:           logger,
	}
}

// ListRequest configures one traversal.
type ListRequest struct {
	// BaseDir is the traversal root. Empty resolves to the first
	// allowed root.
	BaseDir string

	// ShowHidden includes hidden entries. The sandbox hidden-file
	// policy still wins: when hiding is configured globally this flag
	// has no effect.
	ShowHidden bool

	// Limit caps the number of emitted entries. Negative means
	// unlimited.
	Limit int

	// TimeLimit bounds the walk's wall clock. Zero selects the
	// configured default; negative disables the bound.
	TimeLimit time.Duration

	// MaxDepth bounds recursion: 0 lists only the root's entries, N
	// descends N levels below the root, negative is unlimited.
	MaxDepth int

	// Mode selects BFS or DFS ordering of the shared worklist.
	Mode Mode

	// StartFrom skips the first N sorted entries, at the root level
	// only. Skipped root-level directories are never descended into.
	StartFrom int

	// AbsolutePaths emits absolute paths instead of root-relative ones.
	AbsolutePaths bool

	// FilesOnly restricts output to plain files. Directories are still
	// enqueued for traversal.
	FilesOnly bool
}

// ListResult is the outcome of one traversal. Partial results with a
// flag set are valid outputs, not errors.
type ListResult struct {
	Entries       []string
	Elapsed       time.Duration
	LimitExceeded bool
	TimeExceeded  bool
}

type workItem struct {
	dir   string
	depth int
}

// List walks the subtree under req.BaseDir and returns a globally
// sorted listing. Discovered entries are each re-validated through the
// sandbox; denied or vanished entries are skipped silently. Unreadable
// directories never abort the walk.
func (w *Walker) List(req ListRequest) (ListResult, error) {
	root, err := w.resolver.Resolve(req.BaseDir)
	if err != nil {
		return ListResult{}, err
	}

	showHidden := req.ShowHidden && w.resolver.ShowHidden()
	clock := newBudgetClock(w.effectiveTimeLimit(req.TimeLimit))

	var res ListResult
	count := 0

	var queue deque[workItem]
	queue.pushBack(workItem{dir: root, depth: 0})

	for queue.len() > 0 {
		item := w.pop(&queue, req.Mode)

		entries, err := os.ReadDir(item.dir)
		if err != nil {
			continue
		}

		names := visibleNames(entries, showHidden)
		if item.dir == root && req.StartFrom > 0 {
			if req.StartFrom >= len(names) {
				names = nil
			} else {
				names = names[req.StartFrom:]
			}
		}

		for _, name := range names {
			full := filepath.Join(item.dir, name)
			if !w.resolver.IsAllowed(full) {
				continue
			}
			info, err := os.Stat(full)
			if err != nil {
				continue
			}

			if info.IsDir() {
				if req.MaxDepth < 0 || item.depth < req.MaxDepth {
					queue.pushBack(workItem{dir: full, depth: item.depth + 1})
				}
				if req.FilesOnly {
					continue
				}
			}
			if req.FilesOnly && !info.Mode().IsRegular() {
				continue
			}

			res.Entries = append(res.Entries, w.emitPath(full, root, req.AbsolutePaths))
			count++

			if req.Limit >= 0 && count >= req.Limit {
				res.LimitExceeded = true
				break
			}
			if clock.expired() {
				res.TimeExceeded = true
				break
			}
		}
		if res.LimitExceeded || res.TimeExceeded {
			break
		}
	}

	// BFS/DFS discovery order does not match global sort order.
	sort.Strings(res.Entries)
	res.Elapsed = clock.elapsed()
	return res, nil
}

func (w *Walker) pop(q *deque[workItem], mode Mode) workItem {
	if mode == ModeDFS {
		return q.popBack()
	}
	return q.popFront()
}

func (w *Walker) effectiveTimeLimit(limit time.Duration) time.Duration {
	if limit == 0 {
		return w.defaultTimeLimit
	}
	return limit
}

func (w *Walker) emitPath(full, root string, absolute bool) string {
	if absolute {
		return full
	}
	rel, err := filepath.Rel(root, full)
	if err != nil {
		return full
	}
	return rel
}

// visibleNames returns the lexicographically sorted entry names of a
// directory, dropping hidden entries unless they are shown.
func visibleNames(entries []os.DirEntry, showHidden bool) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !showHidden && hiddenName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
