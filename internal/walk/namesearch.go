package walk

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/fyrsmithlabs/filesearchd/internal/sandbox"
)

// NameSearchRequest configures one name search.
type NameSearchRequest struct {
	// Patterns are the inclusion regexes, tested against entry names
	// with OR semantics: the first match wins.
	Patterns []string

	// ExcludePatterns are tested against each directory's full path
	// before descending; a match prunes the whole subtree.
	ExcludePatterns []string

	// BasePath is the search root. Empty resolves to the first allowed
	// root.
	BasePath string

	// ShowHidden includes hidden entries, subject to the sandbox
	// hidden-file policy.
	ShowHidden bool

	// TimeLimit bounds the search's wall clock. Zero selects the
	// configured default; negative disables the bound.
	TimeLimit time.Duration

	// MaxDepth bounds recursion the same way as ListRequest.MaxDepth.
	MaxDepth int

	// Mode selects BFS or DFS worklist ordering.
	Mode Mode

	// AbsolutePaths emits absolute paths instead of root-relative ones.
	AbsolutePaths bool
}

// NameSearchResult is the outcome of one name search.
type NameSearchResult struct {
	Entries      []string
	Elapsed      time.Duration
	TimeExceeded bool
}

// SearchNames walks the subtree under req.BasePath and collects
// non-directory entries whose name matches any inclusion pattern.
// Pattern compilation failures fail the whole call before any
// filesystem access.
func (w *Walker) SearchNames(req NameSearchRequest) (NameSearchResult, error) {
	include, err := compilePatterns(req.Patterns, "patterns")
	if err != nil {
		return NameSearchResult{}, err
	}
	exclude, err := compilePatterns(req.ExcludePatterns, "exclude_patterns")
	if err != nil {
		return NameSearchResult{}, err
	}

	root, err := w.resolver.Resolve(req.BasePath)
	if err != nil {
		return NameSearchResult{}, err
	}

	showHidden := req.ShowHidden && w.resolver.ShowHidden()
	clock := newBudgetClock(w.effectiveTimeLimit(req.TimeLimit))

	var res NameSearchResult

	var queue deque[workItem]
	queue.pushBack(workItem{dir: root, depth: 0})

	for queue.len() > 0 {
		item := w.pop(&queue, req.Mode)

		// An exclude match on the directory path prunes the whole
		// subtree, not just the directory's own entries.
		if matchesAny(exclude, item.dir) || !w.resolver.IsAllowed(item.dir) {
			continue
		}

		if clock.expired() {
			res.TimeExceeded = true
			break
		}

		entries, err := os.ReadDir(item.dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			full := filepath.Join(item.dir, entry.Name())
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
				continue
			}

			if !showHidden && hiddenName(entry.Name()) {
				continue
			}
			if matchesAny(include, entry.Name()) {
				res.Entries = append(res.Entries, w.emitPath(full, root, req.AbsolutePaths))
			}
		}
	}

	sort.Strings(res.Entries)
	res.Elapsed = clock.elapsed()
	return res, nil
}

// compilePatterns compiles a regex set, wrapping failures with
// sandbox.ErrInvalidPattern so the caller can fail the whole request.
func compilePatterns(patterns []string, field string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w in %s: %v", sandbox.ErrInvalidPattern, field, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
