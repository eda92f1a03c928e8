package content

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/fyrsmithlabs/filesearchd/internal/sandbox"
)

// FileResult is the per-file outcome of a content search: matching
// context blocks on success, a placeholder message on failure. Exactly
// one of the fields is populated.
type FileResult struct {
	Blocks []string `json:"blocks,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// SearchResult is the outcome of one batch content search. Files with
// zero matching lines are omitted entirely; files the time budget never
// reached are absent rather than errored.
type SearchResult struct {
	Files        map[string]FileResult
	Elapsed      time.Duration
	TimeExceeded bool
}

// SearchRequest configures one content search.
type SearchRequest struct {
	// Paths are the files to search, processed in order.
	Paths []string

	// Patterns are the inclusion regexes; a line matching any of them
	// produces a context block.
	Patterns []string

	// ContextLines is the number of lines captured before and after
	// each matching line.
	ContextLines int

	// TimeLimit bounds the search's wall clock, checked before each
	// file. Zero selects the configured default; negative disables the
	// bound.
	TimeLimit time.Duration
}

// SearchContents searches each file for lines matching any pattern.
// Pattern compilation failures fail the whole call up front; every
// per-file failure is captured in that file's result slot instead.
//
// Each matching line yields its own block spanning contextLines before
// and after it. Overlapping blocks are intentionally not merged or
// deduplicated.
func (s *Searcher) SearchContents(req SearchRequest) (SearchResult, error) {
	include := make([]*regexp.Regexp, 0, len(req.Patterns))
	for _, p := range req.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return SearchResult{}, fmt.Errorf("%w in patterns: %v", sandbox.ErrInvalidPattern, err)
		}
		include = append(include, re)
	}

	limit := s.effectiveTimeLimit(req.TimeLimit)
	start := time.Now()
	res := SearchResult{Files: make(map[string]FileResult)}

	for _, p := range req.Paths {
		if limit >= 0 && time.Since(start) > limit {
			res.TimeExceeded = true
			break
		}

		resolved, err := s.resolver.Resolve(p)
		if err != nil {
			res.Files[p] = FileResult{Error: placeholderForResolveError(err)}
			continue
		}

		if info, err := os.Stat(resolved); err == nil && info.IsDir() {
			res.Files[resolved] = FileResult{Error: placeholderIsDirectory}
			continue
		}

		data, err := os.ReadFile(resolved)
		if err != nil {
			res.Files[resolved] = FileResult{Error: placeholderForReadError(err)}
			continue
		}

		blocks := matchBlocks(splitLines(decode(data)), include, req.ContextLines)
		if len(blocks) > 0 {
			res.Files[resolved] = FileResult{Blocks: blocks}
		}
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

// matchBlocks extracts a context block for every matching line. Block
// boundaries are clamped to the file, spanning max(0, i-ctx) up to
// min(len(lines), i+ctx+1).
func matchBlocks(lines []string, include []*regexp.Regexp, contextLines int) []string {
	if contextLines < 0 {
		contextLines = 0
	}
	var blocks []string
	for i, line := range lines {
		matched := false
		for _, re := range include {
			if re.MatchString(line) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		lo := i - contextLines
		if lo < 0 {
			lo = 0
		}
		hi := i + contextLines + 1
		if hi > len(lines) {
			hi = len(lines)
		}

		var block string
		for _, l := range lines[lo:hi] {
			block += l
		}
		blocks = append(blocks, block)
	}
	return blocks
}
