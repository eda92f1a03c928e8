// Package content implements batch file reading and regex content
// search over sandboxed files. Batch operations never abort on a
// per-item failure: each failing path is represented by a descriptive
// placeholder in its own result slot.
package content

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/filesearchd/internal/sandbox"
)

// Placeholder strings substituted for unreadable files in batch
// results. These are part of the wire contract.
const (
	placeholderDenied      = "[Permission denied]"
	placeholderNotFound    = "[File not found]"
	placeholderIsDirectory = "[Error: Is a directory. Please provide a file path.]"
)

// Searcher reads and searches files confined by a sandbox.Resolver.
// Immutable after construction; safe for concurrent use.
type Searcher struct {
	resolver         *sandbox.Resolver
	defaultTimeLimit time.Duration
	logger           *zap.Logger
}

// NewSearcher creates a Searcher. defaultTimeLimit applies when a
// request leaves its time limit zero; negative disables the bound.
func NewSearcher(resolver *sandbox.Resolver, defaultTimeLimit time.Duration, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		resolver:         resolver,
		defaultTimeLimit: defaultTimeLimit,
		logger:           logger,
	}
}

// ReadResult is the outcome of one batch read.
type ReadResult struct {
	// Contents maps each file's path to its text, or to a placeholder
	// string when the file could not be read. Successful entries are
	// keyed by the resolved path, failed ones by the input path.
	Contents map[string]string
	Elapsed  time.Duration
}

// ReadFiles reads each file as text. Undecodable bytes are substituted
// with the replacement rune, never fatal. One bad path cannot prevent
// retrieval of the others.
func (s *Searcher) ReadFiles(paths []string) ReadResult {
	start := time.Now()
	contents := make(map[string]string, len(paths))

	for _, p := range paths {
		resolved, err := s.resolver.Resolve(p)
		if err != nil {
			contents[p] = placeholderForResolveError(err)
			continue
		}

		data, err := os.ReadFile(resolved)
		if err != nil {
			contents[resolved] = placeholderForReadError(err)
			continue
		}
		contents[resolved] = decode(data)
	}

	return ReadResult{Contents: contents, Elapsed: time.Since(start)}
}

func placeholderForResolveError(err error) string {
	switch {
	case errors.Is(err, sandbox.ErrNotFound):
		return placeholderNotFound
	case errors.Is(err, sandbox.ErrPermissionDenied):
		return placeholderDenied
	default:
		return fmt.Sprintf("[Error: %v]", err)
	}
}

func placeholderForReadError(err error) string {
	switch {
	case os.IsNotExist(err):
		return placeholderNotFound
	case os.IsPermission(err):
		return placeholderDenied
	default:
		return fmt.Sprintf("[Error: %v]", err)
	}
}

// decode converts raw bytes to text, replacing invalid UTF-8 sequences.
func decode(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}

// splitLines splits text into lines that keep their trailing newline,
// so joined context blocks reproduce the original bytes.
func splitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func (s *Searcher) effectiveTimeLimit(limit time.Duration) time.Duration {
	if limit == 0 {
		return s.defaultTimeLimit
	}
	return limit
}
