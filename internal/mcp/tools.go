package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/filesearchd/internal/content"
	"github.com/fyrsmithlabs/filesearchd/internal/walk"
)

// withMetrics wraps a tool handler with invocation instruments.
func withMetrics[In, Out any](
	s *Server,
	tool string,
	h func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error),
) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		start := time.Now()
		res, out, err := h(ctx, req, in)
		s.metrics.ObserveCall(tool, time.Since(start), err)
		return res, out, err
	}
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_allowed_paths",
		Description: "Retrieve the list of allowed root directories this server is permitted to access. Useful for understanding the scope of directories that can be browsed, searched, or read.",
	}, withMetrics(s, "get_allowed_paths", s.handleGetAllowedPaths))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "classify_paths",
		Description: "Report the kind of each given path: not found, file, directory, symbolic link, or permission denied. Non-existence is reported even for paths outside the sandbox; any other detail requires sandbox membership.",
	}, withMetrics(s, "classify_paths", s.handleClassifyPaths))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_file_paths",
		Description: "List file paths in the given directory, including directories and symbolic links. Equivalent to ls. Results are sorted alphabetically.",
	}, withMetrics(s, "list_file_paths", s.handleListFilePaths))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_file_names",
		Description: "Search for files whose name matches any of the given regex patterns, level by level. Be sure to escape special characters.",
	}, withMetrics(s, "search_file_names", s.handleSearchFileNames))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "read_files",
		Description: "Read the contents of the given files as text. Files that cannot be read map to a descriptive placeholder instead of failing the call.",
	}, withMetrics(s, "read_files", s.handleReadFiles))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_file_contents",
		Description: "Search each file for lines matching any of the given regex patterns. Returns, per matching file, a list of line blocks with the requested context. Files that cannot be read map to an error placeholder.",
	}, withMetrics(s, "search_file_contents", s.handleSearchFileContents))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "grep_directory",
		Description: "List files under the given directory, then search each for lines matching any of the given regex patterns. Combines list_file_paths and search_file_contents in one call.",
	}, withMetrics(s, "grep_directory", s.handleGrepDirectory))
}

// durationFromSeconds converts the wire time-limit convention (seconds;
// 0 or absent selects the configured default, negative disables the
// bound) into the engine convention.
func durationFromSeconds(seconds float64) time.Duration {
	if seconds == 0 {
		return 0
	}
	if seconds < 0 {
		return -time.Nanosecond
	}
	return time.Duration(seconds * float64(time.Second))
}

// depthOrDefault applies the wire default of one level below the root
// when the caller omits max_nested_level.
func depthOrDefault(depth *int) int {
	if depth == nil {
		return 1
	}
	return *depth
}

// limitOrUnlimited treats a zero limit as unbounded; -1 already is.
func limitOrUnlimited(limit int) int {
	if limit == 0 {
		return walk.Unlimited
	}
	return limit
}

func countMessage(n int, noun string) string {
	plural := ""
	if n != 1 {
		plural = "s"
	}
	return fmt.Sprintf("%d %s%s retrieved successfully.", n, noun, plural)
}

func textResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

type allowedPathsInput struct{}

type allowedPathsOutput struct {
	Paths []string `json:"paths" jsonschema:"Allowed root directories, masked if masking is enabled"`
}

func (s *Server) handleGetAllowedPaths(ctx context.Context, req *mcp.CallToolRequest, args allowedPathsInput) (*mcp.CallToolResult, allowedPathsOutput, error) {
	out := allowedPathsOutput{Paths: s.masker.MaskAll(s.resolver.AllowedPaths())}
	return textResult("Allowed paths retrieved successfully."), out, nil
}

type classifyInput struct {
	Paths []string `json:"paths" jsonschema:"required,Paths to classify"`
}

type pathKind struct {
	Path string `json:"path"`
	Kind string `json:"kind" jsonschema:"One of: not found, file, directory, symbolic link, [Permission Denied], unknown"`
}

type classifyOutput struct {
	Results []pathKind `json:"results" jsonschema:"Per-path classification, in input order"`
}

func (s *Server) handleClassifyPaths(ctx context.Context, req *mcp.CallToolRequest, args classifyInput) (*mcp.CallToolResult, classifyOutput, error) {
	kinds := s.resolver.Classify(s.masker.UnmaskAll(args.Paths))

	results := make([]pathKind, 0, len(kinds))
	for _, k := range kinds {
		results = append(results, pathKind{Path: s.masker.Mask(k.Path), Kind: k.Kind})
	}

	msg := countMessage(len(results), "path type")
	return textResult(msg), classifyOutput{Results: results}, nil
}

type listInput struct {
	BaseDir       string  `json:"base_dir" jsonschema:"required,Base directory to start from. Empty or '.' means the first allowed root"`
	ShowHidden    bool    `json:"show_hidden,omitempty" jsonschema:"Include hidden files. Ignored when the server hides hidden files globally"`
	Limit         int     `json:"limit,omitempty" jsonschema:"Maximum number of entries to return. -1 or 0 for no limit"`
	TimeLimit     float64 `json:"time_limit,omitempty" jsonschema:"Seconds after which to abort (-1 = no limit, 0 = server default)"`
	MaxDepth      *int    `json:"max_nested_level,omitempty" jsonschema:"Depth to recurse: 0 = only root, 1 = root plus its subdirs (default), -1 = unlimited"`
	Mode          string  `json:"search_mode,omitempty" jsonschema:"Traversal mode: bfs (default) or dfs"`
	StartFrom     int     `json:"start_from,omitempty" jsonschema:"Skip the first N sorted entries at the root level"`
	AbsolutePaths bool    `json:"abs_path,omitempty" jsonschema:"Return absolute paths instead of root-relative ones"`
	FilesOnly     bool    `json:"file_only,omitempty" jsonschema:"Only return plain files"`
}

type listOutput struct {
	Entries        []string `json:"entries" jsonschema:"Matching paths, sorted alphabetically"`
	LimitExceeded  bool     `json:"limit_exceeded" jsonschema:"True when the entry limit stopped the walk"`
	TimeExceeded   bool     `json:"time_exceeded" jsonschema:"True when the time budget stopped the walk"`
	ElapsedSeconds float64  `json:"time_elapsed" jsonschema:"Wall-clock seconds spent"`
}

func (s *Server) handleListFilePaths(ctx context.Context, req *mcp.CallToolRequest, args listInput) (*mcp.CallToolResult, listOutput, error) {
	mode, err := walk.ParseMode(args.Mode)
	if err != nil {
		return nil, listOutput{}, err
	}

	res, err := s.walker.List(walk.ListRequest{
		BaseDir:       s.masker.Unmask(args.BaseDir),
		ShowHidden:    args.ShowHidden,
		Limit:         limitOrUnlimited(args.Limit),
		TimeLimit:     durationFromSeconds(args.TimeLimit),
		MaxDepth:      depthOrDefault(args.MaxDepth),
		Mode:          mode,
		StartFrom:     args.StartFrom,
		AbsolutePaths: args.AbsolutePaths,
		FilesOnly:     args.FilesOnly,
	})
	if err != nil {
		return nil, listOutput{}, err
	}

	out := listOutput{
		Entries:        s.masker.MaskAll(res.Entries),
		LimitExceeded:  res.LimitExceeded,
		TimeExceeded:   res.TimeExceeded,
		ElapsedSeconds: res.Elapsed.Seconds(),
	}

	msg := ""
	if out.LimitExceeded {
		msg = "File limit exceeded. "
	}
	msg += countMessage(len(out.Entries), "file path")
	return textResult(msg), out, nil
}

type nameSearchInput struct {
	Patterns        []string `json:"regex_patterns" jsonschema:"required,Regex patterns to match against file names. A file matching any pattern is included"`
	ExcludePatterns []string `json:"exclude_regex_patterns,omitempty" jsonschema:"Regex patterns tested against directory paths; a match prunes the whole subtree"`
	BasePath        string   `json:"base_path,omitempty" jsonschema:"Directory to start from. Empty means the first allowed root"`
	TimeLimit       float64  `json:"time_limit,omitempty" jsonschema:"Seconds after which to abort (-1 = no limit, 0 = server default)"`
	MaxDepth        *int     `json:"max_nested_level,omitempty" jsonschema:"Depth to recurse: 0 = only root, 1 = root plus its subdirs (default), -1 = unlimited"`
	Mode            string   `json:"search_mode,omitempty" jsonschema:"Traversal mode: bfs (default) or dfs"`
}

type nameSearchOutput struct {
	Entries        []string `json:"entries" jsonschema:"Matching paths, sorted alphabetically"`
	TimeExceeded   bool     `json:"time_exceeded" jsonschema:"True when the time budget stopped the search"`
	ElapsedSeconds float64  `json:"time_elapsed" jsonschema:"Wall-clock seconds spent"`
}

func (s *Server) handleSearchFileNames(ctx context.Context, req *mcp.CallToolRequest, args nameSearchInput) (*mcp.CallToolResult, nameSearchOutput, error) {
	mode, err := walk.ParseMode(args.Mode)
	if err != nil {
		return nil, nameSearchOutput{}, err
	}

	res, err := s.walker.SearchNames(walk.NameSearchRequest{
		Patterns:        args.Patterns,
		ExcludePatterns: args.ExcludePatterns,
		BasePath:        s.masker.Unmask(args.BasePath),
		TimeLimit:       durationFromSeconds(args.TimeLimit),
		MaxDepth:        depthOrDefault(args.MaxDepth),
		Mode:            mode,
		AbsolutePaths:   true,
	})
	if err != nil {
		return nil, nameSearchOutput{}, err
	}

	out := nameSearchOutput{
		Entries:        s.masker.MaskAll(res.Entries),
		TimeExceeded:   res.TimeExceeded,
		ElapsedSeconds: res.Elapsed.Seconds(),
	}

	msg := ""
	if out.TimeExceeded {
		msg = "Time limit exceeded. "
	}
	msg += countMessage(len(out.Entries), "file path")
	return textResult(msg), out, nil
}

type readFilesInput struct {
	Paths []string `json:"file_paths" jsonschema:"required,File paths to read"`
}

type readFilesOutput struct {
	Contents       map[string]string `json:"contents" jsonschema:"File contents keyed by path. Unreadable files map to a descriptive placeholder"`
	ElapsedSeconds float64           `json:"time_elapsed" jsonschema:"Wall-clock seconds spent"`
}

func (s *Server) handleReadFiles(ctx context.Context, req *mcp.CallToolRequest, args readFilesInput) (*mcp.CallToolResult, readFilesOutput, error) {
	res := s.searcher.ReadFiles(s.masker.UnmaskAll(args.Paths))

	out := readFilesOutput{
		Contents:       make(map[string]string, len(res.Contents)),
		ElapsedSeconds: res.Elapsed.Seconds(),
	}
	for p, c := range res.Contents {
		out.Contents[s.masker.Mask(p)] = c
	}

	msg := fmt.Sprintf("Successfully read %d file", len(out.Contents))
	if len(out.Contents) != 1 {
		msg += "s"
	}
	return textResult(msg + "."), out, nil
}

type contentSearchInput struct {
	Paths        []string `json:"file_paths" jsonschema:"required,File paths to search (actual files, not directories)"`
	Patterns     []string `json:"regex_patterns" jsonschema:"required,Regex patterns to match lines against"`
	ContextLines int      `json:"context_lines,omitempty" jsonschema:"Number of context lines before and after each match"`
	TimeLimit    float64  `json:"time_limit,omitempty" jsonschema:"Seconds after which to abort early (-1 = no limit, 0 = server default)"`
}

type fileContentResult struct {
	Blocks []string `json:"blocks,omitempty" jsonschema:"Matching line blocks with context. Overlapping blocks are not merged"`
	Error  string   `json:"error,omitempty" jsonschema:"Placeholder message when the file could not be searched"`
}

type contentSearchOutput struct {
	Files          map[string]fileContentResult `json:"results" jsonschema:"Per-file outcome keyed by path. Files with no matches are omitted"`
	TimeExceeded   bool                         `json:"time_exceeded" jsonschema:"True when the time budget stopped the search"`
	ElapsedSeconds float64                      `json:"time_elapsed" jsonschema:"Wall-clock seconds spent"`
}

func (s *Server) handleSearchFileContents(ctx context.Context, req *mcp.CallToolRequest, args contentSearchInput) (*mcp.CallToolResult, contentSearchOutput, error) {
	res, err := s.searcher.SearchContents(content.SearchRequest{
		Paths:        s.masker.UnmaskAll(args.Paths),
		Patterns:     args.Patterns,
		ContextLines: args.ContextLines,
		TimeLimit:    durationFromSeconds(args.TimeLimit),
	})
	if err != nil {
		return nil, contentSearchOutput{}, err
	}

	out := s.contentSearchOutput(res)
	msg := ""
	if out.TimeExceeded {
		msg = "Time limit exceeded. "
	}
	msg += countMessage(len(out.Files), "file path")
	return textResult(msg), out, nil
}

type grepDirectoryInput struct {
	Patterns     []string `json:"regex_patterns" jsonschema:"required,Regex patterns to match lines against"`
	BaseDir      string   `json:"base_dir" jsonschema:"required,Base directory to start from"`
	ShowHidden   bool     `json:"show_hidden,omitempty" jsonschema:"Include hidden files. Ignored when the server hides hidden files globally"`
	Limit        int      `json:"limit,omitempty" jsonschema:"Maximum number of files to search. -1 or 0 for no limit"`
	MaxDepth     *int     `json:"max_nested_level,omitempty" jsonschema:"Depth to recurse: 0 = only root, 1 = root plus its subdirs (default), -1 = unlimited"`
	StartFrom    int      `json:"start_from,omitempty" jsonschema:"Skip the first N sorted entries at the root level"`
	ContextLines int      `json:"context_lines,omitempty" jsonschema:"Number of context lines before and after each match"`
	TimeLimit    float64  `json:"time_limit,omitempty" jsonschema:"Seconds after which to abort early (-1 = no limit, 0 = server default)"`
}

func (s *Server) handleGrepDirectory(ctx context.Context, req *mcp.CallToolRequest, args grepDirectoryInput) (*mcp.CallToolResult, contentSearchOutput, error) {
	timeLimit := durationFromSeconds(args.TimeLimit)

	listing, err := s.walker.List(walk.ListRequest{
		BaseDir:       s.masker.Unmask(args.BaseDir),
		ShowHidden:    args.ShowHidden,
		Limit:         limitOrUnlimited(args.Limit),
		TimeLimit:     timeLimit,
		MaxDepth:      depthOrDefault(args.MaxDepth),
		Mode:          walk.ModeBFS,
		StartFrom:     args.StartFrom,
		AbsolutePaths: true,
		FilesOnly:     true,
	})
	if err != nil {
		return nil, contentSearchOutput{}, err
	}

	res, err := s.searcher.SearchContents(content.SearchRequest{
		Paths:        listing.Entries,
		Patterns:     args.Patterns,
		ContextLines: args.ContextLines,
		TimeLimit:    timeLimit,
	})
	if err != nil {
		return nil, contentSearchOutput{}, err
	}

	out := s.contentSearchOutput(res)
	out.ElapsedSeconds = (listing.Elapsed + res.Elapsed).Seconds()

	msg := ""
	if out.TimeExceeded {
		msg = "Time limit exceeded. "
	}
	msg += fmt.Sprintf("Successfully extracted contents from %d file", len(out.Files))
	if len(out.Files) != 1 {
		msg += "s"
	}
	return textResult(msg + "."), out, nil
}

func (s *Server) contentSearchOutput(res content.SearchResult) contentSearchOutput {
	out := contentSearchOutput{
		Files:          make(map[string]fileContentResult, len(res.Files)),
		TimeExceeded:   res.TimeExceeded,
		ElapsedSeconds: res.Elapsed.Seconds(),
	}
	for p, fr := range res.Files {
		out.Files[s.masker.Mask(p)] = fileContentResult{Blocks: fr.Blocks, Error: fr.Error}
	}
	return out
}
