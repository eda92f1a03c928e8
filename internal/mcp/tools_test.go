package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/filesearchd/internal/sandbox"
)

func resultText(res *mcp.CallToolResult) string {
	if res == nil || len(res.Content) == 0 {
		return ""
	}
	if tc, ok := res.Content[0].(*mcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func TestHandleGetAllowedPaths(t *testing.T) {
	t.Run("unmasked", func(t *testing.T) {
		server, tc := newTestServer(t, false)

		_, out, err := server.handleGetAllowedPaths(context.Background(), nil, allowedPathsInput{})
		require.NoError(t, err)
		require.Len(t, out.Paths, 1)
		assert.Equal(t, tc.resolver.AllowedPaths()[0], out.Paths[0])
	})

	t.Run("masked roots never leak", func(t *testing.T) {
		server, _ := newTestServer(t, true)

		_, out, err := server.handleGetAllowedPaths(context.Background(), nil, allowedPathsInput{})
		require.NoError(t, err)
		require.Len(t, out.Paths, 1)
		assert.Equal(t, "[MASK0]", out.Paths[0])
	})
}

func TestHandleClassifyPaths(t *testing.T) {
	server, tc := newTestServer(t, false)

	_, out, err := server.handleClassifyPaths(context.Background(), nil, classifyInput{
		Paths: []string{
			filepath.Join(tc.root, "a.txt"),
			filepath.Join(tc.root, "sub"),
			filepath.Join(tc.root, "missing"),
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 3)
	assert.Equal(t, sandbox.KindFile, out.Results[0].Kind)
	assert.Equal(t, sandbox.KindDirectory, out.Results[1].Kind)
	assert.Equal(t, sandbox.KindNotFound, out.Results[2].Kind)
}

func TestHandleListFilePaths(t *testing.T) {
	t.Run("lists root level by default", func(t *testing.T) {
		server, tc := newTestServer(t, false)

		res, out, err := server.handleListFilePaths(context.Background(), nil, listInput{
			BaseDir: tc.root,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "sub", filepath.Join("sub", "b.log")}, out.Entries)
		assert.False(t, out.LimitExceeded)
		assert.NotNil(t, res)
	})

	t.Run("depth zero stays at root", func(t *testing.T) {
		server, tc := newTestServer(t, false)

		zero := 0
		_, out, err := server.handleListFilePaths(context.Background(), nil, listInput{
			BaseDir:  tc.root,
			MaxDepth: &zero,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "sub"}, out.Entries)
	})

	t.Run("limit flag and message", func(t *testing.T) {
		server, tc := newTestServer(t, false)

		res, out, err := server.handleListFilePaths(context.Background(), nil, listInput{
			BaseDir: tc.root,
			Limit:   1,
		})
		require.NoError(t, err)
		assert.Len(t, out.Entries, 1)
		assert.True(t, out.LimitExceeded)
		assert.True(t, strings.HasPrefix(resultText(res), "File limit exceeded. "))
	})

	t.Run("rejects unknown search mode", func(t *testing.T) {
		server, tc := newTestServer(t, false)

		_, _, err := server.handleListFilePaths(context.Background(), nil, listInput{
			BaseDir: tc.root,
			Mode:    "sideways",
		})
		assert.Error(t, err)
	})

	t.Run("masked base dir round-trips", func(t *testing.T) {
		server, _ := newTestServer(t, true)

		_, out, err := server.handleListFilePaths(context.Background(), nil, listInput{
			BaseDir:       "[MASK0]",
			AbsolutePaths: true,
		})
		require.NoError(t, err)
		require.NotEmpty(t, out.Entries)
		for _, e := range out.Entries {
			assert.True(t, strings.HasPrefix(e, "[MASK0]"), "entry %q should be masked", e)
		}
	})
}

func TestHandleSearchFileNames(t *testing.T) {
	server, tc := newTestServer(t, false)

	t.Run("matches by regex", func(t *testing.T) {
		unlimited := -1
		_, out, err := server.handleSearchFileNames(context.Background(), nil, nameSearchInput{
			Patterns: []string{`\.log$`},
			BasePath: tc.root,
			MaxDepth: &unlimited,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(tc.root, "sub", "b.log")}, out.Entries)
	})

	t.Run("invalid pattern fails fast", func(t *testing.T) {
		_, _, err := server.handleSearchFileNames(context.Background(), nil, nameSearchInput{
			Patterns: []string{"("},
			BasePath: tc.root,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, sandbox.ErrInvalidPattern)
	})
}

func TestHandleReadFiles(t *testing.T) {
	server, tc := newTestServer(t, false)

	_, out, err := server.handleReadFiles(context.Background(), nil, readFilesInput{
		Paths: []string{
			filepath.Join(tc.root, "a.txt"),
			filepath.Join(tc.root, "missing.txt"),
			filepath.Join(tc.root, "sub"),
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Contents, 3)
	assert.Equal(t, "alpha line\nbeta line\n", out.Contents[mustResolve(t, tc.resolver, filepath.Join(tc.root, "a.txt"))])

	var placeholders []string
	for _, v := range out.Contents {
		if strings.HasPrefix(v, "[") {
			placeholders = append(placeholders, v)
		}
	}
	assert.Len(t, placeholders, 2)
}

func TestHandleSearchFileContents(t *testing.T) {
	server, tc := newTestServer(t, false)

	_, out, err := server.handleSearchFileContents(context.Background(), nil, contentSearchInput{
		Paths:        []string{filepath.Join(tc.root, "a.txt")},
		Patterns:     []string{"beta"},
		ContextLines: 1,
	})
	require.NoError(t, err)
	require.Len(t, out.Files, 1)
	for _, fr := range out.Files {
		require.Len(t, fr.Blocks, 1)
		assert.Equal(t, "alpha line\nbeta line\n", fr.Blocks[0])
	}
}

func TestHandleGrepDirectory(t *testing.T) {
	server, tc := newTestServer(t, false)

	unlimited := -1
	res, out, err := server.handleGrepDirectory(context.Background(), nil, grepDirectoryInput{
		Patterns: []string{"gamma"},
		BaseDir:  tc.root,
		MaxDepth: &unlimited,
	})
	require.NoError(t, err)
	require.Len(t, out.Files, 1)
	for p, fr := range out.Files {
		assert.True(t, strings.HasSuffix(p, filepath.Join("sub", "b.log")))
		require.Len(t, fr.Blocks, 1)
		assert.Equal(t, "gamma line\n", fr.Blocks[0])
	}
	assert.Equal(t, "Successfully extracted contents from 1 file.", resultText(res))
}

func TestMaskedContentRoundTrip(t *testing.T) {
	server, _ := newTestServer(t, true)

	_, out, err := server.handleSearchFileContents(context.Background(), nil, contentSearchInput{
		Paths:    []string{"[MASK0]/a.txt"},
		Patterns: []string{"alpha"},
	})
	require.NoError(t, err)
	require.Len(t, out.Files, 1)
	for p := range out.Files {
		assert.True(t, strings.HasPrefix(p, "[MASK0]"), "result key %q should be masked", p)
	}
}

func mustResolve(t *testing.T, r *sandbox.Resolver, path string) string {
	t.Helper()
	resolved, err := r.Resolve(path)
	require.NoError(t, err)
	return resolved
}
