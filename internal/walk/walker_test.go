package walk

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/filesearchd/internal/sandbox"
)

// newTestWalker builds a walker over a temp tree:
//
//	root/
//	  a.txt
//	  b.log
//	  .hidden
//	  secrets/s.txt        (excluded)
//	  sub/c.txt
//	  sub/nested/d.txt
func newTestWalker(t *testing.T, hideHidden bool) (*Walker, string) {
	t.Helper()
	root := t.TempDir()

	files := []string{
		"a.txt",
		"b.log",
		".hidden",
		"secrets/s.txt",
		"sub/c.txt",
		"sub/nested/d.txt",
	}
	for _, f := range files {
		full := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(f+"\n"), 0o600))
	}

	resolver, err := sandbox.NewResolver(sandbox.Options{
		AllowedPaths: []string{root},
		ExcludePaths: []string{filepath.Join(root, "secrets")},
		HideHidden:   hideHidden,
	})
	require.NoError(t, err)

	canonical, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	return NewWalker(resolver, 10*time.Second, nil), canonical
}

func TestListDepthZero(t *testing.T) {
	w, root := newTestWalker(t, true)

	res, err := w.List(ListRequest{BaseDir: root, Limit: Unlimited, MaxDepth: 0, Mode: ModeBFS})
	require.NoError(t, err)

	// Only immediate children; secrets excluded, .hidden suppressed.
	assert.Equal(t, []string{"a.txt", "b.log", "sub"}, res.Entries)
	assert.False(t, res.LimitExceeded)
	assert.False(t, res.TimeExceeded)
}

func TestListUnlimitedDepth(t *testing.T) {
	w, root := newTestWalker(t, true)

	res, err := w.List(ListRequest{BaseDir: root, Limit: Unlimited, MaxDepth: Unlimited, Mode: ModeBFS})
	require.NoError(t, err)

	want := []string{
		"a.txt",
		"b.log",
		"sub",
		filepath.Join("sub", "c.txt"),
		filepath.Join("sub", "nested"),
		filepath.Join("sub", "nested", "d.txt"),
	}
	assert.Equal(t, want, res.Entries)
}

func TestListExcludedAndHiddenScenario(t *testing.T) {
	// Allowed /data with excluded /data/secrets and a hidden entry:
	// the full recursive listing of files is exactly a.txt.
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("h\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "secrets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secrets", "b.txt"), []byte("b\n"), 0o600))

	resolver, err := sandbox.NewResolver(sandbox.Options{
		AllowedPaths: []string{root},
		ExcludePaths: []string{filepath.Join(root, "secrets")},
		HideHidden:   true,
	})
	require.NoError(t, err)
	w := NewWalker(resolver, 10*time.Second, nil)

	res, err := w.List(ListRequest{BaseDir: root, Limit: Unlimited, MaxDepth: Unlimited, Mode: ModeBFS})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, res.Entries)
}

func TestListLimit(t *testing.T) {
	w, root := newTestWalker(t, true)

	res, err := w.List(ListRequest{BaseDir: root, Limit: 2, MaxDepth: Unlimited, Mode: ModeBFS})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)
	assert.True(t, res.LimitExceeded)
}

func TestListStartFromRootOnly(t *testing.T) {
	w, root := newTestWalker(t, true)

	// Root-level sorted entries are a.txt, b.log, sub. Skipping two
	// leaves only sub, which is still descended into.
	res, err := w.List(ListRequest{BaseDir: root, Limit: Unlimited, MaxDepth: Unlimited, Mode: ModeBFS, StartFrom: 2})
	require.NoError(t, err)

	want := []string{
		"sub",
		filepath.Join("sub", "c.txt"),
		filepath.Join("sub", "nested"),
		filepath.Join("sub", "nested", "d.txt"),
	}
	assert.Equal(t, want, res.Entries)

	// Skipping past the root listing skips its subtrees entirely.
	res, err = w.List(ListRequest{BaseDir: root, Limit: Unlimited, MaxDepth: Unlimited, Mode: ModeBFS, StartFrom: 3})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
}

func TestListFilesOnly(t *testing.T) {
	w, root := newTestWalker(t, true)

	res, err := w.List(ListRequest{BaseDir: root, Limit: Unlimited, MaxDepth: Unlimited, Mode: ModeBFS, FilesOnly: true})
	require.NoError(t, err)

	// Directories are traversed but not emitted.
	want := []string{
		"a.txt",
		"b.log",
		filepath.Join("sub", "c.txt"),
		filepath.Join("sub", "nested", "d.txt"),
	}
	assert.Equal(t, want, res.Entries)
}

func TestListAbsolutePaths(t *testing.T) {
	w, root := newTestWalker(t, true)

	res, err := w.List(ListRequest{BaseDir: root, Limit: Unlimited, MaxDepth: 0, Mode: ModeBFS, AbsolutePaths: true})
	require.NoError(t, err)
	for _, e := range res.Entries {
		assert.True(t, filepath.IsAbs(e), "entry %s", e)
	}
}

func TestListDFSMatchesBFSAfterSort(t *testing.T) {
	w, root := newTestWalker(t, true)

	bfs, err := w.List(ListRequest{BaseDir: root, Limit: Unlimited, MaxDepth: Unlimited, Mode: ModeBFS})
	require.NoError(t, err)
	dfs, err := w.List(ListRequest{BaseDir: root, Limit: Unlimited, MaxDepth: Unlimited, Mode: ModeDFS})
	require.NoError(t, err)

	// Discovery order differs; the globally sorted outputs agree.
	assert.Equal(t, bfs.Entries, dfs.Entries)
}

func TestListShowHiddenClampedByPolicy(t *testing.T) {
	w, root := newTestWalker(t, true)

	res, err := w.List(ListRequest{BaseDir: root, ShowHidden: true, Limit: Unlimited, MaxDepth: 0, Mode: ModeBFS})
	require.NoError(t, err)
	assert.NotContains(t, res.Entries, ".hidden")

	shown, shownRoot := newTestWalker(t, false)
	res, err = shown.List(ListRequest{BaseDir: shownRoot, ShowHidden: true, Limit: Unlimited, MaxDepth: 0, Mode: ModeBFS})
	require.NoError(t, err)
	assert.Contains(t, res.Entries, ".hidden")
}

func TestListBaseDirNotFound(t *testing.T) {
	w, root := newTestWalker(t, true)

	_, err := w.List(ListRequest{BaseDir: filepath.Join(root, "missing"), Limit: Unlimited, Mode: ModeBFS})
	assert.ErrorIs(t, err, sandbox.ErrNotFound)
}

func TestListTimeBudget(t *testing.T) {
	w, root := newTestWalker(t, true)

	// An already-expired budget halts after the first emitted entry.
	res, err := w.List(ListRequest{BaseDir: root, Limit: Unlimited, TimeLimit: time.Nanosecond, MaxDepth: Unlimited, Mode: ModeBFS})
	require.NoError(t, err)
	assert.True(t, res.TimeExceeded)
	assert.Len(t, res.Entries, 1)
}

func TestDeque(t *testing.T) {
	var d deque[int]
	d.pushBack(1)
	d.pushBack(2)
	d.pushBack(3)

	assert.Equal(t, 1, d.popFront())
	assert.Equal(t, 3, d.popBack())
	assert.Equal(t, 2, d.popFront())
	assert.Equal(t, 0, d.len())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeBFS, m)

	m, err = ParseMode("dfs")
	require.NoError(t, err)
	assert.Equal(t, ModeDFS, m)

	_, err = ParseMode("sideways")
	assert.Error(t, err)
}
