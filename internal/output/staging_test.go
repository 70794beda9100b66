package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func stagingDirs(t *testing.T, root string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Clean(root) + stagingPattern)
	require.NoError(t, err)
	return matches
}

func TestStaging_Commit(t *testing.T) {
	root := filepath.Join(t.TempDir(), "site")
	w := NewWriter(root)
	require.NoError(t, w.Write(PagePath("notes/old"), []byte("old")))
	require.NoError(t, w.Write(PagePath("notes/keep"), []byte("keep v1")))

	st, err := w.Stage()
	require.NoError(t, err)
	require.Len(t, stagingDirs(t, root), 1)

	require.NoError(t, st.Write(PagePath("notes/keep"), []byte("keep v2")))
	require.NoError(t, st.Write(PagePath("notes/new"), []byte("new")))
	require.NoError(t, st.Write(IndexFile, []byte("index")))
	require.NoError(t, st.Remove(PagePath("notes/old")))

	// Nothing is visible before the commit.
	data, err := w.Read(PagePath("notes/keep"))
	require.NoError(t, err)
	require.Equal(t, "keep v1", string(data))
	_, err = w.Read(PagePath("notes/new"))
	require.True(t, os.IsNotExist(err))
	_, err = w.Read(PagePath("notes/old"))
	require.NoError(t, err)

	require.NoError(t, st.Commit())

	data, err = w.Read(PagePath("notes/keep"))
	require.NoError(t, err)
	require.Equal(t, "keep v2", string(data))
	data, err = w.Read(PagePath("notes/new"))
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
	_, err = w.Read(PagePath("notes/old"))
	require.True(t, os.IsNotExist(err))

	require.Empty(t, stagingDirs(t, root))
	require.NoError(t, st.Discard(), "discard after commit is a no-op")
	require.Error(t, st.Commit(), "a staging area commits once")
}

func TestStaging_Discard(t *testing.T) {
	root := filepath.Join(t.TempDir(), "site")
	w := NewWriter(root)
	require.NoError(t, w.Write(IndexFile, []byte("v1")))

	st, err := w.Stage()
	require.NoError(t, err)
	require.NoError(t, st.Write(IndexFile, []byte("v2")))
	require.NoError(t, st.Remove(IndexFile))
	require.NoError(t, st.Discard())

	data, err := w.Read(IndexFile)
	require.NoError(t, err)
	require.Equal(t, "v1", string(data))
	require.Empty(t, stagingDirs(t, root))
}

func TestStaging_RemoveAfterWrite(t *testing.T) {
	root := filepath.Join(t.TempDir(), "site")
	w := NewWriter(root)

	st, err := w.Stage()
	require.NoError(t, err)
	require.NoError(t, st.Write(PagePath("a/b"), []byte("x")))
	require.NoError(t, st.Remove(PagePath("a/b")))
	require.Error(t, st.Remove("../escape.html"))
	require.NoError(t, st.Commit())

	_, err = w.Read(PagePath("a/b"))
	require.True(t, os.IsNotExist(err))
}
