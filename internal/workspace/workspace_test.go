package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func writeArticle(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func paths(records []article.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Path())
	}
	return out
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "Programming/Go/Channels 101/article.md", "---\ncreated: 2024-01-02\n---\n# Channels\n")
	writeArticle(t, dir, "programming/go/channels-101/article.fr.md", "---\ncreated: 2024-01-02\n---\n# Canaux\n")
	writeArticle(t, dir, "notes/hello/article.en.md", "---\ncreated: 2024-01-03\n---\nhi\n")
	writeArticle(t, dir, "notes/hello/README.md", "ignored")
	writeArticle(t, dir, ".drafts/secret/article.md", "ignored")

	records, err := NewLoader(dir, "en").Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		"notes/hello",
		"programming/go/channels-101",
		"programming/go/channels-101@fr",
	}, paths(records))

	rec := records[1]
	require.Equal(t, []string{"programming", "go"}, rec.Category)
	require.Equal(t, "channels-101", rec.Slug)
	require.Equal(t, "created: 2024-01-02\n", string(rec.Metadata))
	require.Equal(t, "# Channels\n", string(rec.Content))
}

func TestLoad_DuplicatePath(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "notes/Hello/article.md", "---\ncreated: 2024-01-02\n---\n")
	writeArticle(t, dir, "notes/hello/article.md", "---\ncreated: 2024-01-02\n---\n")

	_, err := NewLoader(dir, "en").Load(context.Background())
	require.ErrorIs(t, err, ErrDuplicateArticle)
}

func TestLoad_CategoryMetadata(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "programming/category.yaml", "name: Programming\ndescription: Code and tools\ncreated: 2023-05-01T00:00:00Z\n")
	writeArticle(t, dir, "programming/go/channels/article.md", "---\ncreated: 2024-01-02\n---\n# Channels\n")
	writeArticle(t, dir, "programming/rust/traits/article.md", "---\ncreated: 2024-01-02\n---\n# Traits\n")
	writeArticle(t, dir, "notes/hello/article.md", "---\ncreated: 2024-01-03\n---\nhi\n")

	records, err := NewLoader(dir, "en").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Nil(t, records[0].Categories, "notes has no metadata")

	channels := records[1]
	require.Equal(t, "programming/go/channels", channels.Path())
	require.Len(t, channels.Categories, 2)
	require.Equal(t, "Programming", channels.Categories[0].Name)
	require.Equal(t, "Code and tools", channels.Categories[0].Description)
	require.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), channels.Categories[0].Created.UTC())
	require.True(t, channels.Categories[1].IsZero())
	require.Equal(t, channels.Categories[0], records[2].Categories[0])
}

func TestLoad_MalformedCategoryMetadata(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "notes/category.yaml", "name: [unterminated\n")
	writeArticle(t, dir, "notes/hello/article.md", "---\ncreated: 2024-01-03\n---\nhi\n")

	_, err := NewLoader(dir, "en").Load(context.Background())
	require.ErrorIs(t, err, ErrCategoryMetadata)
}

func TestLoad_RootArticleHasEmptySlug(t *testing.T) {
	dir := t.TempDir()
	writeArticle(t, dir, "article.md", "---\ncreated: 2024-01-02\n---\n")

	records, err := NewLoader(dir, "").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Empty(t, records[0].Slug)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope"), "").Load(context.Background())
	require.Error(t, err)
}

func TestReadRevision(t *testing.T) {
	dir := t.TempDir()

	rev, err := ReadRevision(dir)
	require.NoError(t, err)
	require.Empty(t, rev.Commit)

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	writeArticle(t, dir, "content/a/article.md", "x")
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("content")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com"},
	})
	require.NoError(t, err)

	rev, err = ReadRevision(filepath.Join(dir, "content"))
	require.NoError(t, err)
	require.Equal(t, hash.String(), rev.Commit)
	require.Equal(t, "master", rev.Branch)
	require.Len(t, rev.Short(), 12)
}

func TestScratch_Lifecycle(t *testing.T) {
	base := t.TempDir()
	cacheDir := filepath.Join(base, "state", "plugins")
	s := NewScratch(filepath.Join(base, "tmp"), cacheDir)
	require.Empty(t, s.TempDir())

	require.NoError(t, s.Create())
	tmp := s.TempDir()
	require.DirExists(t, tmp)
	require.DirExists(t, cacheDir)

	require.NoError(t, s.Cleanup())
	require.NoDirExists(t, tmp)
	require.Empty(t, s.TempDir())
	require.DirExists(t, cacheDir)
	require.NoError(t, s.Cleanup())

	require.NoError(t, s.PurgeCache())
	require.NoDirExists(t, cacheDir)
}
