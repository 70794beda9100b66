package parse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"github.com/stretchr/testify/require"
)

func record(slug, created, body string) article.Record {
	return article.Record{
		Category: []string{"notes"},
		Slug:     slug,
		Content:  []byte(body),
		Metadata: []byte(fmt.Sprintf("created: %q\nauthor: sam\n", created)),
	}
}

func TestParse(t *testing.T) {
	r := markdown.NewRenderer(markdown.Options{})

	a, err := Parse(r, record("hello", "2024-01-02", "# Hello there\n\nFirst paragraph."))
	require.NoError(t, err)
	require.Equal(t, "notes/hello", a.Path)
	require.Equal(t, "Hello there", a.Title)
	require.Equal(t, "First paragraph.", a.Description)
	require.Equal(t, "sam", a.Metadata.Author)
	require.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), a.Metadata.Created)
	require.Contains(t, a.HTML, "<p>First paragraph.</p>")
}

func TestParse_TitleFallsBackToSlug(t *testing.T) {
	a, err := Parse(markdown.NewRenderer(markdown.Options{}), record("untitled", "2024-01-02", "no heading"))
	require.NoError(t, err)
	require.Equal(t, "untitled", a.Title)
}

func TestParse_Errors(t *testing.T) {
	r := markdown.NewRenderer(markdown.Options{})
	cases := map[string]article.Record{
		"bad yaml":     {Slug: "a", Metadata: []byte("created: [")},
		"no created":   {Slug: "a", Metadata: []byte("title: x")},
		"invalid date": {Slug: "a", Metadata: []byte("created: \"soon\"")},
		"empty slug":   {Slug: "", Metadata: []byte("created: \"2024-01-01\"")},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(r, rec)
			require.ErrorIs(t, err, ErrParseFailed)
			require.True(t, errors.HasCategory(err, errors.CategoryParse))
			require.False(t, errors.IsFatal(err))
		})
	}
}

func TestStage_ParsesEveryRecordAndIsolatesFailures(t *testing.T) {
	var records []article.Record
	for i := 0; i < 20; i++ {
		records = append(records, record(fmt.Sprintf("p%02d", i), fmt.Sprintf("2024-01-%02d", i%5+1), "text"))
	}
	broken := record("broken", "not a date", "x")
	records = append(records, broken)

	stage := NewStage(4, nil)
	corpus := NewCorpus()
	for res := range stage.Run(context.Background(), records) {
		corpus.Add(res)
	}

	require.Equal(t, 20, corpus.Len())
	require.Len(t, corpus.Failed(), 1)
	require.Contains(t, corpus.Failed(), "notes/broken")

	previews := corpus.Previews()
	require.Len(t, previews, 20)
	for i := 1; i < len(previews); i++ {
		prev, cur := previews[i-1], previews[i]
		if prev.Metadata.Created.Equal(cur.Metadata.Created) {
			require.Less(t, prev.Path, cur.Path)
		} else {
			require.True(t, prev.Metadata.Created.After(cur.Metadata.Created))
		}
	}
}

func TestStage_OrderIndependentOfWorkers(t *testing.T) {
	var records []article.Record
	for i := 0; i < 12; i++ {
		records = append(records, record(fmt.Sprintf("a%d", i), "2024-02-01", "same day"))
	}

	collect := func(workers int) []string {
		corpus := NewCorpus()
		for res := range NewStage(workers, nil).Run(context.Background(), records) {
			corpus.Add(res)
		}
		var paths []string
		for _, p := range corpus.Previews() {
			paths = append(paths, p.Path)
		}
		return paths
	}

	require.Equal(t, collect(1), collect(8))
}

func TestStage_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []article.Record{record("a", "2024-01-01", "x"), record("b", "2024-01-01", "y")}
	n := 0
	for range NewStage(1, nil).Run(ctx, records) {
		n++
	}
	require.LessOrEqual(t, n, 2)
}

func TestNewStage_DefaultsWorkers(t *testing.T) {
	require.Positive(t, NewStage(0, nil).Workers())
}
