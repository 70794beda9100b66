package incremental

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
)

// Delta is the result of comparing the current corpus with a snapshot.
type Delta struct {
	Changed   []article.Record
	Unchanged []article.Record
	Deleted   []string

	// Hashes holds the content hash of every current record by path.
	Hashes map[string]string
}

// Detect partitions records into changed and unchanged ones and lists the
// snapshot paths that no longer exist. A nil snapshot marks every record as
// changed. Output slices are ordered by path.
func Detect(records []article.Record, prev *Snapshot) Delta {
	d := Delta{Hashes: make(map[string]string, len(records))}
	seen := make(map[string]struct{}, len(records))

	for _, r := range records {
		path := r.Path()
		hash := ContentHash(r)
		d.Hashes[path] = hash
		seen[path] = struct{}{}

		if prev != nil {
			if old, ok := prev.Hashes[path]; ok && old == hash {
				d.Unchanged = append(d.Unchanged, r)
				continue
			}
		}
		d.Changed = append(d.Changed, r)
	}

	for _, p := range prev.Paths() {
		if _, ok := seen[p]; !ok {
			d.Deleted = append(d.Deleted, p)
		}
	}

	byPath := func(a, b article.Record) int { return strings.Compare(a.Path(), b.Path()) }
	slices.SortFunc(d.Changed, byPath)
	slices.SortFunc(d.Unchanged, byPath)
	return d
}

// IsEmpty reports whether nothing changed and nothing was deleted.
func (d Delta) IsEmpty() bool {
	return len(d.Changed) == 0 && len(d.Deleted) == 0
}
