package article

import (
	"slices"
	"strings"
)

// SortPreviews orders previews newest first, breaking ties by path so the
// result never depends on the order previews were produced in.
func SortPreviews(previews []Preview) {
	slices.SortStableFunc(previews, func(a, b Preview) int {
		if c := b.Metadata.Created.Compare(a.Metadata.Created); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
}
