package incremental

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"github.com/inful/mdfp"
)

// ContentHash returns the content+metadata hash of a record.
//
// Frontmatter is canonicalized first, so reordering keys does not count as a
// change. Frontmatter that does not parse is hashed raw: the record is still
// detected as changed and the parse stage reports the error. Category
// metadata, when present, is folded in so renaming a category re-renders its
// articles.
func ContentHash(r article.Record) string {
	var h string
	fm, err := frontmatter.Canonical(r.Metadata)
	if err != nil {
		sum := sha256.Sum256(append(append([]byte{}, r.Metadata...), r.Content...))
		h = "raw:" + hex.EncodeToString(sum[:])
	} else {
		h = mdfp.CalculateFingerprintFromParts(string(fm), string(r.Content))
	}
	if r.Categories == nil {
		return h
	}

	d := sha256.New()
	d.Write([]byte(h))
	for _, c := range r.Categories {
		fmt.Fprintf(d, "\x00%q\x00%q\x00%s", c.Name, c.Description, c.Created.UTC().Format(time.RFC3339Nano))
	}
	return hex.EncodeToString(d.Sum(nil))
}
