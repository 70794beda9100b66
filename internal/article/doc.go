// Package article defines the content model shared by every build stage:
// raw ArticleRecords produced by the content loader, and immutable parsed
// Articles (plus their index-facing previews) produced by the parse stage.
package article
