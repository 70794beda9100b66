// Package parse turns raw article records into parsed Articles on a bounded
// worker pool. Every record is parsed on every build, changed or not: the
// index needs the preview of each article.
package parse
