// Package incremental decides what a build has to re-render.
//
// It hashes article sources, compares them against the snapshot persisted by
// the previous build, and turns the resulting delta into a task list. It also
// computes render fingerprints, the cache keys that tie a page's output to
// every input that can influence it.
package incremental
