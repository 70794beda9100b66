// Package build runs incremental site builds.
//
// An Engine compares the current articles with the snapshot of the last
// build, parses every article on a worker pool and renders the pages of
// changed articles as soon as they are parsed. Rendering goes through the
// render cache: a page whose fingerprint is cached is written without
// running the theme or any hook. The index is rendered last, on every build,
// from the complete ordered corpus.
//
// Failures of a single task (a malformed article, a failing hook, a theme
// fault, a capability violation) are collected in the Report and do not stop
// the build. Cache store faults and output write failures abort it; an
// aborted build writes no snapshot and sweeps nothing.
//
// Service wires an Engine from the configuration file.
package build
