// Package sandbox implements the capability model lifecycle hooks run under.
//
// A hook never touches the host directly. It receives an Env that exposes
// exactly the capabilities granted to it in configuration: scoped filesystem
// namespaces and the wall clock. Reaching for anything else is recorded as a
// violation, and the host fails the task even if the hook swallowed the
// returned error.
package sandbox
