// Package types defines the host platform interfaces, entity types, and
// standard error types for termsync.
//
// Posts and terms live in a host store reachable through the Host interface.
// The mirror package only ever talks to a Host; internal/sqlite provides the
// bundled implementation.
package types
