// Package memory provides an in-memory slot store.
//
// Records live for the lifetime of the process. The store is the default
// backend for development and tests.
package memory
