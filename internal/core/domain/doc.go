// Package domain defines the core domain models for ledwall.
//
// Domain models are plain values without IO dependencies. This package
// contains:
//
//   - Slot: kinds, records and content digests
//   - Mode: display modes and the persisted state descriptor
//   - Errors: domain error codes shared by services and transports
package domain
