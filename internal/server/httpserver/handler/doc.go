// Package handler provides HTTP request handlers for ledwall.
//
// This package contains handlers for all HTTP endpoints:
//
//   - slots.go: slot listing, upload, download, clear, export and import
//   - mode.go: display transitions, state replay, live frames and preview
//   - health.go: health, readiness and ping
//
// All handlers follow a consistent pattern:
//
//   - Parse and validate request
//   - Call domain service
//   - Format and return response
//   - Handle errors with appropriate HTTP status codes
package handler
