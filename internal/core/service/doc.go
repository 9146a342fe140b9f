// Package service provides the display services for ledwall.
//
// This package contains:
//
//   - SlotService: slot cache, persistence delegation, observers and bulk
//     export/import
//   - DisplayService: the display mode state machine and its single render
//     task
//   - StateRecorder: persistence and replay of the display mode
//
// Services define the repository interfaces they depend on; the storage
// package provides the implementations.
package service
