// Package storage provides the slot store backends and the state file.
//
// A slot store maps a slot index to a domain.Record. Backends:
//
//   - memory: process lifetime only (package memory)
//   - file: one {index}.{ext} file per non-empty slot
//   - badger: BadgerDB key per slot
//   - remote: another ledwall server over HTTP (package remote)
//
// Writing an empty record removes whatever the backend holds for that
// index. Reading an index that was never written reports found == false.
package storage
