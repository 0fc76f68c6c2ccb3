// Package testutil provides utilities for testing wasmstash components.
//
// Key components:
//   - WriteArtifacts: lays out a fake build output directory
//   - StoreFiles: lists what ended up in a content-addressed store
//   - FailingFS: wraps a types.FS and injects errors per operation
//   - GetTestChecksum: the sha256 hex a store entry is named by
//
// All test data should be defined inline, not in external files.
package testutil
