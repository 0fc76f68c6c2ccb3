// Package filesystem provides filesystem implementations for wasmstash.
//
// This package contains implementations of the types.FS interface,
// the standard OS filesystem used by the CLI and tests.
package filesystem
