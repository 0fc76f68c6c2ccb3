// Package types defines the core types and interfaces used throughout wasmstash.
// This includes the FS interface all file access goes through, as well as
// data structures like Artifact, Entry and the per-run Result.
package types
