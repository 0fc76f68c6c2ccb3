// Package collector copies build artifacts into a content-addressed store.
//
// A run scans one source directory for files with a fixed extension
// (".wasm" by default), hashes each one and derives the store path
// <dest>/<digest>.<ext>. When that path already exists the artifact is
// reported as Old and left alone; otherwise its bytes are copied verbatim
// and it is reported as New.
//
// The store directory is the only state. There is no manifest or index,
// and entries are never modified or removed, so running the collector
// twice leaves the store unchanged and reports everything as Old.
//
// Processing is sequential: each artifact is read, hashed, classified,
// copied and reported before the next one is touched. Any filesystem
// error ends the run.
package collector
