package testutil

import (
	"io/fs"

	"github.com/arthur-debert/wasmstash/pkg/types"
)

// FailingFS wraps a real FS and fails the operations whose error is set
type FailingFS struct {
	types.FS
	ReadErr    error
	WriteErr   error
	MkdirErr   error
	StatErr    error
	ReadDirErr error
}

// NewFailingFS wraps base without any failures configured
func NewFailingFS(base types.FS) *FailingFS {
	return &FailingFS{FS: base}
}

func (f *FailingFS) ReadFile(name string) ([]byte, error) {
	if f.ReadErr != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: f.ReadErr}
	}
	return f.FS.ReadFile(name)
}

func (f *FailingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if f.WriteErr != nil {
		return &fs.PathError{Op: "write", Path: name, Err: f.WriteErr}
	}
	return f.FS.WriteFile(name, data, perm)
}

func (f *FailingFS) MkdirAll(path string, perm fs.FileMode) error {
	if f.MkdirErr != nil {
		return &fs.PathError{Op: "mkdir", Path: path, Err: f.MkdirErr}
	}
	return f.FS.MkdirAll(path, perm)
}

func (f *FailingFS) Stat(name string) (fs.FileInfo, error) {
	if f.StatErr != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: f.StatErr}
	}
	return f.FS.Stat(name)
}

func (f *FailingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if f.ReadDirErr != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: f.ReadDirErr}
	}
	return f.FS.ReadDir(name)
}
