package types

import "fmt"

// EntryStatus tells whether an artifact was already present in the store
type EntryStatus string

const (
	// StatusNew means the content was not in the store before this run
	StatusNew EntryStatus = "New"

	// StatusOld means an entry with the same digest already existed
	StatusOld EntryStatus = "Old"
)

// Artifact is a build output found in the source directory.
type Artifact struct {
	// Name is the file name without its extension
	Name string `json:"name"`

	// Path is the full path of the file in the source directory
	Path string `json:"path"`

	// Size is the byte length of the file
	Size int64 `json:"size"`
}

// Entry is an artifact resolved against the content-addressed store.
type Entry struct {
	Artifact Artifact    `json:"artifact"`
	Digest   string      `json:"digest"`
	Path     string      `json:"path"` // <dest>/<digest>.<ext>
	Status   EntryStatus `json:"status"`
	Written  bool        `json:"written"`
}

// SizeKiB returns the artifact size in kibibytes, truncated.
func (e Entry) SizeKiB() int64 {
	return e.Artifact.Size / 1024
}

// Line renders the report line for the entry.
func (e Entry) Line(withSize bool) string {
	if withSize {
		return fmt.Sprintf("%s: %s: %s (%dkb)", e.Status, e.Artifact.Name, e.Digest, e.SizeKiB())
	}
	return fmt.Sprintf("%s: %s: %s", e.Status, e.Artifact.Name, e.Digest)
}

// HashLine renders the status-less "<name>: <digest>" line used by listings.
func (e Entry) HashLine() string {
	return fmt.Sprintf("%s: %s", e.Artifact.Name, e.Digest)
}
