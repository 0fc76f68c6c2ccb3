package types

import "time"

// Result holds the outcome of a single collector run.
type Result struct {
	Command    string    `json:"command"` // "collect", "hash"
	SourceDir  string    `json:"sourceDir"`
	DestDir    string    `json:"destDir"`
	Algorithm  string    `json:"algorithm"`
	DryRun     bool      `json:"dryRun"`
	ReportSize bool      `json:"reportSize"`
	Entries    []Entry   `json:"entries"`
	Timestamp  time.Time `json:"timestamp"`
}

// Count returns the number of entries with the given status.
func (r *Result) Count(status EntryStatus) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// Mismatch is a store entry whose name does not match its content.
type Mismatch struct {
	Path   string `json:"path"`
	Name   string `json:"name"`   // digest taken from the file name
	Digest string `json:"digest"` // digest of the file contents
}

// VerifyResult holds the outcome of checking the store.
type VerifyResult struct {
	DestDir    string     `json:"destDir"`
	Algorithm  string     `json:"algorithm"`
	Checked    int        `json:"checked"`
	Mismatches []Mismatch `json:"mismatches"`
	Foreign    []string   `json:"foreign"` // files not named by a digest
	Timestamp  time.Time  `json:"timestamp"`
}

// OK reports whether every entry matched its name. Foreign files do not
// count against it.
func (r *VerifyResult) OK() bool {
	return len(r.Mismatches) == 0
}
