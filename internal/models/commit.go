package models

import "time"

type ChangeStatus string

const (
	StatusAdded    ChangeStatus = "added"
	StatusModified ChangeStatus = "modified"
	StatusDeleted  ChangeStatus = "deleted"
	StatusRenamed  ChangeStatus = "renamed"
)

type (
	// Commit is one entry of the repository history, oldest first.
	Commit struct {
		Hash        string
		Author      string
		AuthorEmail string
		Timestamp   time.Time
		Files       []FileChange
	}

	// FileChange describes how a single file was touched by a commit.
	// Ranges are expressed in line numbers of the new version of the file.
	FileChange struct {
		Path    string
		OldPath string
		Status  ChangeStatus
		Binary  bool
		Ranges  []LineRange
	}

	// LineRange is an inclusive, 1-based span of lines.
	LineRange struct {
		Start int `json:"start"`
		End   int `json:"end"`
	}
)

// Len returns the number of lines covered by the range.
func (r LineRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// IsPureDeletion reports whether the change only removed content.
func (f FileChange) IsPureDeletion() bool {
	return f.Status == StatusDeleted || len(f.Ranges) == 0
}

// HasFile reports whether path is one of the files touched by the commit.
func (c Commit) HasFile(path string) bool {
	for _, f := range c.Files {
		if f.Path == path {
			return true
		}
	}
	return false
}

// ShortHash returns the abbreviated form used in terminal output.
func (c Commit) ShortHash() string {
	if len(c.Hash) > 10 {
		return c.Hash[:10]
	}
	return c.Hash
}
