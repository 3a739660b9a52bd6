package models

// Snippet is the block of changed source lines handed to the model.
// Span is the union of the changed ranges; Text may carry a few extra
// lines of context starting at TextStart.
type Snippet struct {
	CommitHash string
	Path       string
	Language   string
	Span       LineRange
	TextStart  int
	Text       string
	Truncated  bool
}
