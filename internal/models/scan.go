package models

type ProgressEventType string

const (
	ProgressScanStarted     ProgressEventType = "scan_started"
	ProgressCommitStarted   ProgressEventType = "commit_started"
	ProgressCommitResumed   ProgressEventType = "commit_resumed"
	ProgressSnippetAnalyzed ProgressEventType = "snippet_analyzed"
	ProgressCommitRecorded  ProgressEventType = "commit_recorded"
	ProgressCommitEmpty     ProgressEventType = "commit_empty"
	ProgressCommitFailed    ProgressEventType = "commit_failed"
	ProgressCommitRetry     ProgressEventType = "commit_retry"
	ProgressFlushed         ProgressEventType = "flushed"
)

type ProgressEvent struct {
	Type       ProgressEventType
	CommitHash string
	Path       string
	Index      int
	Total      int
	Message    string
	Err        error
}

// ScanSummary aggregates the outcome of a scan run.
type ScanSummary struct {
	ReportPath string
	Total      int
	Analyzed   int
	Resumed    int
	Empty      int
	Failed     int
	Findings   int
	Usage      TokenUsage
}

// Processed counts the commits this run actually looked at.
func (s ScanSummary) Processed() int {
	return s.Analyzed + s.Empty + s.Failed
}
