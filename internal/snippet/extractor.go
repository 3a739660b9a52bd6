package snippet

import (
	"path"
	"strings"

	"github.com/thomas-vilte/debtguard/internal/config"
	"github.com/thomas-vilte/debtguard/internal/models"
)

const (
	defaultContextLines = 3
	defaultMaxLines     = 400
)

var languages = map[string]string{
	".c":     "C",
	".cpp":   "C++",
	".h":     "C/C++ header",
	".java":  "Java",
	".py":    "Python",
	".js":    "JavaScript",
	".php":   "PHP",
	".cs":    "C#",
	".rb":    "Ruby",
	".go":    "Go",
	".rs":    "Rust",
	".ts":    "TypeScript",
	".m":     "Objective-C",
	".swift": "Swift",
	".f":     "Fortran",
	".f90":   "Fortran",
	".perl":  "Perl",
	".sh":    "Shell",
	".bash":  "Shell",
}

// Extractor cuts the changed region of a file out of its contents.
type Extractor struct {
	ContextLines int
	MaxLines     int
	Extensions   []string

	allowed map[string]struct{}
}

func NewExtractor(cfg config.ScanConfig) *Extractor {
	e := &Extractor{
		ContextLines: cfg.ContextLines,
		MaxLines:     cfg.MaxSnippetLines,
		Extensions:   cfg.SourceExtensions,
	}
	if e.ContextLines < 0 {
		e.ContextLines = defaultContextLines
	}
	if e.MaxLines <= 0 {
		e.MaxLines = defaultMaxLines
	}
	if len(e.Extensions) == 0 {
		e.Extensions = config.DefaultSourceExtensions
	}
	e.allowed = make(map[string]struct{}, len(e.Extensions))
	for _, ext := range e.Extensions {
		e.allowed[strings.ToLower(ext)] = struct{}{}
	}
	return e
}

// IsSourceFile reports whether p has one of the configured extensions.
func (e *Extractor) IsSourceFile(p string) bool {
	_, ok := e.allowed[strings.ToLower(path.Ext(p))]
	return ok
}

// Eligible reports whether change can yield a snippet at all, so callers can
// avoid reading file contents for changes that would be skipped anyway.
func (e *Extractor) Eligible(change models.FileChange) bool {
	return !change.Binary && !change.IsPureDeletion() && e.IsSourceFile(change.Path)
}

// Extract returns the snippet for change given the file contents at the
// commit. The second result is false when there is nothing to assess.
func (e *Extractor) Extract(commit models.Commit, change models.FileChange, content string) (models.Snippet, bool) {
	if !e.Eligible(change) {
		return models.Snippet{}, false
	}

	lines := splitLines(content)
	if len(lines) == 0 {
		return models.Snippet{}, false
	}

	span := union(change.Ranges)
	if span.Start < 1 {
		span.Start = 1
	}
	if span.End > len(lines) {
		span.End = len(lines)
	}
	if span.End < span.Start {
		return models.Snippet{}, false
	}

	textStart := max(1, span.Start-e.ContextLines)
	textEnd := min(len(lines), span.End+e.ContextLines)

	truncated := false
	if textEnd-textStart+1 > e.MaxLines {
		textEnd = textStart + e.MaxLines - 1
		truncated = true
	}

	return models.Snippet{
		CommitHash: commit.Hash,
		Path:       change.Path,
		Language:   languages[strings.ToLower(path.Ext(change.Path))],
		Span:       span,
		TextStart:  textStart,
		Text:       strings.Join(lines[textStart-1:textEnd], "\n"),
		Truncated:  truncated,
	}, true
}

// union returns the smallest range covering all of ranges.
func union(ranges []models.LineRange) models.LineRange {
	span := ranges[0]
	for _, r := range ranges[1:] {
		span.Start = min(span.Start, r.Start)
		span.End = max(span.End, r.End)
	}
	return span
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
