package snippet

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/debtguard/internal/config"
	"github.com/thomas-vilte/debtguard/internal/models"
)

func fileOf(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func linesBetween(from, to int) string {
	parts := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		parts = append(parts, fmt.Sprintf("line %d", i))
	}
	return strings.Join(parts, "\n")
}

func TestExtractor_Extract(t *testing.T) {
	commit := models.Commit{Hash: "abc123"}
	extractor := NewExtractor(config.ScanConfig{ContextLines: 3, MaxSnippetLines: 400})

	t.Run("whole new file", func(t *testing.T) {
		change := models.FileChange{
			Path:   "x.py",
			Status: models.StatusAdded,
			Ranges: []models.LineRange{{Start: 1, End: 10}},
		}

		snippet, ok := extractor.Extract(commit, change, fileOf(10))

		require.True(t, ok)
		assert.Equal(t, "abc123", snippet.CommitHash)
		assert.Equal(t, "x.py", snippet.Path)
		assert.Equal(t, "Python", snippet.Language)
		assert.Equal(t, models.LineRange{Start: 1, End: 10}, snippet.Span)
		assert.Equal(t, 1, snippet.TextStart)
		assert.Equal(t, linesBetween(1, 10), snippet.Text)
		assert.False(t, snippet.Truncated)
	})

	t.Run("span is the union of the ranges plus context", func(t *testing.T) {
		change := models.FileChange{
			Path:   "pkg/server.go",
			Status: models.StatusModified,
			Ranges: []models.LineRange{{Start: 20, End: 22}, {Start: 10, End: 10}, {Start: 15, End: 16}},
		}

		snippet, ok := extractor.Extract(commit, change, fileOf(50))

		require.True(t, ok)
		assert.Equal(t, models.LineRange{Start: 10, End: 22}, snippet.Span)
		assert.Equal(t, 7, snippet.TextStart)
		assert.Equal(t, linesBetween(7, 25), snippet.Text)
	})

	t.Run("span is clamped to the file", func(t *testing.T) {
		change := models.FileChange{
			Path:   "run.sh",
			Status: models.StatusModified,
			Ranges: []models.LineRange{{Start: 4, End: 12}},
		}

		snippet, ok := extractor.Extract(commit, change, fileOf(5))

		require.True(t, ok)
		assert.Equal(t, models.LineRange{Start: 4, End: 5}, snippet.Span)
		assert.Equal(t, linesBetween(1, 5), snippet.Text)
	})

	t.Run("long snippets are truncated", func(t *testing.T) {
		small := NewExtractor(config.ScanConfig{ContextLines: 0, MaxSnippetLines: 5})
		change := models.FileChange{
			Path:   "Main.java",
			Status: models.StatusAdded,
			Ranges: []models.LineRange{{Start: 1, End: 30}},
		}

		snippet, ok := small.Extract(commit, change, fileOf(30))

		require.True(t, ok)
		assert.True(t, snippet.Truncated)
		assert.Equal(t, models.LineRange{Start: 1, End: 30}, snippet.Span)
		assert.Equal(t, linesBetween(1, 5), snippet.Text)
	})

	t.Run("carriage returns are dropped", func(t *testing.T) {
		change := models.FileChange{
			Path:   "a.c",
			Status: models.StatusAdded,
			Ranges: []models.LineRange{{Start: 1, End: 2}},
		}

		snippet, ok := extractor.Extract(commit, change, "int a;\r\nint b;\r\n")

		require.True(t, ok)
		assert.Equal(t, "int a;\nint b;", snippet.Text)
	})
}

func TestExtractor_Skips(t *testing.T) {
	commit := models.Commit{Hash: "abc123"}
	extractor := NewExtractor(config.ScanConfig{})

	tests := []struct {
		name    string
		change  models.FileChange
		content string
	}{
		{
			name:    "pure deletion",
			change:  models.FileChange{Path: "gone.py", Status: models.StatusDeleted},
			content: "",
		},
		{
			name:    "removal-only hunks",
			change:  models.FileChange{Path: "x.py", Status: models.StatusModified},
			content: fileOf(3),
		},
		{
			name:    "binary diff",
			change:  models.FileChange{Path: "tool.go", Binary: true, Ranges: []models.LineRange{{Start: 1, End: 1}}},
			content: fileOf(3),
		},
		{
			name:    "not source code",
			change:  models.FileChange{Path: "README.md", Ranges: []models.LineRange{{Start: 1, End: 2}}},
			content: fileOf(3),
		},
		{
			name:    "empty file",
			change:  models.FileChange{Path: "empty.py", Status: models.StatusAdded, Ranges: []models.LineRange{{Start: 1, End: 1}}},
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := extractor.Extract(commit, tt.change, tt.content)
			assert.False(t, ok)
		})
	}
}

func TestNewExtractor_Defaults(t *testing.T) {
	extractor := NewExtractor(config.ScanConfig{ContextLines: -1})

	assert.Equal(t, defaultContextLines, extractor.ContextLines)
	assert.Equal(t, defaultMaxLines, extractor.MaxLines)
	assert.True(t, extractor.IsSourceFile("lib/Thing.SWIFT"))
	assert.True(t, extractor.IsSourceFile("build.bash"))
	assert.False(t, extractor.IsSourceFile("Makefile"))

	custom := NewExtractor(config.ScanConfig{SourceExtensions: []string{".kt"}})
	assert.True(t, custom.IsSourceFile("App.kt"))
	assert.False(t, custom.IsSourceFile("app.py"))
}
