package git

import (
	"strconv"
	"strings"

	"github.com/thomas-vilte/debtguard/internal/models"
	"github.com/thomas-vilte/debtguard/internal/regex"
)

// ParseDiff turns the output of a zero-context git diff into file changes.
// Ranges are the added or changed lines of the new file; hunks that only
// remove lines contribute nothing.
func ParseDiff(diff string) []models.FileChange {
	files := make([]models.FileChange, 0)
	var current *models.FileChange
	oldLeft, newLeft := 0, 0

	flush := func() {
		if current != nil {
			files = append(files, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(diff, "\n") {
		// inside a hunk body every line belongs to the hunk, even one that
		// looks like a header
		if oldLeft > 0 || newLeft > 0 {
			switch {
			case strings.HasPrefix(line, "+"):
				newLeft--
			case strings.HasPrefix(line, "-"):
				oldLeft--
			case strings.HasPrefix(line, " "):
				oldLeft--
				newLeft--
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "diff --git "):
			flush()
			current = &models.FileChange{
				Path:   pathFromGitHeader(strings.TrimPrefix(line, "diff --git ")),
				Status: models.StatusModified,
			}

		case current == nil:
			continue

		case strings.HasPrefix(line, "new file mode"):
			current.Status = models.StatusAdded

		case strings.HasPrefix(line, "deleted file mode"):
			current.Status = models.StatusDeleted

		case strings.HasPrefix(line, "rename from "):
			current.OldPath = unquotePath(strings.TrimPrefix(line, "rename from "))
			current.Status = models.StatusRenamed

		case strings.HasPrefix(line, "rename to "):
			current.Path = unquotePath(strings.TrimPrefix(line, "rename to "))
			current.Status = models.StatusRenamed

		case strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ"),
			line == "GIT binary patch":
			current.Binary = true

		case strings.HasPrefix(line, "--- "):
			if p := stripSide(line[4:], "a/"); p != "" && current.OldPath == "" && current.Status != models.StatusAdded {
				current.OldPath = p
			}

		case strings.HasPrefix(line, "+++ "):
			if p := stripSide(line[4:], "b/"); p != "" {
				current.Path = p
			}

		case strings.HasPrefix(line, "@@ "):
			m := regex.HunkHeader.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			oldLeft = countOrOne(m[2])
			start, _ := strconv.Atoi(m[3])
			newLeft = countOrOne(m[4])
			if newLeft > 0 {
				current.Ranges = append(current.Ranges, models.LineRange{
					Start: start,
					End:   start + newLeft - 1,
				})
			}
		}
	}
	flush()

	for i := range files {
		if files[i].OldPath == files[i].Path {
			files[i].OldPath = ""
		}
	}
	return files
}

func countOrOne(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// stripSide removes the a/ or b/ prefix from a ---/+++ path, returning ""
// for /dev/null.
func stripSide(p, prefix string) string {
	p = unquotePath(strings.TrimRight(p, "\t"))
	if p == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(p, prefix)
}

// pathFromGitHeader extracts the path from "a/<path> b/<path>". It is only
// exact when both sides are equal, which holds for everything but renames;
// renames are corrected by the rename and +++ lines.
func pathFromGitHeader(rest string) string {
	if strings.HasPrefix(rest, `"`) {
		if end := closingQuote(rest); end > 0 {
			return strings.TrimPrefix(unquotePath(rest[:end+1]), "a/")
		}
	}

	n := len(rest)
	if n%2 == 1 {
		left, right := rest[:n/2], rest[n/2+1:]
		if strings.HasPrefix(left, "a/") && strings.HasPrefix(right, "b/") && left[2:] == right[2:] {
			return left[2:]
		}
	}

	if i := strings.Index(rest, " b/"); i > 0 {
		return strings.TrimPrefix(rest[:i], "a/")
	}
	return rest
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// unquotePath decodes git's C-style quoting of unusual file names.
func unquotePath(p string) string {
	if len(p) < 2 || p[0] != '"' || p[len(p)-1] != '"' {
		return p
	}
	if s, err := strconv.Unquote(p); err == nil {
		return s
	}
	return p[1 : len(p)-1]
}
