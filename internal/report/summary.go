package report

import (
	"sort"

	"github.com/thomas-vilte/debtguard/internal/models"
)

// TypeCount is the number of findings of one category.
type TypeCount struct {
	Kind  models.DebtKind
	Type  string
	Count int
}

// FileCount is the number of findings recorded against one location.
type FileCount struct {
	Path     string
	Security int
	Debt     int
}

// Summary aggregates the findings of a report.
type Summary struct {
	Commits        int
	CleanCommits   int
	SecurityTotal  int
	TechnicalTotal int
	Types          []TypeCount
	Files          []FileCount
}

// Summarize counts findings per category and per location. Categories are
// ordered by descending count, then by name.
func Summarize(reports map[string]models.CommitReport) Summary {
	summary := Summary{Commits: len(reports)}

	typeCounts := make(map[models.DebtKind]map[string]int)
	typeCounts[models.SecurityDebt] = make(map[string]int)
	typeCounts[models.TechnicalDebt] = make(map[string]int)
	files := make(map[string]*FileCount)

	for _, r := range reports {
		if r.FindingsCount() == 0 {
			summary.CleanCommits++
			continue
		}

		fc, ok := files[r.Location]
		if !ok {
			fc = &FileCount{Path: r.Location}
			files[r.Location] = fc
		}

		for _, f := range r.SecurityDebts {
			typeCounts[models.SecurityDebt][f.Type]++
		}
		for _, f := range r.TechnicalDebts {
			typeCounts[models.TechnicalDebt][f.Type]++
		}
		fc.Security += len(r.SecurityDebts)
		fc.Debt += len(r.TechnicalDebts)
		summary.SecurityTotal += len(r.SecurityDebts)
		summary.TechnicalTotal += len(r.TechnicalDebts)
	}

	for _, kind := range []models.DebtKind{models.SecurityDebt, models.TechnicalDebt} {
		for typ, n := range typeCounts[kind] {
			summary.Types = append(summary.Types, TypeCount{Kind: kind, Type: typ, Count: n})
		}
	}
	sort.SliceStable(summary.Types, func(i, j int) bool {
		a, b := summary.Types[i], summary.Types[j]
		if a.Kind != b.Kind {
			return a.Kind == models.SecurityDebt
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Type < b.Type
	})

	for _, fc := range files {
		summary.Files = append(summary.Files, *fc)
	}
	sort.Slice(summary.Files, func(i, j int) bool {
		return summary.Files[i].Path < summary.Files[j].Path
	})

	return summary
}
